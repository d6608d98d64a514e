package errors

import (
	"errors"
	"strings"
)

// Kind 错误分类
type Kind string

const (
	// Structural 结构错误：树形非法、值类型非法、键字符集非法、空键/空值
	Structural Kind = "structural"
	// Uniqueness 唯一性错误：键重复、值重复、键值冲突
	Uniqueness Kind = "uniqueness"
	// Reference 引用错误：别名链、自引用、嵌套组合、引用不存在的键
	Reference Kind = "reference"
	// VariantConsistency 变体一致性错误（仅本地化层）
	VariantConsistency Kind = "variant_consistency"
	// Config 配置错误：选项误用
	Config Kind = "config"
)

// Severity 严重级别，决定调用方是否视为致命
type Severity string

const (
	// SeverityError 致命，调用方应中断构建
	SeverityError Severity = "error"
	// SeverityWarning 提示，调用方仅展示
	SeverityWarning Severity = "warning"
)

type Error struct {
	Code     int      `json:"code"`             // 错误码
	Kind     Kind     `json:"kind"`             // 错误分类
	Severity Severity `json:"severity"`         // 严重级别
	Message  string   `json:"message"`          // 错误信息
	Key      string   `json:"key,omitempty"`    // 相关的扁平化键
	Source   string   `json:"source,omitempty"` // 相关的原始路径（a > b > c）
	Err      error    `json:"-"`                // 原始错误
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口
func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建新的错误（默认为 error 级别）
// code 错误码
// kind 错误分类
// message 错误信息
func New(code int, kind Kind, message string) *Error {
	return &Error{
		Code:     code,
		Kind:     kind,
		Severity: SeverityError,
		Message:  message,
	}
}

// Clone 克隆错误（避免修改共享的预定义错误）
func (e *Error) Clone() *Error {
	c := *e
	return &c
}

// WithError 添加原始错误（返回新实例，不修改原错误）
func (e *Error) WithError(err error) *Error {
	c := e.Clone()
	c.Err = err
	return c
}

// WithMessage 替换错误信息（返回新实例，不修改原错误）
func (e *Error) WithMessage(message string) *Error {
	c := e.Clone()
	c.Message = message
	return c
}

// WithKey 关联扁平化键（返回新实例）
func (e *Error) WithKey(key string) *Error {
	c := e.Clone()
	c.Key = key
	return c
}

// WithSource 关联原始路径（返回新实例）
func (e *Error) WithSource(source string) *Error {
	c := e.Clone()
	c.Source = source
	return c
}

// AsWarning 降级为 warning（返回新实例）
func (e *Error) AsWarning() *Error {
	c := e.Clone()
	c.Severity = SeverityWarning
	return c
}

// IsWarning 是否为 warning 级别
func (e *Error) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// As 转换为指定类型的错误
// target 目标错误类型指针
func (e *Error) As(target any) bool {
	return errors.As(e.Err, target)
}

// Is 检查错误是否为指定类型
// 当 target 也是 *Error 时，比较 Code 是否相同
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Err, target)
}

// As 转换为指定类型的错误
// err 待转换错误
// target 目标错误类型指针（必须是指针类型）
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is 检查错误是否为指定类型
// err 待检查错误
// target 目标错误类型
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// List 有序的诊断列表，保留发现顺序
type List []*Error

// Add 追加诊断
func (l *List) Add(errs ...*Error) {
	for _, e := range errs {
		if e != nil {
			*l = append(*l, e)
		}
	}
}

// Extend 追加另一个列表
func (l *List) Extend(other List) {
	*l = append(*l, other...)
}

// HasErrors 是否包含 error 级别的诊断
func (l List) HasErrors() bool {
	for _, e := range l {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

// Errors 返回 error 级别的诊断
func (l List) Errors() List {
	return l.filter(SeverityError)
}

// Warnings 返回 warning 级别的诊断
func (l List) Warnings() List {
	return l.filter(SeverityWarning)
}

func (l List) filter(s Severity) List {
	var out List
	for _, e := range l {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Err 仅在存在 error 级别诊断时返回非 nil
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// Error 实现 error 接口，每条诊断一行
func (l List) Error() string {
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, string(e.Severity)+": "+e.Message)
	}
	return strings.Join(msgs, "\n")
}

// Unwrap 支持 errors.Is / errors.As 遍历列表
func (l List) Unwrap() []error {
	out := make([]error, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	return out
}
