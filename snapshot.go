package commentvars

import (
	"time"

	"github.com/tokmz/commentvars/pkg/errors"
	"github.com/tokmz/commentvars/pkg/resolver"
	"github.com/tokmz/commentvars/pkg/variant"
)

// Snapshot 一次成功加载的只读结果
type Snapshot struct {
	// Revision 快照版本（UUID）
	Revision string
	// LoadedAt 加载完成时间
	LoadedAt time.Time
	// Files 变体名称 -> 字典文件，单字典模式的名称为空
	Files map[string]string
	// Tables 查找表；变体模式下为激活变体去掉命名空间后的视图
	Tables *resolver.Tables
	// Overlay 变体叠加结果，单字典模式为 nil
	Overlay *variant.Overlay
	// Issues 本次加载的全部诊断（成功时只可能是 warning）
	Issues errors.List
}

// Lookup 按键查找文本
func (s *Snapshot) Lookup(key resolver.Key) (string, bool) {
	return s.Tables.Lookup(key)
}

// KeyFor 按文本反查键
func (s *Snapshot) KeyFor(value string) (resolver.Key, bool) {
	return s.Tables.KeyFor(value)
}

// Variants 变体列表，单字典模式为 nil
func (s *Snapshot) Variants() []variant.Variant {
	if s.Overlay == nil {
		return nil
	}
	return s.Overlay.Variants
}

// Variant 返回指定变体去掉命名空间后的查找表
func (s *Snapshot) Variant(name string) (*resolver.Tables, bool) {
	if s.Overlay == nil {
		return nil, false
	}
	t, ok := s.Overlay.Tables(name)
	if !ok {
		return nil, false
	}
	return t.Unscoped(), true
}

// Warnings 返回 warning 级别的诊断
func (s *Snapshot) Warnings() errors.List {
	return s.Issues.Warnings()
}
