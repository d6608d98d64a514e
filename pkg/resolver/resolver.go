// Package resolver 将注释字典解析为可用于双向替换的查找表。
//
// 流水线：扁平化 -> 完整性校验 -> 分类 -> 引用解析 -> 反向表构建。
// 每个阶段尽量收集全部问题，但只有前一阶段没有 error 级别诊断时才会进入下一阶段。
// 解析器不做 I/O、不写日志、不退出进程，全部结果通过 Result 返回。
package resolver

import (
	"maps"

	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/errors"
)

// Stage 流水线阶段
type Stage int

const (
	// StageUnvalidated 尚未处理
	StageUnvalidated Stage = iota
	// StageFlattened 已扁平化
	StageFlattened
	// StageClassified 已通过完整性校验并完成分类
	StageClassified
	// StageResolved 别名与组合已解析
	StageResolved
	// StageValidated 反向表已构建并通过复核
	StageValidated
	// StageOverlaid 变体已叠加（仅变体层）
	StageOverlaid
	// StageReady 可供调用方使用
	StageReady
	// StageFailed 终止状态
	StageFailed
)

var stageNames = map[Stage]string{
	StageUnvalidated: "unvalidated",
	StageFlattened:   "flattened",
	StageClassified:  "classified",
	StageResolved:    "resolved",
	StageValidated:   "validated",
	StageOverlaid:    "overlaid",
	StageReady:       "ready",
	StageFailed:      "failed",
}

// String 返回阶段名称
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Result 一次解析的结果
// 失败时 Tables 为 nil，不暴露任何部分结果
type Result struct {
	Tables *Tables
	Issues errors.List
	Stage  Stage
	// FailedAt 失败时未能进入的阶段
	FailedAt Stage
}

// OK 是否解析成功
func (r *Result) OK() bool {
	return r.Stage == StageReady
}

// Err 失败时返回全部诊断（实现 error），成功时返回 nil
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return r.Issues
}

// fail 进入终止状态
func (r *Result) fail(at Stage) *Result {
	r.Tables = nil
	r.Stage = StageFailed
	r.FailedAt = at
	return r
}

// Resolve 解析字典
// cfg 为 nil 时使用默认配置
func Resolve(dict *dictionary.Dictionary, cfg *Config) *Result {
	res := &Result{Stage: StageUnvalidated}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		res.Issues.Add(asIssue(err))
		return res.fail(StageFlattened)
	}
	if dict == nil {
		res.Issues.Add(ErrNilDictionary.WithMessage("no dictionary was provided"))
		return res.fail(StageFlattened)
	}

	entries, issues := Flatten(dict, cfg)
	res.Issues.Extend(issues)
	if res.Issues.HasErrors() {
		return res.fail(StageFlattened)
	}
	res.Stage = StageFlattened

	ns := cfg.namespace()
	idx := newKeyIndex(entries, ns)
	res.Issues.Extend(validateIntegrity(entries, idx))
	if res.Issues.HasErrors() {
		return res.fail(StageClassified)
	}
	classes := classify(entries, idx)
	res.Stage = StageClassified

	resolved, issues := resolveReferences(entries, classes, idx, cfg)
	res.Issues.Extend(issues)
	if res.Issues.HasErrors() {
		return res.fail(StageResolved)
	}
	res.Stage = StageResolved

	flattened, reversed, issues := buildReverse(entries, classes, resolved)
	res.Issues.Extend(issues)
	if res.Issues.HasErrors() {
		return res.fail(StageValidated)
	}
	res.Stage = StageValidated

	res.Tables = newTables(entries, classes, resolved, flattened, reversed, ns)
	res.Stage = StageReady
	return res
}

// ResolveWithOptions 使用选项解析字典
func ResolveWithOptions(dict *dictionary.Dictionary, opts ...Option) *Result {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return Resolve(dict, cfg)
}

func newTables(entries []FlattenedEntry, classes map[Key]Classified, r *resolution,
	flattened FlattenedTable, reversed ReversedTable, ns string) *Tables {
	t := &Tables{
		Flattened:       flattened,
		Reversed:        reversed,
		Aliases:         maps.Clone(r.aliases),
		CompositionOnly: maps.Clone(r.compOnly),
		Original:        make(FlattenedTable, len(entries)),
		Segments:        maps.Clone(r.segments),
		Kinds:           make(map[Key]Kind, len(entries)),
		Sources:         make(map[Key]string, len(entries)),
		Namespace:       ns,
	}
	for _, e := range entries {
		t.Original[e.Key] = e.Value
		t.Kinds[e.Key] = classes[e.Key].Kind
		t.Sources[e.Key] = e.Source
	}
	return t
}

// asIssue 将任意错误转换为诊断
func asIssue(err error) *errors.Error {
	var e *errors.Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInvalidConfig.WithError(err).WithMessage(err.Error())
}
