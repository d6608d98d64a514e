// Package variant 在同一套键空间上叠加多个语言变体。
//
// 每个变体以自己的名称为命名空间独立解析，互不共享可变状态；
// 解析完成后以参考变体的键集合为准，检查其余变体缺失与多出的键。
package variant

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/tokmz/commentvars/pkg/errors"
	"github.com/tokmz/commentvars/pkg/resolver"
)

// Mismatch 变体相对参考变体的键差异（键不含命名空间）
type Mismatch struct {
	Missing []resolver.Key
	Extra   []resolver.Key
	// Tolerated 是否因允许不完整而被容忍
	Tolerated bool
}

// Empty 是否没有差异
func (m Mismatch) Empty() bool {
	return len(m.Missing) == 0 && len(m.Extra) == 0
}

// Overlay 变体叠加结果
type Overlay struct {
	// Variants 按配置顺序排列的变体（Label 已补全）
	Variants []Variant
	// Results 每个变体的解析结果
	Results map[string]*resolver.Result
	// Mismatches 非参考变体的键差异，仅包含有差异的变体
	Mismatches map[string]Mismatch
	Reference  string
	Active     string
	Issues     errors.List
	Stage      resolver.Stage
	FailedAt   resolver.Stage
}

// OK 是否全部成功
func (o *Overlay) OK() bool {
	return o.Stage == resolver.StageReady
}

// Err 失败时返回全部诊断
func (o *Overlay) Err() error {
	if o.OK() {
		return nil
	}
	return o.Issues
}

// Tables 返回指定变体的查找表（键带命名空间），失败时返回 false
func (o *Overlay) Tables(name string) (*resolver.Tables, bool) {
	if !o.OK() {
		return nil, false
	}
	res, ok := o.Results[name]
	if !ok || !res.OK() {
		return nil, false
	}
	return res.Tables, true
}

// ActiveView 返回激活变体去掉命名空间后的查找表
func (o *Overlay) ActiveView() (*resolver.Tables, bool) {
	t, ok := o.Tables(o.Active)
	if !ok {
		return nil, false
	}
	return t.Unscoped(), true
}

// Label 返回变体展示名称
func (o *Overlay) Label(name string) string {
	for _, v := range o.Variants {
		if v.Name == name {
			return v.Label
		}
	}
	return name
}

func (o *Overlay) fail(at resolver.Stage) *Overlay {
	o.Stage = resolver.StageFailed
	o.FailedAt = at
	return o
}

// Resolve 解析全部变体并检查一致性
func Resolve(cfg *Config) *Overlay {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := &Overlay{
		Results:    make(map[string]*resolver.Result, len(cfg.Variants)),
		Mismatches: make(map[string]Mismatch),
		Reference:  cfg.Reference,
		Active:     cfg.Active,
		Stage:      resolver.StageUnvalidated,
	}
	if o.Active == "" {
		o.Active = cfg.Reference
	}

	o.Issues.Extend(cfg.validate())
	if o.Issues.HasErrors() {
		return o.fail(resolver.StageFlattened)
	}
	o.Variants = withLabels(cfg.Variants, &o.Issues)

	results := resolveAll(cfg)
	failedAt := resolver.StageReady
	for i, v := range cfg.Variants {
		res := results[i]
		o.Results[v.Name] = res
		o.Issues.Extend(res.Issues)
		if !res.OK() && res.FailedAt < failedAt {
			failedAt = res.FailedAt
		}
	}
	if failedAt != resolver.StageReady {
		return o.fail(failedAt)
	}
	o.Stage = resolver.StageValidated

	ref := o.Results[cfg.Reference].Tables
	refKeys := unscopedKeys(ref)
	for _, v := range cfg.Variants {
		if v.Name == cfg.Reference {
			continue
		}
		m := diff(refKeys, unscopedKeys(o.Results[v.Name].Tables))
		if m.Empty() {
			continue
		}
		m.Tolerated = cfg.AllowIncomplete || v.AllowIncomplete
		o.Mismatches[v.Name] = m

		issue := ErrKeyMismatch.
			WithMessage(fmt.Sprintf("the variant %q does not match the reference variant %q: missing %v, extra %v",
				v.Name, cfg.Reference, m.Missing, m.Extra)).
			WithSource(v.Name)
		if m.Tolerated {
			issue = issue.AsWarning()
		}
		o.Issues.Add(issue)
	}
	if o.Issues.HasErrors() {
		return o.fail(resolver.StageOverlaid)
	}

	o.Stage = resolver.StageReady
	return o
}

// ResolveWithOptions 使用选项解析全部变体
func ResolveWithOptions(opts ...Option) *Overlay {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return Resolve(cfg)
}

// validate 检查变体配置，参考数据按指针比较
func (c *Config) validate() errors.List {
	var issues errors.List
	if len(c.Variants) == 0 {
		issues.Add(ErrNoVariants.WithMessage("at least one variant is required"))
		return issues
	}

	seen := make(map[string]string, len(c.Variants))
	for _, v := range c.Variants {
		ns := strings.ToUpper(v.Name)
		if prev, ok := seen[ns]; ok {
			issues.Add(ErrDuplicateVariant.
				WithMessage(fmt.Sprintf("the variants %q and %q share the same namespace", prev, v.Name)).
				WithSource(v.Name))
			continue
		}
		seen[ns] = v.Name
	}

	ref, ok := c.find(c.Reference)
	switch {
	case c.Reference == "":
		issues.Add(ErrUnknownVariant.WithMessage("no reference variant was configured"))
	case !ok:
		issues.Add(ErrUnknownVariant.
			WithMessage(fmt.Sprintf("the reference variant %q is not one of the configured variants", c.Reference)))
	case c.ReferenceData == nil:
		issues.Add(ErrReferenceIdentity.
			WithMessage(fmt.Sprintf("the reference data for %q is missing", c.Reference)))
	case c.ReferenceData != ref.Data:
		issues.Add(ErrReferenceIdentity.
			WithMessage(fmt.Sprintf("the reference data must be the same dictionary as the %q variant, not a copy", c.Reference)))
	}

	if c.Active != "" {
		if _, ok := c.find(c.Active); !ok {
			issues.Add(ErrUnknownVariant.
				WithMessage(fmt.Sprintf("the active variant %q is not one of the configured variants", c.Active)))
		}
	}
	return issues
}

func (c *Config) find(name string) (Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// resolveAll 解析每个变体，Parallel > 1 时并行
func resolveAll(cfg *Config) []*resolver.Result {
	results := make([]*resolver.Result, len(cfg.Variants))
	run := func(i int) {
		v := cfg.Variants[i]
		rc := resolver.DefaultConfig()
		for _, opt := range cfg.Resolver {
			opt(rc)
		}
		rc.Namespace = v.Name
		results[i] = resolver.Resolve(v.Data, rc)
	}

	if cfg.Parallel <= 1 {
		for i := range cfg.Variants {
			run(i)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(cfg.Parallel)
	for i := range cfg.Variants {
		g.Go(func() error {
			run(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// withLabels 补全展示名称，名称不是合法语言标签时给出 warning
func withLabels(variants []Variant, issues *errors.List) []Variant {
	out := make([]Variant, len(variants))
	for i, v := range variants {
		tag, err := language.Parse(v.Name)
		if err != nil {
			issues.Add(ErrInvalidVariantTag.
				WithMessage(fmt.Sprintf("the variant %q is not a valid language tag: %v", v.Name, err)).
				WithError(err).
				WithSource(v.Name))
		}
		if v.Label == "" {
			v.Label = v.Name
			if err == nil {
				if name := display.Self.Name(tag); name != "" {
					v.Label = name
				}
			}
		}
		out[i] = v
	}
	return out
}

// unscopedKeys 变体全部键（含别名），去掉命名空间
func unscopedKeys(t *resolver.Tables) resolver.KeySet {
	keys := make(resolver.KeySet, len(t.Kinds))
	for k := range t.Kinds {
		keys[resolver.StripNamespace(t.Namespace, k)] = struct{}{}
	}
	return keys
}

// diff 计算 missing = ref - keys，extra = keys - ref
func diff(ref, keys resolver.KeySet) Mismatch {
	var m Mismatch
	for _, k := range ref.Sorted() {
		if !keys.Has(k) {
			m.Missing = append(m.Missing, k)
		}
	}
	for _, k := range keys.Sorted() {
		if !ref.Has(k) {
			m.Extra = append(m.Extra, k)
		}
	}
	return m
}
