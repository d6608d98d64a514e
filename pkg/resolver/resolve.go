package resolver

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/tokmz/commentvars/pkg/errors"
)

// resolution 引用解析的中间结果
type resolution struct {
	aliases  AliasTable
	rendered map[Key]string
	segments map[Key][]Key
	compOnly KeySet
}

// resolveReferences 解析别名与组合条目
func resolveReferences(entries []FlattenedEntry, classes map[Key]Classified, idx *keyIndex, cfg *Config) (*resolution, errors.List) {
	var issues errors.List
	r := &resolution{
		aliases:  make(AliasTable),
		rendered: make(map[Key]string),
		segments: make(map[Key][]Key),
		compOnly: make(KeySet),
	}
	values := make(map[Key]FlattenedEntry, len(entries))
	for _, e := range entries {
		values[e.Key] = e
	}

	// 别名只允许一跳
	for _, e := range entries {
		c := classes[e.Key]
		if c.Kind != KindAlias {
			continue
		}
		switch {
		case c.Target == e.Key:
			issues.Add(ErrSelfAlias.
				WithMessage(fmt.Sprintf("the alias %q at %q references itself", e.Key, e.Source)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
		case classes[c.Target].Kind == KindAlias:
			issues.Add(ErrChainedAlias.
				WithMessage(fmt.Sprintf("the alias %q at %q references the alias %q; aliases must point to a plain or composed entry",
					e.Key, e.Source, c.Target)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
		default:
			r.aliases[e.Key] = c.Target
		}
	}

	for _, e := range entries {
		c := classes[e.Key]
		if c.Kind != KindComposed {
			continue
		}
		segs, errs := r.resolveComposition(e, c, classes, idx)
		if len(errs) > 0 {
			issues.Extend(errs)
			continue
		}
		parts := make([]string, len(segs))
		for i, s := range segs {
			parts[i] = values[s].Value
		}
		r.segments[e.Key] = segs
		r.rendered[e.Key] = strings.Join(parts, " ")
	}

	issues.Extend(r.resolveCompositionOnly(cfg.CompositionOnly, classes, idx))
	return r, issues
}

// resolveComposition 校验组合条目并返回展开别名后的片段键
func (r *resolution) resolveComposition(e FlattenedEntry, c Classified, classes map[Key]Classified, idx *keyIndex) ([]Key, errors.List) {
	var issues errors.List
	if msg := compositionShape(e.Value, len(c.Refs)); msg != "" {
		issues.Add(ErrMalformedComposition.
			WithMessage(fmt.Sprintf("the composed value at %q %s", e.Source, msg)).
			WithKey(string(e.Key)).
			WithSource(e.Source))
		return nil, issues
	}

	segs := make([]Key, 0, len(c.Refs))
	for _, ref := range c.Refs {
		found, ok := idx.lookup(ref)
		if !ok {
			issues.Add(ErrUnknownReference.
				WithMessage(fmt.Sprintf("the composed value at %q references %q, which does not exist", e.Source, ref)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
			continue
		}
		if found == e.Key {
			issues.Add(ErrCompositionSelfReference.
				WithMessage(fmt.Sprintf("the composed value at %q references itself", e.Source)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
			continue
		}

		seg := found
		switch classes[found].Kind {
		case KindComposed:
			issues.Add(ErrNestedComposition.
				WithMessage(fmt.Sprintf("the composed value at %q references the composed entry %q; compositions cannot be nested", e.Source, found)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
			continue
		case KindAlias:
			target, resolved := r.aliases[found]
			if !resolved {
				// 别名本身非法，已在别名阶段报告
				issues.Add(ErrUnknownReference.
					WithMessage(fmt.Sprintf("the composed value at %q references the unresolved alias %q", e.Source, found)).
					WithKey(string(e.Key)).
					WithSource(e.Source))
				continue
			}
			if target == e.Key {
				issues.Add(ErrCompositionSelfReference.
					WithMessage(fmt.Sprintf("the composed value at %q references itself through the alias %q", e.Source, found)).
					WithKey(string(e.Key)).
					WithSource(e.Source))
				continue
			}
			if classes[target].Kind == KindComposed {
				issues.Add(ErrNestedComposition.
					WithMessage(fmt.Sprintf("the composed value at %q references %q, an alias of the composed entry %q; compositions cannot be nested",
						e.Source, found, target)).
					WithKey(string(e.Key)).
					WithSource(e.Source))
				continue
			}
			seg = target
		}
		segs = append(segs, seg)
	}
	return segs, issues
}

// compositionShape 检查组合值的形态，合法时返回空字符串
// 值只能由占位符与空白组成，占位符之间至少一个空白，且至少两个片段
func compositionShape(value string, refs int) string {
	locs := placeholderRegex.FindAllStringIndex(value, -1)
	prev := 0
	for i, loc := range locs {
		gap := value[prev:loc[0]]
		if strings.TrimFunc(gap, unicode.IsSpace) != "" {
			return fmt.Sprintf("mixes the text %q with placeholders", strings.TrimSpace(gap))
		}
		if i > 0 && gap == "" {
			return "has placeholders that are not separated by whitespace"
		}
		prev = loc[1]
	}
	if tail := value[prev:]; strings.TrimFunc(tail, unicode.IsSpace) != "" {
		return fmt.Sprintf("mixes the text %q with placeholders", strings.TrimSpace(tail))
	}
	if refs < 2 {
		return "should be made of at least two placeholders; use an alias to reference a single entry"
	}
	return ""
}

// resolveCompositionOnly 解析仅组合键列表
// 不存在或未被使用的键只产生 warning；指向非普通条目的键是错误
func (r *resolution) resolveCompositionOnly(raw []string, classes map[Key]Classified, idx *keyIndex) errors.List {
	var issues errors.List
	used := make(KeySet)
	for _, segs := range r.segments {
		for _, s := range segs {
			used[s] = struct{}{}
		}
	}

	for _, name := range raw {
		ref := Key(collapseSpace(string(normalizeReference(strings.TrimSpace(name)))))
		key, ok := idx.lookup(ref)
		if !ok {
			issues.Add(ErrUnusedCompositionOnlyKey.
				WithMessage(fmt.Sprintf("the composition-only key %q does not exist and will be skipped", name)).
				WithKey(string(ref)))
			continue
		}
		if kind := classes[key].Kind; kind != KindPlain {
			issues.Add(ErrInvalidCompositionOnlyKey.
				WithMessage(fmt.Sprintf("the composition-only key %q is a %s entry; only plain entries can be composition-only", key, kind)).
				WithKey(string(key)))
			continue
		}
		if !used.Has(key) {
			issues.Add(ErrUnusedCompositionOnlyKey.
				WithMessage(fmt.Sprintf("the composition-only key %q is not used by any composed entry", key)).
				WithKey(string(key)))
		}
		r.compOnly[key] = struct{}{}
	}
	return issues
}

// sortedKeys 排序后的键
func sortedKeys[V any](m map[Key]V) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
