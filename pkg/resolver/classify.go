package resolver

import "strings"

// Classified 条目分类结果
type Classified struct {
	Kind Kind
	// Target 别名指向的键（可能等于自身，由解析阶段报告）
	Target Key
	// Refs 组合条目中按顺序书写的引用
	Refs []Key
}

// keyIndex 扁平键索引，支持命名空间内的简写引用
type keyIndex struct {
	ns   string
	keys map[Key]int
}

func newKeyIndex(entries []FlattenedEntry, ns string) *keyIndex {
	idx := &keyIndex{ns: ns, keys: make(map[Key]int, len(entries))}
	for i, e := range entries {
		idx.keys[e.Key] = i
	}
	return idx
}

// lookup 解析一个引用：先按原样匹配，再尝试补全命名空间
func (x *keyIndex) lookup(ref Key) (Key, bool) {
	if _, ok := x.keys[ref]; ok {
		return ref, true
	}
	if x.ns != "" && !strings.HasPrefix(string(ref), x.ns+Separator) {
		full := namespaced(x.ns, ref)
		if _, ok := x.keys[full]; ok {
			return full, true
		}
	}
	return "", false
}

// isReference 值是否指向某个已有键（即别名候选）
func (x *keyIndex) isReference(value string) bool {
	_, ok := x.lookup(normalizeReference(value))
	return ok
}

// Classify 将每个条目分为普通、别名候选或组合候选
// 包含占位符的值优先视为组合；否则值（大写、去前缀后）等于某个键即为别名
func Classify(entries []FlattenedEntry, ns string) map[Key]Classified {
	idx := newKeyIndex(entries, ns)
	return classify(entries, idx)
}

func classify(entries []FlattenedEntry, idx *keyIndex) map[Key]Classified {
	out := make(map[Key]Classified, len(entries))
	for _, e := range entries {
		if refs := ParsePlaceholders(e.Value); len(refs) > 0 {
			out[e.Key] = Classified{Kind: KindComposed, Refs: refs}
			continue
		}
		if target, ok := idx.lookup(normalizeReference(e.Value)); ok {
			out[e.Key] = Classified{Kind: KindAlias, Target: target}
			continue
		}
		out[e.Key] = Classified{Kind: KindPlain}
	}
	return out
}
