package resolver

import (
	"maps"
	"slices"
	"sort"
	"strings"
)

// StringKeyedStringMap 扁平表与反向表共有的只读能力
type StringKeyedStringMap interface {
	Lookup(key string) (string, bool)
	Len() int
	Keys() []string
}

// FlattenedTable 键 -> 文本
type FlattenedTable map[Key]string

// ReversedTable 文本 -> 键
type ReversedTable map[string]Key

// AliasTable 别名键 -> 规范键
type AliasTable map[Key]Key

// KeySet 键集合
type KeySet map[Key]struct{}

var (
	_ StringKeyedStringMap = FlattenedTable(nil)
	_ StringKeyedStringMap = ReversedTable(nil)
)

// Lookup 按键查找文本
func (t FlattenedTable) Lookup(key string) (string, bool) {
	v, ok := t[Key(key)]
	return v, ok
}

// Len 条目数量
func (t FlattenedTable) Len() int { return len(t) }

// Keys 排序后的键
func (t FlattenedTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Lookup 按文本查找键
func (t ReversedTable) Lookup(value string) (string, bool) {
	k, ok := t[value]
	return string(k), ok
}

// Len 条目数量
func (t ReversedTable) Len() int { return len(t) }

// Keys 排序后的文本
func (t ReversedTable) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// ReversedEntry 反向表条目
type ReversedEntry struct {
	Value string
	Key   Key
}

// ByLength 按文本长度降序排列，长度相同时按键排序
// 压缩时先替换长文本，避免短文本被部分替换
func (t ReversedTable) ByLength() []ReversedEntry {
	entries := make([]ReversedEntry, 0, len(t))
	for v, k := range t {
		entries = append(entries, ReversedEntry{Value: v, Key: k})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].Value) != len(entries[j].Value) {
			return len(entries[i].Value) > len(entries[j].Value)
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Has 是否包含键
func (s KeySet) Has(key Key) bool {
	_, ok := s[key]
	return ok
}

// Sorted 排序后的键
func (s KeySet) Sorted() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Kind 条目类别
type Kind int

const (
	// KindPlain 普通文本
	KindPlain Kind = iota
	// KindAlias 别名，值为另一条目的键
	KindAlias
	// KindComposed 组合，值由多个占位符组成
	KindComposed
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindAlias:
		return "alias"
	case KindComposed:
		return "composed"
	default:
		return "unknown"
	}
}

// Tables 一次成功解析产出的全部查找表，产出后不可修改
type Tables struct {
	// Flattened 普通条目与组合条目（组合条目为渲染后的文本），不含别名
	Flattened FlattenedTable
	// Reversed Flattened 的逆表
	Reversed ReversedTable
	// Aliases 别名 -> 规范键
	Aliases AliasTable
	// CompositionOnly 仅用于组合的键，替换时应跳过
	CompositionOnly KeySet
	// Original 解析前的扁平表（别名保留目标文本，组合保留占位符文本）
	Original FlattenedTable
	// Segments 组合条目 -> 规范化后的片段键（别名已展开）
	Segments map[Key][]Key
	// Kinds 每个键的类别
	Kinds map[Key]Kind
	// Sources 每个键的可读原始路径
	Sources map[Key]string
	// Namespace 命名空间（变体标签），单字典模式为空
	Namespace string
}

// Lookup 按键查找文本，别名跟随一跳
func (t *Tables) Lookup(key Key) (string, bool) {
	if target, ok := t.Aliases[key]; ok {
		key = target
	}
	v, ok := t.Flattened[key]
	return v, ok
}

// KeyFor 按文本查找键
func (t *Tables) KeyFor(value string) (Key, bool) {
	k, ok := t.Reversed[value]
	return k, ok
}

// Kind 查询键的类别
func (t *Tables) Kind(key Key) (Kind, bool) {
	k, ok := t.Kinds[key]
	return k, ok
}

// Keys 全部键（含别名），排序
func (t *Tables) Keys() []Key {
	keys := make([]Key, 0, len(t.Kinds))
	for k := range t.Kinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Skip 替换时是否应跳过该键（仅组合键本身或指向它的别名）
func (t *Tables) Skip(key Key) bool {
	if target, ok := t.Aliases[key]; ok {
		key = target
	}
	return t.CompositionOnly.Has(key)
}

// Unscoped 返回去掉命名空间前缀的副本，未设置命名空间时返回自身
func (t *Tables) Unscoped() *Tables {
	if t.Namespace == "" {
		return t
	}
	ns := t.Namespace
	strip := func(k Key) Key { return StripNamespace(ns, k) }

	out := &Tables{
		Flattened:       make(FlattenedTable, len(t.Flattened)),
		Reversed:        make(ReversedTable, len(t.Reversed)),
		Aliases:         make(AliasTable, len(t.Aliases)),
		CompositionOnly: make(KeySet, len(t.CompositionOnly)),
		Original:        make(FlattenedTable, len(t.Original)),
		Segments:        make(map[Key][]Key, len(t.Segments)),
		Kinds:           make(map[Key]Kind, len(t.Kinds)),
		Sources:         make(map[Key]string, len(t.Sources)),
	}
	for k, v := range t.Flattened {
		out.Flattened[strip(k)] = v
	}
	for v, k := range t.Reversed {
		out.Reversed[v] = strip(k)
	}
	for a, k := range t.Aliases {
		out.Aliases[strip(a)] = strip(k)
	}
	for k := range t.CompositionOnly {
		out.CompositionOnly[strip(k)] = struct{}{}
	}
	for k, v := range t.Original {
		out.Original[strip(k)] = v
	}
	for k, segs := range t.Segments {
		stripped := make([]Key, len(segs))
		for i, s := range segs {
			stripped[i] = strip(s)
		}
		out.Segments[strip(k)] = stripped
	}
	for k, kind := range t.Kinds {
		out.Kinds[strip(k)] = kind
	}
	for k, src := range t.Sources {
		if _, rest, ok := strings.Cut(src, SourceSeparator); ok {
			src = rest
		}
		out.Sources[strip(k)] = src
	}
	return out
}
