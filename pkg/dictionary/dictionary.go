// Package dictionary 提供有序的注释字典树。
//
// 叶子为字符串，内部节点为 *Dictionary。插入顺序被保留，
// 同一节点内重复的原始键不会覆盖旧值，而是被显式记录，交由解析器报告。
package dictionary

import (
	"slices"
	"sort"
)

// Dictionary 有序字典节点
type Dictionary struct {
	entries    []Entry
	index      map[string]int // key -> entries 下标
	duplicates []Entry        // 同一节点内重复出现的原始键
}

// Entry 字典条目
type Entry struct {
	Key   string
	value any // string | *Dictionary | 其他（非法类型，由解析器报告）
}

// New 创建空字典
func New() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

// Set 追加条目，返回自身以便链式调用
// 键已存在时保留第一次的值，并记录重复
func (d *Dictionary) Set(key string, value any) *Dictionary {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	e := Entry{Key: key, value: convert(value)}
	if _, ok := d.index[key]; ok {
		d.duplicates = append(d.duplicates, e)
		return d
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, e)
	return d
}

// Len 条目数量
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries 按插入顺序返回条目副本
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	return slices.Clone(d.entries)
}

// Duplicates 返回本节点内被拒绝的重复键条目（不含子节点）
func (d *Dictionary) Duplicates() []Entry {
	if d == nil {
		return nil
	}
	return slices.Clone(d.duplicates)
}

// Get 按原始键查找
func (d *Dictionary) Get(key string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	i, ok := d.index[key]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Keys 按插入顺序返回原始键
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// String 叶子字符串值
func (e Entry) String() (string, bool) {
	s, ok := e.value.(string)
	return s, ok
}

// Dict 子字典
func (e Entry) Dict() (*Dictionary, bool) {
	d, ok := e.value.(*Dictionary)
	return d, ok && d != nil
}

// Raw 原始值
func (e Entry) Raw() any {
	return e.value
}

// FromMap 从 Go map 构建字典
// Go map 无序，同层键按字典序插入以保证结果稳定；需要保留声明顺序时请使用 New().Set
func FromMap(m map[string]any) *Dictionary {
	d := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.Set(k, m[k])
	}
	return d
}

// convert 将嵌套 map 转为 *Dictionary，其余值原样保留
func convert(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return FromMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return FromMap(m)
	default:
		return v
	}
}
