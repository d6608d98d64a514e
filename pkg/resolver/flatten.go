package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/errors"
)

// 注释定界符，既不能作为原始键，也不能出现在值中
var commentDelimiters = []string{"//", "/*", "*/"}

// FlattenedEntry 扁平化条目，Source 仅用于诊断
type FlattenedEntry struct {
	Key    Key
	Value  string
	Source string
}

// flattener 单次遍历的工作状态
type flattener struct {
	cfg     *Config
	entries []FlattenedEntry
	index   map[Key]int
	onStack map[*dictionary.Dictionary]struct{}
	issues  errors.List
}

// Flatten 遍历字典，产出按声明顺序排列的扁平条目
// 只检查遍历本身的结构合法性，不涉及条目间语义
func Flatten(dict *dictionary.Dictionary, cfg *Config) ([]FlattenedEntry, errors.List) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	f := &flattener{
		cfg:     cfg,
		index:   make(map[Key]int),
		onStack: make(map[*dictionary.Dictionary]struct{}),
	}
	var root []string
	if cfg.Namespace != "" {
		root = []string{cfg.Namespace}
	}
	f.walk(dict, root, 0)
	return f.entries, f.issues
}

func (f *flattener) walk(d *dictionary.Dictionary, path []string, depth int) {
	source := strings.Join(path, SourceSeparator)
	if depth > f.cfg.MaxDepth {
		f.issues.Add(ErrDepthExceeded.
			WithMessage(fmt.Sprintf("max depth %d reached at %q", f.cfg.MaxDepth, source)).
			WithSource(source))
		return
	}
	if _, ok := f.onStack[d]; ok {
		f.issues.Add(ErrDepthExceeded.
			WithMessage(fmt.Sprintf("dictionary at %q contains itself", source)).
			WithSource(source))
		return
	}
	f.onStack[d] = struct{}{}
	defer delete(f.onStack, d)

	for _, dup := range d.Duplicates() {
		dupSource := strings.Join(append(slices.Clone(path), dup.Key), SourceSeparator)
		f.issues.Add(ErrDuplicateRawKey.
			WithMessage(fmt.Sprintf("key %q is declared more than once at %q", dup.Key, dupSource)).
			WithSource(dupSource))
	}

	for _, e := range d.Entries() {
		next := append(slices.Clone(path), e.Key)
		if !f.checkRawKey(e.Key, next) {
			continue
		}

		if s, ok := e.String(); ok {
			f.insert(next, s)
			continue
		}
		if child, ok := e.Dict(); ok {
			f.walk(child, next, depth+1)
			continue
		}

		src := strings.Join(next, SourceSeparator)
		f.issues.Add(ErrInvalidValueType.
			WithMessage(fmt.Sprintf("value `%v` of type %T at %q should be a string or a nested dictionary", e.Raw(), e.Raw(), src)).
			WithSource(src))
	}
}

// insert 写入一个字符串叶子，规范化键冲突时报告两条路径
func (f *flattener) insert(path []string, value string) {
	key, source := Normalize(path)
	if i, ok := f.index[key]; ok {
		f.issues.Add(ErrDuplicateNormalizedKey.
			WithMessage(fmt.Sprintf("the normalized key %q has already been assigned; check between the two following key paths: %q and %q",
				key, f.entries[i].Source, source)).
			WithKey(string(key)).
			WithSource(source))
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, FlattenedEntry{Key: key, Value: value, Source: source})
}

// checkRawKey 检查原始键，返回该键是否可以继续参与扁平化
func (f *flattener) checkRawKey(key string, path []string) bool {
	source := strings.Join(path, SourceSeparator)
	switch {
	case key == "":
		f.issues.Add(ErrEmptyKey.WithMessage(fmt.Sprintf("empty key at %q", source)).WithSource(source))
		return false
	case slices.Contains(commentDelimiters, key):
		f.issues.Add(ErrCommentDelimiter.
			WithMessage(fmt.Sprintf("key %q at %q is a comment delimiter", key, source)).
			WithSource(source))
		return false
	}

	valid := true
	if strings.Contains(key, "$") {
		f.issues.Add(ErrInvalidKey.
			WithMessage(fmt.Sprintf("key %q at %q should not include the \"$\" character", key, source)).
			WithSource(source))
		valid = false
	}
	if strings.Contains(key, Separator) {
		f.issues.Add(ErrInvalidKey.
			WithMessage(fmt.Sprintf("key %q at %q should not include the \"#\" character", key, source)).
			WithSource(source))
		valid = false
	}
	if valid && !rawKeyRegex.MatchString(key) {
		f.issues.Add(ErrInvalidKey.
			WithMessage(fmt.Sprintf("key %q at %q should only include letters, numbers, dashes, underscores and whitespaces", key, source)).
			WithSource(source))
		valid = false
	}
	if !valid {
		return false
	}

	switch key {
	case "key", "value":
		if !f.cfg.AllowReservedKeys {
			f.issues.Add(ErrReservedKey.
				WithMessage(fmt.Sprintf("key %q at %q is reserved", key, source)).
				WithSource(source))
		}
	case "placeholder":
		if !f.cfg.AllowPlaceholderKey {
			f.issues.Add(ErrReservedKey.
				WithMessage(fmt.Sprintf("key %q at %q is reserved", key, source)).
				WithSource(source))
		}
	}
	return true
}
