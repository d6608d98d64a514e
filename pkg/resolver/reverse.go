package resolver

import (
	"fmt"

	"github.com/tokmz/commentvars/pkg/errors"
)

// buildReverse 在引用解析成功后构建最终的正向表与反向表
// 组合条目此时已被渲染，需要再次确认值唯一且没有值等于任何键
func buildReverse(entries []FlattenedEntry, classes map[Key]Classified, r *resolution) (FlattenedTable, ReversedTable, errors.List) {
	var issues errors.List
	flattened := make(FlattenedTable, len(entries))
	reversed := make(ReversedTable, len(entries))
	sources := make(map[Key]string, len(entries))

	for _, e := range entries {
		sources[e.Key] = e.Source
		switch classes[e.Key].Kind {
		case KindPlain:
			flattened[e.Key] = e.Value
		case KindComposed:
			flattened[e.Key] = r.rendered[e.Key]
		}
	}

	for _, key := range sortedKeys(flattened) {
		value := flattened[key]
		if _, ok := classes[Key(value)]; ok {
			issues.Add(ErrKeyValueCollision.
				WithMessage(fmt.Sprintf("the value %q of %q is also a key", value, sources[key])).
				WithKey(string(key)).
				WithSource(sources[key]))
			continue
		}
		if owner, ok := reversed[value]; ok {
			issues.Add(ErrDuplicateValue.
				WithMessage(fmt.Sprintf("the value %q of %q is already assigned to the key %q at %q",
					value, sources[key], owner, sources[owner])).
				WithKey(string(key)).
				WithSource(sources[key]))
			continue
		}
		reversed[value] = key
	}

	return flattened, reversed, issues
}
