package resolver

import (
	"fmt"
	"strings"

	"github.com/tokmz/commentvars/pkg/errors"
)

// validateIntegrity 在分类之前检查扁平表的全局约束，一次收集全部问题
// 别名候选的值本身就是键，不参与值唯一性与键值冲突检查
func validateIntegrity(entries []FlattenedEntry, idx *keyIndex) errors.List {
	var issues errors.List
	owners := make(map[string]FlattenedEntry, len(entries))

	for _, e := range entries {
		if !IsValidKey(e.Key) {
			issues.Add(ErrMalformedFlattenedKey.
				WithMessage(fmt.Sprintf("the key %q derived from %q is not properly formatted", e.Key, e.Source)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
		}

		if e.Value == "" {
			issues.Add(ErrEmptyValue.
				WithMessage(fmt.Sprintf("the value at %q is an empty string", e.Source)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
			continue
		}

		for _, d := range commentDelimiters {
			if strings.Contains(e.Value, d) {
				issues.Add(ErrCommentDelimiter.
					WithMessage(fmt.Sprintf("the value at %q contains the comment delimiter %q", e.Source, d)).
					WithKey(string(e.Key)).
					WithSource(e.Source))
			}
		}

		if idx.isReference(e.Value) {
			continue
		}
		if other, ok := owners[e.Value]; ok {
			issues.Add(ErrDuplicateValue.
				WithMessage(fmt.Sprintf("the value %q at %q is already assigned to the key %q at %q", e.Value, e.Source, other.Key, other.Source)).
				WithKey(string(e.Key)).
				WithSource(e.Source))
			continue
		}
		owners[e.Value] = e
	}

	return issues
}
