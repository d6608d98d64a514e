package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Prefix 占位符前缀
	Prefix = "$COMMENT"
	// Separator 路径段连接符
	Separator = "#"
	// SourceSeparator 可读路径连接符，仅用于诊断
	SourceSeparator = " > "
)

// Key 规范化后的扁平键，如 LEVELONE#LEVELTWO#LEVELTHREE
type Key string

// String 返回键文本
func (k Key) String() string {
	return string(k)
}

// Placeholder 返回该键的占位符形式
func (k Key) Placeholder() string {
	return Placeholder(k)
}

var (
	// 原始键：任意文字、数字、连字符、下划线与空白
	rawKeyRegex = regexp.MustCompile(`^[\p{Ll}\p{Lu}\p{Lo}\p{Pd}\p{Pc}\p{N}\s\p{Zs}]+$`)
	// 扁平键：去掉小写字母和空白，加上段连接符 #
	flattenedKeyRegex = regexp.MustCompile(`^[\p{Lu}\p{Lo}\p{Pd}\p{Pc}\p{N}#]+$`)
	// 占位符：$COMMENT# 之后紧跟扁平键字符
	placeholderRegex = regexp.MustCompile(`\$COMMENT#([\p{Lu}\p{Lo}\p{Pd}\p{Pc}\p{N}#_]+)`)
)

// Normalize 将路径段转换为扁平键与可读来源
// 每段转大写后以 # 连接，空白串折叠为单个下划线
func Normalize(path []string) (Key, string) {
	upper := cases.Upper(language.Und)
	segments := make([]string, len(path))
	for i, s := range path {
		segments[i] = upper.String(s)
	}
	return Key(collapseSpace(strings.Join(segments, Separator))), strings.Join(path, SourceSeparator)
}

// collapseSpace 将连续空白替换为一个下划线
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholder 渲染占位符 $COMMENT#<KEY>
func Placeholder(key Key) string {
	return Prefix + Separator + string(key)
}

// ParsePlaceholders 按出现顺序返回文本中引用的键
func ParsePlaceholders(text string) []Key {
	matches := placeholderRegex.FindAllStringSubmatch(text, -1)
	keys := make([]Key, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, Key(m[1]))
	}
	return keys
}

// IsValidKey 检查扁平键字符集
func IsValidKey(key Key) bool {
	return flattenedKeyRegex.MatchString(string(key))
}

// normalizeReference 将值转换为可与键比较的形式：大写并去掉占位符前缀
func normalizeReference(value string) Key {
	ref := cases.Upper(language.Und).String(value)
	ref = strings.TrimPrefix(ref, Prefix+Separator)
	return Key(ref)
}

// namespaced 在命名空间内补全键
func namespaced(ns string, key Key) Key {
	if ns == "" {
		return key
	}
	return Key(ns + Separator + string(key))
}

// StripNamespace 去掉键的命名空间前缀；不带该前缀时原样返回
func StripNamespace(ns string, key Key) Key {
	if ns == "" {
		return key
	}
	return Key(strings.TrimPrefix(string(key), ns+Separator))
}
