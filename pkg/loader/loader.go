// Package loader 从 YAML/JSON 文件读取注释字典。
//
// 文件按声明顺序解码为 dictionary.Dictionary，同一映射内重复的键会被保留下来，
// 由解析器报告为 DuplicateRawKey，而不是在解码阶段被后者覆盖。
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/errors"
)

// VariantPlaceholder 文件名模式中的变体占位符
const VariantPlaceholder = "{variant}"

// DefaultPattern 默认文件名模式
const DefaultPattern = VariantPlaceholder + ".yaml"

// Loader 变体字典加载器接口
type Loader interface {
	// Load 加载每个变体的字典
	Load(ctx context.Context, variants []string) (map[string]*dictionary.Dictionary, error)
}

// FileLoader 按文件名模式从目录加载变体字典
type FileLoader struct {
	Dir     string
	Pattern string
}

var _ Loader = (*FileLoader)(nil)

// Path 返回变体对应的文件路径
func (l *FileLoader) Path(variant string) string {
	pattern := l.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(l.Dir, strings.ReplaceAll(pattern, VariantPlaceholder, variant))
}

// Load 加载变体字典，任一文件缺失或解析失败即返回错误
func (l *FileLoader) Load(ctx context.Context, variants []string) (map[string]*dictionary.Dictionary, error) {
	if l.Pattern != "" && !strings.Contains(l.Pattern, VariantPlaceholder) {
		return nil, ErrInvalidPattern.WithMessage(fmt.Sprintf("pattern %q does not contain %s", l.Pattern, VariantPlaceholder))
	}

	result := make(map[string]*dictionary.Dictionary, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := LoadFile(l.Path(v))
		if err != nil {
			return nil, err
		}
		result[v] = d
	}
	return result, nil
}

// Files 变体名称到文件路径的映射，单字典模式使用空名称
type Files map[string]string

var _ Loader = Files(nil)

// Load 按映射加载字典
func (f Files) Load(ctx context.Context, variants []string) (map[string]*dictionary.Dictionary, error) {
	result := make(map[string]*dictionary.Dictionary, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, ok := f[v]
		if !ok {
			return nil, ErrFileNotFound.WithMessage(fmt.Sprintf("no dictionary file configured for variant %q", v)).WithSource(v)
		}
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		result[v] = d
	}
	return result, nil
}

// Paths 排序后的文件路径（去重）
func (f Files) Paths() []string {
	seen := make(map[string]bool, len(f))
	paths := make([]string, 0, len(f))
	for _, p := range f {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// LoadFile 读取并解析单个字典文件
func LoadFile(path string) (*dictionary.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound.WithError(err).WithMessage(fmt.Sprintf("dictionary file %s not found", path)).WithSource(path)
		}
		return nil, ErrReadFile.WithError(err).WithMessage(fmt.Sprintf("failed to read %s: %v", path, err)).WithSource(path)
	}

	d, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			return nil, e.WithSource(path).WithMessage(path + ": " + e.Message)
		}
		return nil, err
	}
	return d, nil
}

// Parse 解析 YAML 或 JSON 内容
// 空内容得到空字典；顶层必须是映射
func Parse(data []byte) (*dictionary.Dictionary, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap(), yaml.AllowDuplicateMapKey()); err != nil {
		return nil, ErrParse.WithError(err).WithMessage(fmt.Sprintf("failed to parse dictionary: %v", err))
	}
	if raw == nil {
		return dictionary.New(), nil
	}
	root, ok := raw.(yaml.MapSlice)
	if !ok {
		return nil, ErrNotMapping.WithMessage(fmt.Sprintf("dictionary root should be a mapping, got %T", raw))
	}
	return fromMapSlice(root), nil
}

// fromMapSlice 将有序映射转换为字典，非映射的值原样保留由解析器校验
func fromMapSlice(m yaml.MapSlice) *dictionary.Dictionary {
	d := dictionary.New()
	for _, item := range m {
		key := fmt.Sprint(item.Key)
		if child, ok := item.Value.(yaml.MapSlice); ok {
			d.Set(key, fromMapSlice(child))
			continue
		}
		d.Set(key, item.Value)
	}
	return d
}
