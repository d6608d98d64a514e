package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tokmz/commentvars/pkg/loader"
	"github.com/tokmz/commentvars/pkg/logger"
	"github.com/tokmz/commentvars/pkg/resolver"
	"github.com/tokmz/commentvars/pkg/variant"
)

// Settings 引擎设置
//
//	data: comments.yaml
//	composition_only: [greet]
//	variations:
//	  dir: comments
//	  reference: en
//	  variants:
//	    - name: en
//	    - name: fr
//	      allow_incomplete: true
type Settings struct {
	// Data 单字典模式下的字典文件
	Data string `mapstructure:"data"`
	// CompositionOnly 仅用于组合的键
	CompositionOnly []string `mapstructure:"composition_only"`
	// AllowReservedKeys 是否允许 "key" / "value" 作为原始键
	AllowReservedKeys bool `mapstructure:"allow_reserved_keys"`
	// AllowPlaceholderKey 是否允许 "placeholder" 作为原始键（默认 true）
	AllowPlaceholderKey bool `mapstructure:"allow_placeholder_key"`
	// MaxDepth 字典最大嵌套深度（默认 100）
	MaxDepth int `mapstructure:"max_depth"`
	// Variations 变体模式设置，配置了 variants 时启用
	Variations Variations `mapstructure:"variations"`
	// LogLevel 引擎日志级别（debug/info/warn/error），为空时不调整
	LogLevel string `mapstructure:"log_level"`
}

// Variations 变体设置
type Variations struct {
	Dir             string            `mapstructure:"dir"`
	Pattern         string            `mapstructure:"pattern"`
	Reference       string            `mapstructure:"reference"`
	Active          string            `mapstructure:"active"`
	AllowIncomplete bool              `mapstructure:"allow_incomplete"`
	Parallel        int               `mapstructure:"parallel"`
	Variants        []VariantSettings `mapstructure:"variants"`
}

// VariantSettings 单个变体设置
type VariantSettings struct {
	Name            string `mapstructure:"name"`
	Label           string `mapstructure:"label"`
	File            string `mapstructure:"file"`
	AllowIncomplete bool   `mapstructure:"allow_incomplete"`
}

// settingsDefaults 内置默认值
func settingsDefaults() map[string]any {
	return map[string]any{
		"allow_placeholder_key": true,
		"max_depth":             resolver.DefaultMaxDepth,
	}
}

// Enabled 是否启用变体模式
func (v Variations) Enabled() bool {
	return len(v.Variants) > 0
}

// Names 变体名称，保持配置顺序
func (v Variations) Names() []string {
	names := make([]string, 0, len(v.Variants))
	for _, vs := range v.Variants {
		names = append(names, vs.Name)
	}
	return names
}

// Validate 校验设置，补全默认值
func (s *Settings) Validate() error {
	if s.MaxDepth < 0 {
		return invalid("max_depth must not be negative, got %d", s.MaxDepth)
	}
	if s.LogLevel != "" {
		if _, err := logger.ParseLevel(s.LogLevel); err != nil {
			return invalid("log_level: %v", err)
		}
	}

	if !s.Variations.Enabled() {
		if s.Data == "" {
			return invalid("either data or variations.variants must be configured")
		}
		return nil
	}

	v := &s.Variations
	if s.Data != "" {
		return invalid("data and variations.variants are mutually exclusive")
	}
	if v.Pattern == "" {
		v.Pattern = loader.DefaultPattern
	}
	if v.Parallel < 0 {
		return invalid("variations.parallel must not be negative, got %d", v.Parallel)
	}

	seen := make(map[string]bool, len(v.Variants))
	for i, vs := range v.Variants {
		if vs.Name == "" {
			return invalid("variations.variants[%d] has no name", i)
		}
		if vs.File == "" && !strings.Contains(v.Pattern, loader.VariantPlaceholder) {
			return invalid("variations.pattern %q does not contain %s", v.Pattern, loader.VariantPlaceholder)
		}
		seen[vs.Name] = true
	}
	if v.Reference == "" {
		return invalid("variations.reference is required")
	}
	if !seen[v.Reference] {
		return invalid("variations.reference %q is not a configured variant", v.Reference)
	}
	if v.Active != "" && !seen[v.Active] {
		return invalid("variations.active %q is not a configured variant", v.Active)
	}
	return nil
}

// ResolverOptions 转换为解析选项
func (s *Settings) ResolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithCompositionOnly(s.CompositionOnly...),
		resolver.WithAllowReservedKeys(s.AllowReservedKeys),
		resolver.WithAllowPlaceholderKey(s.AllowPlaceholderKey),
		resolver.WithMaxDepth(s.MaxDepth),
	}
}

// VariantOptions 转换为变体选项（不含字典数据）
func (s *Settings) VariantOptions() []variant.Option {
	v := s.Variations
	return []variant.Option{
		variant.WithActive(v.Active),
		variant.WithAllowIncomplete(v.AllowIncomplete),
		variant.WithParallel(v.Parallel),
		variant.WithResolverOptions(s.ResolverOptions()...),
	}
}

// Files 返回需要加载的字典文件，相对路径基于 base 目录
// 单字典模式下键为空字符串
func (s *Settings) Files(base string) map[string]string {
	if !s.Variations.Enabled() {
		return map[string]string{"": abs(base, s.Data)}
	}
	v := s.Variations
	fl := &loader.FileLoader{Dir: abs(base, v.Dir), Pattern: v.Pattern}
	files := make(map[string]string, len(v.Variants))
	for _, vs := range v.Variants {
		if vs.File != "" {
			files[vs.Name] = abs(fl.Dir, vs.File)
			continue
		}
		files[vs.Name] = fl.Path(vs.Name)
	}
	return files
}

func abs(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func invalid(format string, args ...any) error {
	return ErrInvalidSettings.WithMessage(fmt.Sprintf(format, args...))
}
