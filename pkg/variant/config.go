package variant

import (
	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/resolver"
)

// Variant 一个语言变体
type Variant struct {
	// Name 变体名称，同时作为命名空间（如 en、fr）
	Name string
	// Label 展示名称，为空时按语言标签推导（en -> English）
	Label string
	// Data 变体字典
	Data *dictionary.Dictionary
	// AllowIncomplete 允许该变体的键集合与参考变体不一致
	AllowIncomplete bool
}

// Config 变体叠加配置
type Config struct {
	// Variants 全部变体，顺序即输出顺序
	Variants []Variant
	// Reference 参考变体名称
	Reference string
	// ReferenceData 参考变体的字典，必须与 Variants 中对应条目的 Data 是同一个对象
	ReferenceData *dictionary.Dictionary
	// Active 当前激活的变体（为空时使用参考变体）
	Active string
	// AllowIncomplete 全局允许不完整
	AllowIncomplete bool
	// Parallel 最大并行解析数，<= 1 时按顺序解析
	Parallel int
	// Resolver 每个变体共用的解析选项，命名空间由变体名称决定
	Resolver []resolver.Option
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{}
}

// Option 配置选项
type Option func(*Config)

// WithVariant 追加变体
func WithVariant(name string, data *dictionary.Dictionary) Option {
	return func(c *Config) {
		c.Variants = append(c.Variants, Variant{Name: name, Data: data})
	}
}

// WithVariants 追加多个变体
func WithVariants(variants ...Variant) Option {
	return func(c *Config) {
		c.Variants = append(c.Variants, variants...)
	}
}

// WithReference 设置参考变体及其数据
func WithReference(name string, data *dictionary.Dictionary) Option {
	return func(c *Config) {
		c.Reference = name
		c.ReferenceData = data
	}
}

// WithActive 设置激活变体
func WithActive(name string) Option {
	return func(c *Config) {
		c.Active = name
	}
}

// WithAllowIncomplete 设置全局是否允许不完整
func WithAllowIncomplete(allow bool) Option {
	return func(c *Config) {
		c.AllowIncomplete = allow
	}
}

// WithParallel 设置最大并行解析数
func WithParallel(n int) Option {
	return func(c *Config) {
		c.Parallel = n
	}
}

// WithResolverOptions 追加解析选项
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(c *Config) {
		c.Resolver = append(c.Resolver, opts...)
	}
}
