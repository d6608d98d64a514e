package resolver

import "fmt"

// DefaultMaxDepth 默认最大嵌套深度
const DefaultMaxDepth = 100

// Config 解析配置，每次调用独立传入，不读取任何全局状态
type Config struct {
	// CompositionOnly 仅用于组合的键（可带或不带 $COMMENT# 前缀）
	CompositionOnly []string
	// AllowReservedKeys 是否允许原始键为 "key" / "value"
	AllowReservedKeys bool
	// AllowPlaceholderKey 是否允许原始键为 "placeholder"（默认 true）
	AllowPlaceholderKey bool
	// MaxDepth 字典最大嵌套深度（默认 100）
	MaxDepth int
	// Namespace 命名空间，作为所有路径的第一段（变体层使用）
	Namespace string
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		AllowPlaceholderKey: true,
		MaxDepth:            DefaultMaxDepth,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("max depth must not be negative, got %d", c.MaxDepth))
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Namespace != "" && !rawKeyRegex.MatchString(c.Namespace) {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("namespace %q is not a valid key", c.Namespace))
	}
	return nil
}

// namespace 规范化后的命名空间
func (c *Config) namespace() string {
	if c.Namespace == "" {
		return ""
	}
	k, _ := Normalize([]string{c.Namespace})
	return string(k)
}

// Option 配置选项
type Option func(*Config)

// WithCompositionOnly 设置仅组合键
func WithCompositionOnly(keys ...string) Option {
	return func(c *Config) {
		c.CompositionOnly = keys
	}
}

// WithAllowReservedKeys 设置是否允许 "key" / "value" 作为原始键
func WithAllowReservedKeys(allow bool) Option {
	return func(c *Config) {
		c.AllowReservedKeys = allow
	}
}

// WithAllowPlaceholderKey 设置是否允许 "placeholder" 作为原始键
func WithAllowPlaceholderKey(allow bool) Option {
	return func(c *Config) {
		c.AllowPlaceholderKey = allow
	}
}

// WithMaxDepth 设置最大嵌套深度
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithNamespace 设置命名空间
func WithNamespace(ns string) Option {
	return func(c *Config) {
		c.Namespace = ns
	}
}
