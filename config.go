package commentvars

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tokmz/commentvars/pkg/config"
	"github.com/tokmz/commentvars/pkg/loader"
	"github.com/tokmz/commentvars/pkg/logger"
)

// DefaultDebounce 文件变更后等待合并的时间
const DefaultDebounce = 100 * time.Millisecond

// Config 引擎配置
type Config struct {
	// ConfigFile 设置文件完整路径
	ConfigFile string

	// ConfigName 设置文件名（不含扩展名），配合 ConfigPaths 搜索
	ConfigName string

	// ConfigPaths 设置文件搜索路径
	ConfigPaths []string

	// EnvPrefix 环境变量前缀，如 COMMENTVARS_DATA 覆盖 data
	EnvPrefix string

	// Settings 直接提供的设置，设置后不读取设置文件
	Settings *config.Settings

	// BaseDir 相对路径的基准目录，默认为设置文件所在目录
	BaseDir string

	// Loader 自定义字典加载器，默认按设置中的文件路径加载
	Loader loader.Loader

	// Logger 日志，默认为生产环境 Logger
	Logger logger.Logger

	// TracerProvider 链路追踪，默认使用 otel 全局 Provider
	TracerProvider trace.TracerProvider

	// Debounce 文件变更合并等待时间
	Debounce time.Duration

	// OnReload 每次成功加载后回调
	OnReload func(*Snapshot)
}

// Option 配置选项函数
type Option func(*Config)

// defaultConfig 返回默认配置
func defaultConfig() *Config {
	return &Config{
		Debounce: DefaultDebounce,
	}
}

// WithConfigFile 指定设置文件
func WithConfigFile(path string) Option {
	return func(c *Config) {
		c.ConfigFile = path
	}
}

// WithConfigName 按名称在搜索路径中查找设置文件
func WithConfigName(name string, paths ...string) Option {
	return func(c *Config) {
		c.ConfigName = name
		c.ConfigPaths = paths
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.EnvPrefix = prefix
	}
}

// WithSettings 直接提供设置，不读取设置文件
// 未设置的字段取零值，AllowPlaceholderKey 需显式置为 true
func WithSettings(s *config.Settings) Option {
	return func(c *Config) {
		c.Settings = s
	}
}

// WithBaseDir 设置相对路径的基准目录
func WithBaseDir(dir string) Option {
	return func(c *Config) {
		c.BaseDir = dir
	}
}

// WithLoader 设置自定义字典加载器
func WithLoader(l loader.Loader) Option {
	return func(c *Config) {
		c.Loader = l
	}
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTracerProvider 设置链路追踪 Provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithDebounce 设置文件变更合并等待时间
func WithDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.Debounce = d
	}
}

// WithOnReload 设置加载成功回调
func WithOnReload(fn func(*Snapshot)) Option {
	return func(c *Config) {
		c.OnReload = fn
	}
}
