package config

// Option 配置选项函数
type Option func(*Config)

// WithConfigFile 指定设置文件完整路径
func WithConfigFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithConfigName 设置文件名（不含扩展名），配合 WithConfigPaths 搜索
func WithConfigName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

// WithConfigType 设置文件类型（yaml, json, toml），文件名无扩展名时需要
func WithConfigType(typ string) Option {
	return func(c *Config) {
		c.typ = typ
	}
}

// WithConfigPaths 设置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(c *Config) {
		c.paths = paths
	}
}

// WithOnChange 设置文件变更且新设置合法时回调
func WithOnChange(fn func(*Settings)) Option {
	return func(c *Config) {
		c.onChange = fn
	}
}

// WithOnError 设置文件变更后不合法时回调
func WithOnError(fn func(error)) Option {
	return func(c *Config) {
		c.onError = fn
	}
}

// WithDefaults 覆盖内置默认值，如 {"max_depth": 20}
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) {
		c.defaults = defaults
	}
}

// WithEnvPrefix 允许环境变量覆盖设置
// 如前缀 CV 时 CV_VARIATIONS_ACTIVE 覆盖 variations.active
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}
