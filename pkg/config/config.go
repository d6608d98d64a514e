// Package config 读取引擎的设置文件。
//
// 设置文件由 viper 解析（YAML/JSON/TOML 均可），解码为 Settings 并校验；
// 开启监控后，文件变更且新设置合法时回调 OnChange。
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config 设置文件读取器
type Config struct {
	viper *viper.Viper
	mu    sync.RWMutex

	// 设置文件定位：file 优先，否则按 name + paths 搜索
	file  string
	name  string
	typ   string
	paths []string

	defaults  map[string]any // 覆盖内置默认值
	envPrefix string         // 环境变量前缀，嵌套键的 . 替换为 _

	loaded   bool
	watching bool
	onChange func(*Settings)
	onError  func(error)
}

// New 创建设置文件读取器
func New(opts ...Option) *Config {
	c := &Config{
		viper: viper.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load 首次读取设置文件
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range settingsDefaults() {
		c.viper.SetDefault(k, v)
	}
	for k, v := range c.defaults {
		c.viper.SetDefault(k, v)
	}

	if c.envPrefix != "" {
		c.viper.SetEnvPrefix(c.envPrefix)
		c.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		c.viper.AutomaticEnv()
	}

	if c.file != "" {
		c.viper.SetConfigFile(c.file)
	} else {
		if c.name != "" {
			c.viper.SetConfigName(c.name)
		}
		if c.typ != "" {
			c.viper.SetConfigType(c.typ)
		}
		for _, path := range c.paths {
			c.viper.AddConfigPath(path)
		}
	}

	if err := c.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return ErrConfigNotFound.WithError(err).WithMessage(fmt.Sprintf("settings file not found: %v", err))
		}
		return ErrConfigReadFailed.WithError(err).WithMessage(fmt.Sprintf("failed to read settings: %v", err))
	}
	c.loaded = true
	return nil
}

// Reload 重新读取设置文件，必须先 Load
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return ErrConfigNotFound.WithMessage("settings must be loaded before reloading")
	}
	if err := c.viper.ReadInConfig(); err != nil {
		return ErrConfigReadFailed.WithError(err).WithMessage(fmt.Sprintf("failed to reload settings: %v", err))
	}
	return nil
}

// Settings 解码并校验当前设置
func (c *Config) Settings() (*Settings, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := &Settings{}
	if err := c.viper.Unmarshal(s); err != nil {
		return nil, ErrInvalidSettings.WithError(err).WithMessage(fmt.Sprintf("failed to decode settings: %v", err))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ConfigFileUsed 实际读取的设置文件路径，未读取时为空
func (c *Config) ConfigFileUsed() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viper.ConfigFileUsed()
}

// Close 停止监控
func (c *Config) Close() {
	c.StopWatch()
}
