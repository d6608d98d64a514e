package config

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// StartWatch 开始监控设置文件，必须先 Load；已在监控时无操作
func (c *Config) StartWatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watching {
		return nil
	}
	if !c.loaded {
		return ErrConfigNotFound.WithMessage("settings must be loaded before watching")
	}

	c.viper.OnConfigChange(c.changed)
	c.viper.WatchConfig()
	c.watching = true
	return nil
}

// StopWatch 停止回调
// viper 无法关闭底层的 fsnotify watcher，之后的事件会被忽略
func (c *Config) StopWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watching = false
}

// IsWatching 是否正在监控
func (c *Config) IsWatching() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.watching
}

// changed viper 已重新读取文件，校验通过才回调 onChange
func (c *Config) changed(_ fsnotify.Event) {
	c.mu.RLock()
	watching, onChange := c.watching, c.onChange
	c.mu.RUnlock()
	if !watching {
		return
	}

	s, err := c.Settings()
	if err != nil {
		c.reportError(err)
		return
	}
	if onChange != nil {
		onChange(s)
	}
}

// reportError 优先交给 onError，否则输出到 stderr
func (c *Config) reportError(err error) {
	c.mu.RLock()
	onError := c.onError
	c.mu.RUnlock()

	if onError != nil {
		onError(err)
		return
	}
	fmt.Fprintf(os.Stderr, "[commentvars/config] %v\n", err)
}
