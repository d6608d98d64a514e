package config

import "github.com/tokmz/commentvars/pkg/errors"

// 配置包专用错误定义
var (
	// ErrConfigNotFound 配置文件未找到
	ErrConfigNotFound = errors.New(3001, errors.Config, "settings file not found")
	// ErrConfigReadFailed 配置读取失败
	ErrConfigReadFailed = errors.New(3003, errors.Config, "failed to read settings")
	// ErrInvalidSettings 设置取值非法
	ErrInvalidSettings = errors.New(3004, errors.Config, "invalid settings")
)
