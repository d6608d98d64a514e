package commentvars

import "github.com/tokmz/commentvars/pkg/errors"

// 引擎错误定义
var (
	// ErrNotLoaded 尚未成功加载任何快照
	ErrNotLoaded = errors.New(6001, errors.Config, "no snapshot has been loaded")
	// ErrClosed 引擎已关闭
	ErrClosed = errors.New(6002, errors.Config, "engine is closed")
	// ErrResolveFailed 字典解析失败，原始诊断列表通过 Unwrap 获取
	ErrResolveFailed = errors.New(6003, errors.Structural, "dictionary resolution failed")
	// ErrNoSettings 未配置设置来源
	ErrNoSettings = errors.New(6004, errors.Config, "no settings source configured")
	// ErrWatchFailed 无法监听字典文件
	ErrWatchFailed = errors.New(6005, errors.Config, "failed to watch dictionary files")
)
