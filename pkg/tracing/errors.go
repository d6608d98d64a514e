package tracing

import "github.com/tokmz/commentvars/pkg/errors"

// 链路追踪错误定义
var (
	// ErrInvalidConfig 追踪配置非法
	ErrInvalidConfig = errors.New(7001, errors.Config, "invalid tracing config")
	// ErrExporter 导出器创建失败
	ErrExporter = errors.New(7002, errors.Config, "failed to create span exporter")
)
