package loader

import "github.com/tokmz/commentvars/pkg/errors"

// 加载错误定义
var (
	// ErrReadFile 读取字典文件失败
	ErrReadFile = errors.New(5001, errors.Config, "failed to read dictionary file")
	// ErrParse 字典文件解析失败
	ErrParse = errors.New(5002, errors.Structural, "failed to parse dictionary file")
	// ErrNotMapping 字典文件顶层不是映射
	ErrNotMapping = errors.New(5003, errors.Structural, "dictionary root is not a mapping")
	// ErrFileNotFound 字典文件不存在
	ErrFileNotFound = errors.New(5004, errors.Config, "dictionary file not found")
	// ErrInvalidPattern 文件名模式缺少 {variant} 占位符
	ErrInvalidPattern = errors.New(5005, errors.Config, "invalid file pattern")
)
