package resolver

import "github.com/tokmz/commentvars/pkg/errors"

// 结构错误
var (
	// ErrInvalidValueType 值既不是字符串也不是字典
	ErrInvalidValueType = errors.New(4001, errors.Structural, "invalid value type")
	// ErrInvalidKey 原始键包含非法字符
	ErrInvalidKey = errors.New(4002, errors.Structural, "invalid key")
	// ErrEmptyKey 原始键为空
	ErrEmptyKey = errors.New(4003, errors.Structural, "empty key")
	// ErrEmptyValue 值为空字符串
	ErrEmptyValue = errors.New(4004, errors.Structural, "empty value")
	// ErrMalformedFlattenedKey 扁平化键不符合字符集
	ErrMalformedFlattenedKey = errors.New(4005, errors.Structural, "malformed flattened key")
	// ErrReservedKey 原始键为保留字
	ErrReservedKey = errors.New(4006, errors.Structural, "reserved key")
	// ErrCommentDelimiter 键或值包含注释定界符
	ErrCommentDelimiter = errors.New(4007, errors.Structural, "comment delimiter")
	// ErrDepthExceeded 嵌套深度超过上限或出现自引用节点
	ErrDepthExceeded = errors.New(4008, errors.Structural, "depth exceeded")
	// ErrNilDictionary 未提供字典
	ErrNilDictionary = errors.New(4009, errors.Structural, "nil dictionary")
)

// 唯一性错误
var (
	// ErrDuplicateNormalizedKey 两条路径规范化后得到同一个键
	ErrDuplicateNormalizedKey = errors.New(4101, errors.Uniqueness, "duplicate normalized key")
	// ErrDuplicateRawKey 同一节点内原始键重复
	ErrDuplicateRawKey = errors.New(4102, errors.Uniqueness, "duplicate raw key")
	// ErrDuplicateValue 两个不同的键共享同一个值
	ErrDuplicateValue = errors.New(4103, errors.Uniqueness, "duplicate value")
	// ErrKeyValueCollision 某个值同时是某个键
	ErrKeyValueCollision = errors.New(4104, errors.Uniqueness, "key value collision")
)

// 引用错误
var (
	// ErrChainedAlias 别名指向另一个别名
	ErrChainedAlias = errors.New(4201, errors.Reference, "chained alias")
	// ErrSelfAlias 别名指向自身
	ErrSelfAlias = errors.New(4202, errors.Reference, "self alias")
	// ErrNestedComposition 组合条目引用了另一个组合条目
	ErrNestedComposition = errors.New(4203, errors.Reference, "nested composition")
	// ErrCompositionSelfReference 组合条目直接或经别名引用自身
	ErrCompositionSelfReference = errors.New(4204, errors.Reference, "composition self reference")
	// ErrUnknownReference 引用了不存在的键
	ErrUnknownReference = errors.New(4205, errors.Reference, "unknown reference")
	// ErrMalformedComposition 组合条目片段不足两个或混有普通文本
	ErrMalformedComposition = errors.New(4206, errors.Reference, "malformed composition")
	// ErrInvalidCompositionOnlyKey 仅组合键不是普通条目
	ErrInvalidCompositionOnlyKey = errors.New(4207, errors.Reference, "invalid composition-only key")
	// ErrUnusedCompositionOnlyKey 仅组合键不存在或未被任何组合条目使用（warning）
	ErrUnusedCompositionOnlyKey = errors.New(4208, errors.Reference, "unused composition-only key").AsWarning()
)

// 配置错误
var (
	// ErrInvalidConfig 选项取值非法
	ErrInvalidConfig = errors.New(4401, errors.Config, "invalid resolver config")
)
