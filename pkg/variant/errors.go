package variant

import "github.com/tokmz/commentvars/pkg/errors"

// 变体一致性错误
var (
	// ErrKeyMismatch 变体键集合与参考变体不一致（允许不完整时降级为 warning）
	ErrKeyMismatch = errors.New(4301, errors.VariantConsistency, "variant key mismatch")
	// ErrReferenceIdentity 参考数据不是变体表中的同一个对象
	ErrReferenceIdentity = errors.New(4302, errors.VariantConsistency, "reference identity mismatch")
)

// 配置错误
var (
	// ErrNoVariants 未提供任何变体
	ErrNoVariants = errors.New(4402, errors.Config, "no variants")
	// ErrUnknownVariant 参考变体或激活变体不存在
	ErrUnknownVariant = errors.New(4403, errors.Config, "unknown variant")
	// ErrDuplicateVariant 变体名称重复（大小写不敏感）
	ErrDuplicateVariant = errors.New(4404, errors.Config, "duplicate variant")
	// ErrInvalidVariantTag 变体名称不是合法的 BCP 47 语言标签（warning）
	ErrInvalidVariantTag = errors.New(4405, errors.Config, "invalid variant tag").AsWarning()
)
