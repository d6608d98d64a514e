package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tokmz/commentvars/pkg/errors"
)

// Variant 变体名称字段
func Variant(name string) zap.Field {
	return zap.String("variant", name)
}

// Key 扁平化键字段
func Key(key string) zap.Field {
	return zap.String("key", key)
}

// Stage 流水线阶段字段
func Stage(stage fmt.Stringer) zap.Field {
	return zap.Stringer("stage", stage)
}

// Revision 快照版本字段
func Revision(rev string) zap.Field {
	return zap.String("revision", rev)
}

// Issue 诊断字段，展开为 code/kind/severity 等属性
func Issue(e *errors.Error) zap.Field {
	if e == nil {
		return zap.Skip()
	}
	return zap.Object("issue", issue{e})
}

type issue struct {
	e *errors.Error
}

func (i issue) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("code", i.e.Code)
	enc.AddString("kind", string(i.e.Kind))
	enc.AddString("severity", string(i.e.Severity))
	enc.AddString("message", i.e.Message)
	if i.e.Key != "" {
		enc.AddString("key", i.e.Key)
	}
	if i.e.Source != "" {
		enc.AddString("source", i.e.Source)
	}
	if i.e.Err != nil {
		enc.AddString("cause", i.e.Err.Error())
	}
	return nil
}
