package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newCore 按配置组装 encoder、输出、采样与 Hook
func newCore(config *Config) (zapcore.Core, zap.AtomicLevel, error) {
	config.setDefaults()
	level := zap.NewAtomicLevelAt(config.Level.toZapLevel())
	if !config.Format.IsValid() {
		return nil, level, fmt.Errorf("invalid log format %q", config.Format)
	}

	sinks, err := openSinks(config)
	if err != nil {
		return nil, level, err
	}

	var core zapcore.Core = zapcore.NewCore(newEncoder(config), zapcore.NewMultiWriteSyncer(sinks...), level)
	if s := config.Sampling; s != nil {
		s.setDefaults()
		core = zapcore.NewSamplerWithOptions(core, s.Tick, s.Initial, s.Thereafter)
	}
	if len(config.Hooks) > 0 {
		core = &hookCore{Core: core, hooks: config.Hooks}
	}
	return core, level, nil
}

func newEncoder(config *Config) zapcore.Encoder {
	var ec zapcore.EncoderConfig
	if config.EncoderConfig != nil {
		ec = *config.EncoderConfig
	} else {
		ec = zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeDuration = zapcore.StringDurationEncoder
	}
	if config.Format == ConsoleFormat {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// openSinks 控制台、io.Writer、文件与轮转文件可同时启用
func openSinks(config *Config) ([]zapcore.WriteSyncer, error) {
	var sinks []zapcore.WriteSyncer
	if config.Console {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}
	if config.Writer != nil {
		sinks = append(sinks, zapcore.AddSync(config.Writer))
	}
	if config.File != "" {
		ws, _, err := zap.Open(config.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.File, err)
		}
		sinks = append(sinks, ws)
	}
	if r := config.Rotate; r != nil {
		r.setDefaults()
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   r.Filename,
			MaxSize:    r.MaxSize,
			MaxAge:     r.MaxAge,
			MaxBackups: r.MaxBackups,
			LocalTime:  r.LocalTime,
			Compress:   r.Compress,
		}))
	}
	return sinks, nil
}

// hookCore 写入前依次调用 Hook，任一 Hook 返回错误时丢弃该条日志
type hookCore struct {
	zapcore.Core
	hooks []Hook
}

func (c *hookCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range c.hooks {
		if err := hook.OnWrite(entry, fields); err != nil {
			return err
		}
	}
	return c.Core.Write(entry, fields)
}

func (c *hookCore) With(fields []zapcore.Field) zapcore.Core {
	return &hookCore{Core: c.Core.With(fields), hooks: c.hooks}
}

func (c *hookCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}
