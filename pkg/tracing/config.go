package tracing

import (
	"fmt"
	"io"
	"time"
)

// 导出器类型
const (
	ExporterStdout   = "stdout"
	ExporterOTLP     = "otlp"      // OTLP over HTTP
	ExporterOTLPGRPC = "otlp-grpc" // OTLP over gRPC
	ExporterNoop     = "noop"
)

// 采样类型
const (
	SamplerAlways      = "always"
	SamplerNever       = "never"
	SamplerRatio       = "ratio"
	SamplerParentBased = "parent_based"
)

// Config 链路追踪配置
type Config struct {
	// ServiceName 服务名称（必填）
	ServiceName string
	// ServiceVersion 服务版本
	ServiceVersion string
	// Environment 部署环境（dev/staging/prod）
	Environment string

	// Exporter 导出器类型（stdout/otlp/otlp-grpc/noop）
	Exporter string
	// Endpoint 导出器端点，为空时读取 OTEL_EXPORTER_OTLP_ENDPOINT
	Endpoint string
	// Headers 导出器请求头（用于认证）
	Headers map[string]string
	// Insecure 是否使用非 TLS 连接
	Insecure bool
	// Writer stdout 导出器的输出目标（默认 os.Stdout）
	Writer io.Writer

	// SamplingType 采样类型（always/never/ratio/parent_based）
	SamplingType string
	// SamplingRate 采样率（0.0-1.0）
	SamplingRate float64

	// Attributes 自定义资源属性
	Attributes map[string]string

	// BatchTimeout 批量导出超时，0 表示同步导出
	BatchTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "commentvars",
		Environment:  "development",
		Exporter:     ExporterStdout,
		SamplingType: SamplerParentBased,
		SamplingRate: 1.0,
		BatchTimeout: 5 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrInvalidConfig.WithMessage("service name is required")
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("sampling rate must be between 0.0 and 1.0, got %v", c.SamplingRate))
	}
	switch c.Exporter {
	case ExporterStdout, ExporterOTLP, ExporterOTLPGRPC, ExporterNoop:
	default:
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid exporter type %q", c.Exporter))
	}
	switch c.SamplingType {
	case "", SamplerAlways, SamplerNever, SamplerRatio, SamplerParentBased:
	default:
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid sampling type %q", c.SamplingType))
	}
	return nil
}
