package logger

import "time"

// SamplingConfig 采样配置
// 监听文件时编辑器可能在短时间内触发大量重新加载，采样限制重复的诊断输出
type SamplingConfig struct {
	Tick       time.Duration // 采样周期（默认 1 秒）
	Initial    int           // 每个周期内前 N 条相同日志必定记录
	Thereafter int           // 之后每 M 条记录 1 条
}

// setDefaults 设置默认值
func (s *SamplingConfig) setDefaults() {
	if s.Tick <= 0 {
		s.Tick = time.Second
	}
	if s.Initial == 0 {
		s.Initial = 100
	}
	if s.Thereafter == 0 {
		s.Thereafter = 100
	}
}
