package domain

import "time"

const (
	// DefaultIntervalMs 默认模拟间隔（60s）
	DefaultIntervalMs = 60000
	MinIntervalMs     = 1000
	MaxIntervalMs     = 3600000
)

// SimulationConfig 模拟配置（simulation_config 表，单行）
type SimulationConfig struct {
	ID         int64     `db:"id" json:"id"`
	IntervalMs int       `db:"interval_ms" json:"interval_ms"`
	IsRunning  bool      `db:"is_running" json:"is_running"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SimulationConfigUpdate 部分更新，nil 字段不修改
type SimulationConfigUpdate struct {
	IntervalMs *int
	IsRunning  *bool
}

// Empty 没有任何待更新字段
func (u SimulationConfigUpdate) Empty() bool {
	return u.IntervalMs == nil && u.IsRunning == nil
}

// IntervalInRange 间隔是否在 [MinIntervalMs, MaxIntervalMs] 内
func IntervalInRange(ms int) bool {
	return ms >= MinIntervalMs && ms <= MaxIntervalMs
}
