package repository

import (
	"context"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SimulationConfigRepository 模拟配置（Config Store）
type SimulationConfigRepository interface {
	// Get 行不存在返回 ErrConfigMissing
	Get(ctx context.Context) (*domain.SimulationConfig, error)
	// Update 只更新非 nil 字段并刷新 updated_at；无字段时等同 Get
	Update(ctx context.Context, upd domain.SimulationConfigUpdate) (*domain.SimulationConfig, error)
	// EnsureDefault 行不存在时插入默认值（60000ms，未运行）
	EnsureDefault(ctx context.Context) (*domain.SimulationConfig, error)
}
