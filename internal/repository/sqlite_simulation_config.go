package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SQLiteSimulationConfigRepository 模拟配置Repository（gorm / SQLite）
type SQLiteSimulationConfigRepository struct {
	db *gorm.DB
}

// NewSQLiteSimulationConfigRepository 创建模拟配置Repository
func NewSQLiteSimulationConfigRepository(db *gorm.DB) *SQLiteSimulationConfigRepository {
	return &SQLiteSimulationConfigRepository{db: db}
}

var _ SimulationConfigRepository = (*SQLiteSimulationConfigRepository)(nil)

func (r *SQLiteSimulationConfigRepository) Get(ctx context.Context) (*domain.SimulationConfig, error) {
	var row SimulationConfigRow
	if err := r.db.WithContext(ctx).Order("id").First(&row).Error; err != nil {
		if translateError(err) == ErrNotFound {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("failed to get simulation config: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteSimulationConfigRepository) Update(ctx context.Context, upd domain.SimulationConfigUpdate) (*domain.SimulationConfig, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return current, nil
	}

	fields := map[string]any{}
	if upd.IntervalMs != nil {
		fields["interval_ms"] = *upd.IntervalMs
	}
	if upd.IsRunning != nil {
		fields["is_running"] = *upd.IsRunning
	}

	if err := r.db.WithContext(ctx).Model(&SimulationConfigRow{ID: current.ID}).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update simulation config: %w", err)
	}
	return r.Get(ctx)
}

func (r *SQLiteSimulationConfigRepository) EnsureDefault(ctx context.Context) (*domain.SimulationConfig, error) {
	cfg, err := r.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if err != ErrConfigMissing {
		return nil, err
	}

	row := SimulationConfigRow{IntervalMs: domain.DefaultIntervalMs, IsRunning: false}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to ensure simulation config: %w", err)
	}
	return row.toDomain(), nil
}
