package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// PostgresSimulationConfigRepository 模拟配置Repository实现
// 表内只有一行，统一取 id 最小的一行
type PostgresSimulationConfigRepository struct {
	db *sql.DB
}

// NewPostgresSimulationConfigRepository 创建模拟配置Repository
func NewPostgresSimulationConfigRepository(db *sql.DB) *PostgresSimulationConfigRepository {
	return &PostgresSimulationConfigRepository{db: db}
}

var _ SimulationConfigRepository = (*PostgresSimulationConfigRepository)(nil)

func (r *PostgresSimulationConfigRepository) Get(ctx context.Context) (*domain.SimulationConfig, error) {
	query := `
		SELECT id, interval_ms, is_running, updated_at
		FROM simulation_config
		ORDER BY id
		LIMIT 1
	`
	var c domain.SimulationConfig
	err := r.db.QueryRowContext(ctx, query).Scan(&c.ID, &c.IntervalMs, &c.IsRunning, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("failed to get simulation config: %w", err)
	}
	return &c, nil
}

func (r *PostgresSimulationConfigRepository) Update(ctx context.Context, upd domain.SimulationConfigUpdate) (*domain.SimulationConfig, error) {
	if upd.Empty() {
		return r.Get(ctx)
	}

	sets := []string{}
	args := []any{}
	argIdx := 1
	if upd.IntervalMs != nil {
		sets = append(sets, fmt.Sprintf("interval_ms = $%d", argIdx))
		args = append(args, *upd.IntervalMs)
		argIdx++
	}
	if upd.IsRunning != nil {
		sets = append(sets, fmt.Sprintf("is_running = $%d", argIdx))
		args = append(args, *upd.IsRunning)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `
		UPDATE simulation_config
		SET ` + strings.Join(sets, ", ") + `
		WHERE id = (SELECT MIN(id) FROM simulation_config)
		RETURNING id, interval_ms, is_running, updated_at
	`
	var c domain.SimulationConfig
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.IntervalMs, &c.IsRunning, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("failed to update simulation config: %w", err)
	}
	return &c, nil
}

func (r *PostgresSimulationConfigRepository) EnsureDefault(ctx context.Context) (*domain.SimulationConfig, error) {
	query := `
		INSERT INTO simulation_config (interval_ms, is_running)
		SELECT $1, FALSE
		WHERE NOT EXISTS (SELECT 1 FROM simulation_config)
	`
	if _, err := r.db.ExecContext(ctx, query, domain.DefaultIntervalMs); err != nil {
		return nil, fmt.Errorf("failed to ensure simulation config: %w", err)
	}
	return r.Get(ctx)
}
