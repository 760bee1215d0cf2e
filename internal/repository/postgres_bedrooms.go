package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// PostgresBedroomsRepository 卧室Repository实现
type PostgresBedroomsRepository struct {
	db *sql.DB
}

// NewPostgresBedroomsRepository 创建卧室Repository
func NewPostgresBedroomsRepository(db *sql.DB) *PostgresBedroomsRepository {
	return &PostgresBedroomsRepository{db: db}
}

// 确保实现了接口
var _ BedroomsRepository = (*PostgresBedroomsRepository)(nil)

// List 卧室列表（带 sensor_count / active_sensors）
func (r *PostgresBedroomsRepository) List(ctx context.Context) ([]domain.BedroomWithCounts, error) {
	query := `
		SELECT
			b.id, b.name, b.description, b.created_at, b.updated_at,
			COUNT(s.id) AS sensor_count,
			COUNT(s.id) FILTER (WHERE s.is_active) AS active_sensors
		FROM bedrooms b
		LEFT JOIN sensors s ON s.bedroom_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bedrooms: %w", err)
	}
	defer rows.Close()

	out := []domain.BedroomWithCounts{}
	for rows.Next() {
		var b domain.BedroomWithCounts
		var desc sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &desc, &b.CreatedAt, &b.UpdatedAt, &b.SensorCount, &b.ActiveSensors); err != nil {
			return nil, fmt.Errorf("failed to scan bedroom: %w", err)
		}
		b.Description = nullStringPtr(desc)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bedrooms: %w", err)
	}
	return out, nil
}

// Get 根据 id 查询
func (r *PostgresBedroomsRepository) Get(ctx context.Context, id int64) (*domain.Bedroom, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM bedrooms WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName 根据名称查询
func (r *PostgresBedroomsRepository) GetByName(ctx context.Context, name string) (*domain.Bedroom, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM bedrooms WHERE name = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// Create 创建卧室
func (r *PostgresBedroomsRepository) Create(ctx context.Context, name string, description *string) (*domain.Bedroom, error) {
	query := `
		INSERT INTO bedrooms (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at
	`
	b, err := r.scanOne(r.db.QueryRowContext(ctx, query, name, description))
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

// Update 更新卧室
func (r *PostgresBedroomsRepository) Update(ctx context.Context, id int64, name string, description *string) (*domain.Bedroom, error) {
	query := `
		UPDATE bedrooms
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at
	`
	b, err := r.scanOne(r.db.QueryRowContext(ctx, query, id, name, description))
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

// Delete 删除卧室（ON DELETE CASCADE 清理传感器与读数）
func (r *PostgresBedroomsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bedrooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bedroom: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bedroom: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresBedroomsRepository) scanOne(row *sql.Row) (*domain.Bedroom, error) {
	var b domain.Bedroom
	var desc sql.NullString
	err := row.Scan(&b.ID, &b.Name, &desc, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.Description = nullStringPtr(desc)
	return &b, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
