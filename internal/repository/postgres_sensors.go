package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// PostgresSensorsRepository 传感器Repository实现
type PostgresSensorsRepository struct {
	db *sql.DB
}

// NewPostgresSensorsRepository 创建传感器Repository
func NewPostgresSensorsRepository(db *sql.DB) *PostgresSensorsRepository {
	return &PostgresSensorsRepository{db: db}
}

var _ SensorsRepository = (*PostgresSensorsRepository)(nil)

const sensorColumns = `
	s.id, s.bedroom_id, b.name AS bedroom_name, s.name, s.type, s.unit,
	s.min_value, s.max_value, s.is_active, s.created_at, s.updated_at
`

func (r *PostgresSensorsRepository) List(ctx context.Context) ([]domain.Sensor, error) {
	query := `SELECT ` + sensorColumns + `
		FROM sensors s
		JOIN bedrooms b ON s.bedroom_id = b.id
		ORDER BY s.created_at DESC, s.id DESC
	`
	return r.query(ctx, query)
}

func (r *PostgresSensorsRepository) ListByBedroom(ctx context.Context, bedroomID int64) ([]domain.Sensor, error) {
	query := `SELECT ` + sensorColumns + `
		FROM sensors s
		JOIN bedrooms b ON s.bedroom_id = b.id
		WHERE s.bedroom_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`
	return r.query(ctx, query, bedroomID)
}

func (r *PostgresSensorsRepository) Get(ctx context.Context, id int64) (*domain.Sensor, error) {
	query := `SELECT ` + sensorColumns + `
		FROM sensors s
		JOIN bedrooms b ON s.bedroom_id = b.id
		WHERE s.id = $1
	`
	var s domain.Sensor
	if err := scanSensor(r.db.QueryRowContext(ctx, query, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	return &s, nil
}

func (r *PostgresSensorsRepository) ExistsInBedroom(ctx context.Context, bedroomID int64, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM sensors WHERE bedroom_id = $1 AND name = $2 AND id <> $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, bedroomID, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sensor name: %w", err)
	}
	return exists, nil
}

// ListActive 模拟引擎读取的活跃传感器列表
func (r *PostgresSensorsRepository) ListActive(ctx context.Context) ([]domain.ActiveSensor, error) {
	query := `
		SELECT s.id, s.bedroom_id, b.name AS bedroom_name, s.name, s.type, s.unit, s.min_value, s.max_value
		FROM sensors s
		JOIN bedrooms b ON s.bedroom_id = b.id
		WHERE s.is_active = TRUE
		ORDER BY s.bedroom_id, s.id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sensors: %w", err)
	}
	defer rows.Close()

	out := []domain.ActiveSensor{}
	for rows.Next() {
		var s domain.ActiveSensor
		if err := rows.Scan(&s.ID, &s.BedroomID, &s.BedroomName, &s.Name, &s.Type, &s.Unit, &s.MinValue, &s.MaxValue); err != nil {
			return nil, fmt.Errorf("failed to scan active sensor: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active sensors: %w", err)
	}
	return out, nil
}

func (r *PostgresSensorsRepository) Create(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	query := `
		INSERT INTO sensors (bedroom_id, name, type, unit, min_value, max_value, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		s.BedroomID, s.Name, string(s.Type), s.Unit, s.MinValue, s.MaxValue, s.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, translateError(err)
	}
	return r.Get(ctx, id)
}

func (r *PostgresSensorsRepository) Update(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	query := `
		UPDATE sensors
		SET bedroom_id = $2, name = $3, type = $4, unit = $5,
			min_value = $6, max_value = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.BedroomID, s.Name, string(s.Type), s.Unit, s.MinValue, s.MaxValue, s.IsActive,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, s.ID)
}

func (r *PostgresSensorsRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sensors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sensor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSensorsRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Sensor, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sensors SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to update sensor status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PostgresSensorsRepository) query(ctx context.Context, query string, args ...any) ([]domain.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	out := []domain.Sensor{}
	for rows.Next() {
		var s domain.Sensor
		if err := scanSensor(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSensor(row rowScanner, s *domain.Sensor) error {
	var typ string
	err := row.Scan(
		&s.ID, &s.BedroomID, &s.BedroomName, &s.Name, &typ, &s.Unit,
		&s.MinValue, &s.MaxValue, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.Type = domain.SensorType(typ)
	return nil
}
