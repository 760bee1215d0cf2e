package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SQLiteSensorsRepository 传感器Repository（gorm / SQLite）
type SQLiteSensorsRepository struct {
	db *gorm.DB
}

// NewSQLiteSensorsRepository 创建传感器Repository
func NewSQLiteSensorsRepository(db *gorm.DB) *SQLiteSensorsRepository {
	return &SQLiteSensorsRepository{db: db}
}

var _ SensorsRepository = (*SQLiteSensorsRepository)(nil)

func (r *SQLiteSensorsRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sensors s").
		Select("s.*, b.name AS bedroom_name").
		Joins("JOIN bedrooms b ON s.bedroom_id = b.id")
}

func (r *SQLiteSensorsRepository) List(ctx context.Context) ([]domain.Sensor, error) {
	var rows []sensorJoinRow
	if err := r.joined(ctx).Order("s.created_at DESC, s.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	return toSensors(rows), nil
}

func (r *SQLiteSensorsRepository) ListByBedroom(ctx context.Context, bedroomID int64) ([]domain.Sensor, error) {
	var rows []sensorJoinRow
	err := r.joined(ctx).
		Where("s.bedroom_id = ?", bedroomID).
		Order("s.created_at DESC, s.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	return toSensors(rows), nil
}

func (r *SQLiteSensorsRepository) Get(ctx context.Context, id int64) (*domain.Sensor, error) {
	var rows []sensorJoinRow
	if err := r.joined(ctx).Where("s.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	s := rows[0].toDomain()
	return &s, nil
}

func (r *SQLiteSensorsRepository) ExistsInBedroom(ctx context.Context, bedroomID int64, name string, excludeID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&SensorRow{}).
		Where("bedroom_id = ? AND name = ? AND id <> ?", bedroomID, name, excludeID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sensor name: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteSensorsRepository) ListActive(ctx context.Context) ([]domain.ActiveSensor, error) {
	var rows []sensorJoinRow
	err := r.joined(ctx).
		Where("s.is_active = ?", true).
		Order("s.bedroom_id, s.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sensors: %w", err)
	}

	out := make([]domain.ActiveSensor, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ActiveSensor{
			ID:          row.ID,
			BedroomID:   row.BedroomID,
			BedroomName: row.BedroomName,
			Name:        row.Name,
			Type:        row.Type,
			Unit:        row.Unit,
			MinValue:    row.MinValue,
			MaxValue:    row.MaxValue,
		})
	}
	return out, nil
}

func (r *SQLiteSensorsRepository) Create(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	row := SensorRow{
		BedroomID: s.BedroomID,
		Name:      s.Name,
		Type:      string(s.Type),
		Unit:      s.Unit,
		MinValue:  s.MinValue,
		MaxValue:  s.MaxValue,
		IsActive:  s.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return r.Get(ctx, row.ID)
}

func (r *SQLiteSensorsRepository) Update(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error) {
	res := r.db.WithContext(ctx).
		Model(&SensorRow{ID: s.ID}).
		Updates(map[string]any{
			"bedroom_id": s.BedroomID,
			"name":       s.Name,
			"type":       string(s.Type),
			"unit":       s.Unit,
			"min_value":  s.MinValue,
			"max_value":  s.MaxValue,
			"is_active":  s.IsActive,
		})
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, s.ID)
}

func (r *SQLiteSensorsRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&SensorRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete sensor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteSensorsRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Sensor, error) {
	res := r.db.WithContext(ctx).Model(&SensorRow{ID: id}).Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update sensor status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func toSensors(rows []sensorJoinRow) []domain.Sensor {
	out := make([]domain.Sensor, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
