package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SQLiteBedroomsRepository 卧室Repository（gorm / SQLite）
type SQLiteBedroomsRepository struct {
	db *gorm.DB
}

// NewSQLiteBedroomsRepository 创建卧室Repository
func NewSQLiteBedroomsRepository(db *gorm.DB) *SQLiteBedroomsRepository {
	return &SQLiteBedroomsRepository{db: db}
}

var _ BedroomsRepository = (*SQLiteBedroomsRepository)(nil)

func (r *SQLiteBedroomsRepository) List(ctx context.Context) ([]domain.BedroomWithCounts, error) {
	type countRow struct {
		BedroomRow
		SensorCount   int
		ActiveSensors int
	}

	var rows []countRow
	err := r.db.WithContext(ctx).
		Table("bedrooms b").
		Select(`b.id, b.name, b.description, b.created_at, b.updated_at,
			COUNT(s.id) AS sensor_count,
			COALESCE(SUM(CASE WHEN s.is_active THEN 1 ELSE 0 END), 0) AS active_sensors`).
		Joins("LEFT JOIN sensors s ON s.bedroom_id = b.id").
		Group("b.id").
		Order("b.created_at DESC, b.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bedrooms: %w", err)
	}

	out := make([]domain.BedroomWithCounts, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.BedroomWithCounts{
			Bedroom:       *row.BedroomRow.toDomain(),
			SensorCount:   row.SensorCount,
			ActiveSensors: row.ActiveSensors,
		})
	}
	return out, nil
}

func (r *SQLiteBedroomsRepository) Get(ctx context.Context, id int64) (*domain.Bedroom, error) {
	var row BedroomRow
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translateError(err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteBedroomsRepository) GetByName(ctx context.Context, name string) (*domain.Bedroom, error) {
	var row BedroomRow
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteBedroomsRepository) Create(ctx context.Context, name string, description *string) (*domain.Bedroom, error) {
	row := BedroomRow{Name: name, Description: description}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.toDomain(), nil
}

func (r *SQLiteBedroomsRepository) Update(ctx context.Context, id int64, name string, description *string) (*domain.Bedroom, error) {
	res := r.db.WithContext(ctx).
		Model(&BedroomRow{ID: id}).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete 依赖 PRAGMA foreign_keys 级联删除
func (r *SQLiteBedroomsRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&BedroomRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete bedroom: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
