package repository

import (
	"context"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// BedroomsRepository 卧室Repository接口
type BedroomsRepository interface {
	// List 按创建时间倒序返回卧室及传感器计数
	List(ctx context.Context) ([]domain.BedroomWithCounts, error)
	// Get 不存在返回 ErrNotFound
	Get(ctx context.Context, id int64) (*domain.Bedroom, error)
	// GetByName 按名称精确查询
	GetByName(ctx context.Context, name string) (*domain.Bedroom, error)
	// Create 名称重复返回 ErrDuplicate
	Create(ctx context.Context, name string, description *string) (*domain.Bedroom, error)
	// Update 覆盖 name/description，名称重复返回 ErrDuplicate
	Update(ctx context.Context, id int64, name string, description *string) (*domain.Bedroom, error)
	// Delete 级联删除传感器及其读数
	Delete(ctx context.Context, id int64) error
}
