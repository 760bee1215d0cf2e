package repository

import (
	"context"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SensorsRepository 传感器Repository接口
// ListActive 即模拟引擎的 Sensor Registry
type SensorsRepository interface {
	// ========== 查询 ==========
	List(ctx context.Context) ([]domain.Sensor, error)
	ListByBedroom(ctx context.Context, bedroomID int64) ([]domain.Sensor, error)
	Get(ctx context.Context, id int64) (*domain.Sensor, error)
	// ExistsInBedroom 同一卧室内是否已有同名传感器（excludeID > 0 时排除自身）
	ExistsInBedroom(ctx context.Context, bedroomID int64, name string, excludeID int64) (bool, error)
	// ListActive 活跃传感器（带卧室名与上下限），按 bedroom_id, id 排序
	ListActive(ctx context.Context) ([]domain.ActiveSensor, error)

	// ========== 写入 ==========
	Create(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error)
	Update(ctx context.Context, s *domain.Sensor) (*domain.Sensor, error)
	Delete(ctx context.Context, id int64) error
	// SetActive 修改 is_active，返回更新后的传感器
	SetActive(ctx context.Context, id int64, active bool) (*domain.Sensor, error)
}
