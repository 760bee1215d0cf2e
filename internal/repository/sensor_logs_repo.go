package repository

import (
	"context"
	"time"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SensorLogsRepository 读数Repository接口
// BulkCreate 即模拟引擎的 Reading Sink
type SensorLogsRepository interface {
	// BulkCreate 单条语句批量写入，timestamp 为写入时间；返回写入行数
	BulkCreate(ctx context.Context, readings []domain.NewReading) (int64, error)

	// Latest 每个传感器最新一条读数，按卧室名、传感器名排序
	Latest(ctx context.Context) ([]domain.LatestReading, error)
	// ListBySensor / ListByBedroom 按 timestamp 倒序
	ListBySensor(ctx context.Context, sensorID int64, tr domain.TimeRange) ([]domain.SensorLog, error)
	ListByBedroom(ctx context.Context, roomName string, tr domain.TimeRange) ([]domain.SensorLog, error)
	// Stats 没有读数时返回 nil, nil
	Stats(ctx context.Context, sensorID int64, tr domain.TimeRange) (*domain.SensorStats, error)
	// Recent 最近 since 之后的读数
	Recent(ctx context.Context, since time.Time) ([]domain.SensorLog, error)
	List(ctx context.Context, limit, offset int) ([]domain.SensorLog, error)

	// DeleteOlderThan 删除 cutoff 之前的读数，返回删除行数
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
