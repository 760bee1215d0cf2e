package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/models"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
	"github.com/prashant-rs/iot-monitoring/internal/store"
)

const (
	DefaultRecentMinutes = 10
	MaxRecentMinutes     = 1440
	// MaxExportRows 未指定传感器/卧室时导出的最大行数
	MaxExportRows = 10000
)

// SensorLogService 读数查询、统计、清理
type SensorLogService struct {
	logs   repository.SensorLogsRepository
	latest *store.LatestReadings
	logger *zap.Logger
	now    func() time.Time
}

// NewSensorLogService latest 为 nil 表示未启用 Redis 缓存
func NewSensorLogService(logs repository.SensorLogsRepository, latest *store.LatestReadings, logger *zap.Logger) *SensorLogService {
	return &SensorLogService{
		logs:   logs,
		latest: latest,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SensorLogService) Latest(ctx context.Context) ([]domain.LatestReading, error) {
	list, err := s.logs.Latest(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch latest readings", err)
	}
	return list, nil
}

func (s *SensorLogService) BySensor(ctx context.Context, sensorID int64, tr domain.TimeRange) ([]domain.SensorLog, error) {
	list, err := s.logs.ListBySensor(ctx, sensorID, tr)
	if err != nil {
		return nil, internalError("Failed to fetch sensor readings", err)
	}
	return list, nil
}

func (s *SensorLogService) ByBedroom(ctx context.Context, roomName string, tr domain.TimeRange) ([]domain.SensorLog, error) {
	list, err := s.logs.ListByBedroom(ctx, roomName, tr)
	if err != nil {
		return nil, internalError("Failed to fetch bedroom readings", err)
	}
	return list, nil
}

// Stats 没有读数时返回 nil, nil
func (s *SensorLogService) Stats(ctx context.Context, sensorID int64, tr domain.TimeRange) (*domain.SensorStats, error) {
	stats, err := s.logs.Stats(ctx, sensorID, tr)
	if err != nil {
		return nil, internalError("Failed to fetch sensor statistics", err)
	}
	return stats, nil
}

// Recent 最近 minutes 分钟（1..1440）
func (s *SensorLogService) Recent(ctx context.Context, minutes int) ([]domain.SensorLog, error) {
	if minutes <= 0 || minutes > MaxRecentMinutes {
		return nil, validationError("Minutes must be between 1 and 1440")
	}
	since := s.now().Add(-time.Duration(minutes) * time.Minute)
	list, err := s.logs.Recent(ctx, since)
	if err != nil {
		return nil, internalError("Failed to fetch recent readings", err)
	}
	return list, nil
}

// All 分页查询
func (s *SensorLogService) All(ctx context.Context, p models.Pagination) ([]domain.SensorLog, error) {
	if p.Limit <= 0 || p.Limit > models.MaxLimit {
		return nil, validationError("Limit must be between 1 and 1000")
	}
	if p.Offset < 0 {
		return nil, validationError("Offset must not be negative")
	}
	list, err := s.logs.List(ctx, p.Limit, p.Offset)
	if err != nil {
		return nil, internalError("Failed to fetch readings", err)
	}
	return list, nil
}

// Purge 删除 days 天之前的读数
func (s *SensorLogService) Purge(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, validationError("Days must be a positive integer")
	}
	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, internalError("Failed to purge readings", err)
	}
	s.logger.Info("Purged old readings", zap.Int("days", days), zap.Int64("deleted", n))
	return n, nil
}

// ExportRequest 导出条件，SensorID 优先于 Bedroom
type ExportRequest struct {
	SensorID int64
	Bedroom  string
	Range    domain.TimeRange
}

// Export 按条件取出待导出的读数
func (s *SensorLogService) Export(ctx context.Context, req ExportRequest) ([]domain.SensorLog, error) {
	var (
		list []domain.SensorLog
		err  error
	)
	switch {
	case req.SensorID > 0:
		list, err = s.logs.ListBySensor(ctx, req.SensorID, req.Range)
	case req.Bedroom != "":
		list, err = s.logs.ListByBedroom(ctx, req.Bedroom, req.Range)
	default:
		list, err = s.logs.List(ctx, MaxExportRows, 0)
	}
	if err != nil {
		return nil, internalError("Failed to export readings", err)
	}
	return list, nil
}

// Live Redis 中缓存的最新读数
func (s *SensorLogService) Live(ctx context.Context) ([]domain.ReadingEvent, error) {
	if s.latest == nil {
		return nil, &Error{Kind: KindUnavailable, Message: "Live readings cache is not enabled"}
	}
	list, err := s.latest.All(ctx)
	if err != nil && !errors.Is(err, store.ErrMiss) {
		return nil, internalError("Failed to fetch live readings", err)
	}
	return list, nil
}
