package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetentionService 定期清理超过保留天数的读数
type RetentionService struct {
	logs     *SensorLogService
	days     int
	interval time.Duration
	logger   *zap.Logger
}

// NewRetentionService days <= 0 时 Run 直接返回
func NewRetentionService(logs *SensorLogService, days int, interval time.Duration, logger *zap.Logger) *RetentionService {
	return &RetentionService{logs: logs, days: days, interval: interval, logger: logger}
}

// Run 首次立即执行，之后按 interval 轮询，直到 ctx 取消
func (s *RetentionService) Run(ctx context.Context) {
	if s.days <= 0 {
		s.logger.Info("Readings retention disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Starting readings retention",
		zap.Int("days", s.days),
		zap.Duration("interval", s.interval),
	)

	s.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

func (s *RetentionService) purge(ctx context.Context) {
	if _, err := s.logs.Purge(ctx, s.days); err != nil {
		s.logger.Error("Failed to purge old readings", zap.Error(err))
	}
}
