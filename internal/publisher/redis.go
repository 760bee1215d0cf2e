package publisher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	rediscommon "github.com/prashant-rs/iot-monitoring/common/redis"
	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/store"
)

// RedisPublisher 写 Redis Stream（XADD），同时刷新最新读数缓存
type RedisPublisher struct {
	client *rediscommon.Client
	stream string
	maxLen int64
	latest *store.LatestReadings
	logger *zap.Logger
}

// NewRedisPublisher latest 为 nil 时只写 stream
func NewRedisPublisher(client *rediscommon.Client, stream string, maxLen int64, latest *store.LatestReadings, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		latest: latest,
		logger: logger,
	}
}

var _ ReadingPublisher = (*RedisPublisher)(nil)

func (p *RedisPublisher) Publish(ctx context.Context, events []domain.ReadingEvent) error {
	for _, ev := range events {
		if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, p.maxLen, ev); err != nil {
			return fmt.Errorf("failed to publish reading to stream %s: %w", p.stream, err)
		}
		if p.latest != nil {
			if err := p.latest.Put(ctx, ev); err != nil {
				return fmt.Errorf("failed to cache latest reading: %w", err)
			}
		}
	}

	p.logger.Debug("Published readings to stream", zap.String("stream", p.stream), zap.Int("count", len(events)))
	return nil
}
