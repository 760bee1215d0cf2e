package publisher

import (
	"context"
	"errors"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// ReadingPublisher 读数发布接口（与 simulation.ReadingPublisher 一致）
type ReadingPublisher interface {
	Publish(ctx context.Context, events []domain.ReadingEvent) error
}

// Multi 依次调用所有发布器，收集全部错误
type Multi []ReadingPublisher

func (m Multi) Publish(ctx context.Context, events []domain.ReadingEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
