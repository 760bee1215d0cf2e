package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
)

// BedroomService 卧室服务
type BedroomService struct {
	bedrooms repository.BedroomsRepository
	logger   *zap.Logger
}

// NewBedroomService 创建卧室服务
func NewBedroomService(bedrooms repository.BedroomsRepository, logger *zap.Logger) *BedroomService {
	return &BedroomService{bedrooms: bedrooms, logger: logger}
}

// BedroomRequest 创建/更新卧室请求
type BedroomRequest struct {
	Name        string
	Description *string
}

func (s *BedroomService) List(ctx context.Context) ([]domain.BedroomWithCounts, error) {
	list, err := s.bedrooms.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch bedrooms", err)
	}
	return list, nil
}

func (s *BedroomService) Get(ctx context.Context, id int64) (*domain.Bedroom, error) {
	b, err := s.bedrooms.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Bedroom not found")
		}
		return nil, internalError("Failed to fetch bedroom", err)
	}
	return b, nil
}

func (s *BedroomService) Create(ctx context.Context, req BedroomRequest) (*domain.Bedroom, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("Bedroom name is required")
	}

	b, err := s.bedrooms.Create(ctx, name, normalizeDescription(req.Description))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("Bedroom with this name already exists")
		}
		return nil, internalError("Failed to create bedroom", err)
	}

	s.logger.Info("Bedroom created", zap.Int64("bedroom_id", b.ID), zap.String("name", b.Name))
	return b, nil
}

// Update 先判断是否存在，再校验名称
func (s *BedroomService) Update(ctx context.Context, id int64, req BedroomRequest) (*domain.Bedroom, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("Bedroom name is required")
	}

	b, err := s.bedrooms.Update(ctx, id, name, normalizeDescription(req.Description))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflictError("Bedroom with this name already exists")
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFoundError("Bedroom not found")
		}
		return nil, internalError("Failed to update bedroom", err)
	}
	return b, nil
}

// Delete 级联删除该卧室的传感器与读数
func (s *BedroomService) Delete(ctx context.Context, id int64) error {
	if err := s.bedrooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Bedroom not found")
		}
		return internalError("Failed to delete bedroom", err)
	}

	s.logger.Info("Bedroom deleted", zap.Int64("bedroom_id", id))
	return nil
}

// 空描述存为 NULL
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	d := strings.TrimSpace(*desc)
	if d == "" {
		return nil
	}
	return &d
}
