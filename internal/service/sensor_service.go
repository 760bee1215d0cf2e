package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
)

const (
	msgSensorNotFound    = "Sensor not found"
	msgBedroomNotFound   = "Bedroom not found"
	msgMissingFields     = "Missing required fields: bedroom_id, name, type, unit, min_value, max_value"
	msgInvalidSensorType = `Invalid sensor type. Must be "temperature" or "humidity"`
	msgInvalidNumbers    = "min_value and max_value must be valid numbers"
	msgMinNotLessThanMax = "min_value must be less than max_value"
	msgDuplicateSensor   = "Sensor with this name already exists in this bedroom"
)

// SensorService 传感器服务
type SensorService struct {
	sensors  repository.SensorsRepository
	bedrooms repository.BedroomsRepository
	logger   *zap.Logger
}

// NewSensorService 创建传感器服务
func NewSensorService(sensors repository.SensorsRepository, bedrooms repository.BedroomsRepository, logger *zap.Logger) *SensorService {
	return &SensorService{sensors: sensors, bedrooms: bedrooms, logger: logger}
}

// SensorRequest 创建/更新传感器请求
// MinValue / MaxValue 接受 JSON 数字或数字字符串，nil 表示缺失
type SensorRequest struct {
	BedroomID int64
	Name      string
	Type      string
	Unit      string
	MinValue  any
	MaxValue  any
	IsActive  *bool
}

func (s *SensorService) List(ctx context.Context) ([]domain.Sensor, error) {
	list, err := s.sensors.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch sensors", err)
	}
	return list, nil
}

// ListByBedroom 卧室不存在返回 404
func (s *SensorService) ListByBedroom(ctx context.Context, bedroomID int64) ([]domain.Sensor, error) {
	if err := s.requireBedroom(ctx, bedroomID); err != nil {
		return nil, err
	}
	list, err := s.sensors.ListByBedroom(ctx, bedroomID)
	if err != nil {
		return nil, internalError("Failed to fetch sensors", err)
	}
	return list, nil
}

func (s *SensorService) Get(ctx context.Context, id int64) (*domain.Sensor, error) {
	sensor, err := s.sensors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgSensorNotFound)
		}
		return nil, internalError("Failed to fetch sensor", err)
	}
	return sensor, nil
}

// Create 校验顺序：必填 → 卧室存在 → 类型 → 数值 → min < max → 重名
func (s *SensorService) Create(ctx context.Context, req SensorRequest) (*domain.Sensor, error) {
	sensor, err := s.validate(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	sensor.IsActive = true
	if req.IsActive != nil {
		sensor.IsActive = *req.IsActive
	}

	created, err := s.sensors.Create(ctx, sensor)
	if err != nil {
		return nil, s.writeError("Failed to create sensor", err)
	}

	s.logger.Info("Sensor created",
		zap.Int64("sensor_id", created.ID),
		zap.Int64("bedroom_id", created.BedroomID),
		zap.String("name", created.Name),
	)
	return created, nil
}

// Update 传感器不存在时优先返回 404，其余校验同 Create
func (s *SensorService) Update(ctx context.Context, id int64, req SensorRequest) (*domain.Sensor, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sensor, err := s.validate(ctx, req, id)
	if err != nil {
		return nil, err
	}
	sensor.ID = id
	sensor.IsActive = existing.IsActive
	if req.IsActive != nil {
		sensor.IsActive = *req.IsActive
	}

	updated, err := s.sensors.Update(ctx, sensor)
	if err != nil {
		return nil, s.writeError("Failed to update sensor", err)
	}
	return updated, nil
}

func (s *SensorService) Delete(ctx context.Context, id int64) error {
	if err := s.sensors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgSensorNotFound)
		}
		return internalError("Failed to delete sensor", err)
	}
	s.logger.Info("Sensor deleted", zap.Int64("sensor_id", id))
	return nil
}

// ToggleActive 翻转 is_active，返回更新后的传感器与提示语
func (s *SensorService) ToggleActive(ctx context.Context, id int64) (*domain.Sensor, string, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	sensor, err := s.sensors.SetActive(ctx, id, !existing.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", notFoundError(msgSensorNotFound)
		}
		return nil, "", internalError("Failed to toggle sensor status", err)
	}

	msg := "Sensor deactivated successfully"
	if sensor.IsActive {
		msg = "Sensor activated successfully"
	}
	return sensor, msg, nil
}

func (s *SensorService) validate(ctx context.Context, req SensorRequest, selfID int64) (*domain.Sensor, error) {
	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.Unit)
	if req.BedroomID <= 0 || name == "" || req.Type == "" || unit == "" || req.MinValue == nil || req.MaxValue == nil {
		return nil, validationError(msgMissingFields)
	}

	if err := s.requireBedroom(ctx, req.BedroomID); err != nil {
		return nil, err
	}

	typ := domain.SensorType(req.Type)
	if !typ.Valid() {
		return nil, validationError(msgInvalidSensorType)
	}

	min, okMin := parseNumber(req.MinValue)
	max, okMax := parseNumber(req.MaxValue)
	if !okMin || !okMax {
		return nil, validationError(msgInvalidNumbers)
	}
	if min >= max {
		return nil, validationError(msgMinNotLessThanMax)
	}

	exists, err := s.sensors.ExistsInBedroom(ctx, req.BedroomID, name, selfID)
	if err != nil {
		return nil, internalError("Failed to validate sensor", err)
	}
	if exists {
		return nil, conflictError(msgDuplicateSensor)
	}

	return &domain.Sensor{
		BedroomID: req.BedroomID,
		Name:      name,
		Type:      typ,
		Unit:      unit,
		MinValue:  min,
		MaxValue:  max,
	}, nil
}

func (s *SensorService) requireBedroom(ctx context.Context, bedroomID int64) error {
	if _, err := s.bedrooms.Get(ctx, bedroomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgBedroomNotFound)
		}
		return internalError("Failed to fetch bedroom", err)
	}
	return nil
}

// writeError 写入时的约束冲突（并发下预检查可能漏掉）
func (s *SensorService) writeError(msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return conflictError(msgDuplicateSensor)
	case errors.Is(err, repository.ErrForeignKey):
		return notFoundError(msgBedroomNotFound)
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError(msgSensorNotFound)
	}
	return internalError(msg, err)
}

// parseNumber 接受 JSON 数字或数字字符串
func parseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
