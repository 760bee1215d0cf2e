package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SQLite（gorm）行模型，与 migrations/sqlite 表结构一一对应

// BedroomRow bedrooms 表行；被联表扫描结构嵌入，必须导出，否则 gorm 不解析其字段
type BedroomRow struct {
	ID          int64 `gorm:"primaryKey"`
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (BedroomRow) TableName() string { return "bedrooms" }

func (r BedroomRow) toDomain() *domain.Bedroom {
	return &domain.Bedroom{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// SensorRow sensors 表行
type SensorRow struct {
	ID        int64 `gorm:"primaryKey"`
	BedroomID int64
	Name      string
	Type      string
	Unit      string
	MinValue  float64
	MaxValue  float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SensorRow) TableName() string { return "sensors" }

// sensorJoinRow sensors JOIN bedrooms
type sensorJoinRow struct {
	SensorRow
	BedroomName string
}

func (r sensorJoinRow) toDomain() domain.Sensor {
	return domain.Sensor{
		ID:          r.ID,
		BedroomID:   r.BedroomID,
		BedroomName: r.BedroomName,
		Name:        r.Name,
		Type:        domain.SensorType(r.Type),
		Unit:        r.Unit,
		MinValue:    r.MinValue,
		MaxValue:    r.MaxValue,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// SensorLogRow sensor_logs 表行
type SensorLogRow struct {
	ID         int64 `gorm:"primaryKey"`
	SensorID   int64
	RoomName   string
	SensorName string
	Timestamp  time.Time
	Value      float64
}

func (SensorLogRow) TableName() string { return "sensor_logs" }

func (r SensorLogRow) toDomain() domain.SensorLog {
	return domain.SensorLog{
		ID:         r.ID,
		SensorID:   r.SensorID,
		RoomName:   r.RoomName,
		SensorName: r.SensorName,
		Timestamp:  r.Timestamp,
		Value:      r.Value,
	}
}

type SimulationConfigRow struct {
	ID         int64 `gorm:"primaryKey"`
	IntervalMs int
	IsRunning  bool
	UpdatedAt  time.Time
}

func (SimulationConfigRow) TableName() string { return "simulation_config" }

func (r SimulationConfigRow) toDomain() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		ID:         r.ID,
		IntervalMs: r.IntervalMs,
		IsRunning:  r.IsRunning,
		UpdatedAt:  r.UpdatedAt,
	}
}

// 聚合函数丢失列类型，时间以文本返回
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseSQLiteTime(ns sql.NullString) (time.Time, error) {
	if !ns.Valid {
		return time.Time{}, nil
	}
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized sqlite time %q", ns.String)
}
