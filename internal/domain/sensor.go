package domain

import "time"

// SensorType 传感器类型
type SensorType string

const (
	SensorTypeTemperature SensorType = "temperature"
	SensorTypeHumidity    SensorType = "humidity"
)

// Valid 是否为支持的传感器类型
func (t SensorType) Valid() bool {
	return t == SensorTypeTemperature || t == SensorTypeHumidity
}

// Sensor 传感器领域模型（对应 sensors 表）
// BedroomName 为只读字段，由 JOIN bedrooms 得到
type Sensor struct {
	ID          int64      `db:"id" json:"id"`
	BedroomID   int64      `db:"bedroom_id" json:"bedroom_id"`
	BedroomName string     `db:"bedroom_name" json:"bedroom_name,omitempty"`
	Name        string     `db:"name" json:"name"`
	Type        SensorType `db:"type" json:"type"`
	Unit        string     `db:"unit" json:"unit"`
	MinValue    float64    `db:"min_value" json:"min_value"`
	MaxValue    float64    `db:"max_value" json:"max_value"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ActiveSensor 模拟引擎使用的活跃传感器（带上下限与卧室名）
type ActiveSensor struct {
	ID          int64   `db:"id"`
	BedroomID   int64   `db:"bedroom_id"`
	BedroomName string  `db:"bedroom_name"`
	Name        string  `db:"name"`
	Type        string  `db:"type"`
	Unit        string  `db:"unit"`
	MinValue    float64 `db:"min_value"`
	MaxValue    float64 `db:"max_value"`
}
