package domain

import "time"

// Bedroom 卧室领域模型（对应 bedrooms 表）
type Bedroom struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BedroomWithCounts 卧室列表项，附带传感器计数
type BedroomWithCounts struct {
	Bedroom
	SensorCount   int `db:"sensor_count" json:"sensor_count"`
	ActiveSensors int `db:"active_sensors" json:"active_sensors"`
}
