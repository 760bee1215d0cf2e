package domain

import "time"

// SensorLog 传感器读数（对应 sensor_logs 表）
// room_name / sensor_name 为写入时的快照，不随改名同步
type SensorLog struct {
	ID         int64     `db:"id" json:"id"`
	SensorID   int64     `db:"sensor_id" json:"sensor_id"`
	RoomName   string    `db:"room_name" json:"room_name"`
	SensorName string    `db:"sensor_name" json:"sensor_name"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	Value      float64   `db:"value" json:"value"`
}

// NewReading 待写入的读数（id 与 timestamp 由存储层生成）
type NewReading struct {
	SensorID   int64
	RoomName   string
	SensorName string
	Value      float64
}

// LatestReading 每个传感器的最新读数，附带传感器元数据
type LatestReading struct {
	SensorLog
	Type        string `db:"type" json:"type"`
	Unit        string `db:"unit" json:"unit"`
	BedroomName string `db:"bedroom_name" json:"bedroom_name"`
}

// SensorStats 传感器读数统计
type SensorStats struct {
	Count        int64     `json:"count"`
	MinValue     float64   `json:"min_value"`
	MaxValue     float64   `json:"max_value"`
	AvgValue     float64   `json:"avg_value"`
	FirstReading time.Time `json:"first_reading"`
	LastReading  time.Time `json:"last_reading"`
}

// TimeRange 可选的时间范围过滤
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// ReadingEvent 对外发布的读数事件（Redis Stream / MQTT）
type ReadingEvent struct {
	SensorID   int64     `json:"sensor_id"`
	BedroomID  int64     `json:"bedroom_id"`
	RoomName   string    `json:"room_name"`
	SensorName string    `json:"sensor_name"`
	Type       string    `json:"type"`
	Unit       string    `json:"unit"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}
