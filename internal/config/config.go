package config

import (
	"os"
	"strconv"

	commoncfg "github.com/prashant-rs/iot-monitoring/common/config"
)

// Config iot-monitoring（HTTP API + 模拟引擎）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	MQTT     commoncfg.MQTTConfig

	// Readings 读数发布配置（Redis Streams + 最新读数缓存）
	Readings struct {
		Stream          string
		StreamMaxLen    int64
		LatestTTLSecond int
	}

	Simulation struct {
		// AutoResume 启动时若 simulation_config.is_running = true 则自动恢复模拟
		AutoResume bool
	}

	// Retention 历史读数清理（0 表示关闭）
	Retention struct {
		Days            int
		IntervalSeconds int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")

	// 默认值，再由 DB_* / REDIS_* / MQTT_* 环境变量覆盖
	cfg.Database = commoncfg.DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "iot_monitoring",
		SSLMode:  "disable",
		MaxConns: 10,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")
	cfg.Database.SQLitePath = getEnv("SQLITE_PATH", "iot_monitoring.sqlite")

	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Readings.Stream = getEnv("READINGS_STREAM", "iot:sensor-readings")
	cfg.Readings.StreamMaxLen = int64(parseInt(getEnv("READINGS_STREAM_MAXLEN", "10000"), 10000))
	cfg.Readings.LatestTTLSecond = parseInt(getEnv("LATEST_READING_TTL", "300"), 300)

	// MQTT 默认关闭；QoS 超出 0..2 时保持默认 0
	cfg.MQTT = commoncfg.MQTTConfig{
		Broker:       "tcp://localhost:1883",
		ClientID:     "iot-monitoring-sim",
		TopicPrefix:  "iot/readings",
		EmbeddedAddr: ":1883",
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Simulation.AutoResume = getEnv("SIMULATION_AUTO_RESUME", "false") == "true"

	cfg.Retention.Days = parseInt(getEnv("RETENTION_DAYS", "0"), 0)
	cfg.Retention.IntervalSeconds = parseInt(getEnv("RETENTION_INTERVAL", "3600"), 3600)
	if cfg.Retention.IntervalSeconds <= 0 {
		cfg.Retention.IntervalSeconds = 3600
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
