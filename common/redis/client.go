package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/prashant-rs/iot-monitoring/common/config"
)

// Client go-redis 客户端别名，调用方不直接依赖 go-redis 包
type Client = redis.Client

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
	pingTimeout  = 5 * time.Second
)

// NewRedisClient 创建客户端（不建立连接，首次命令时才连接）
func NewRedisClient(cfg *config.RedisConfig) *Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		MaxRetries:   1,
	})
}

// Ping 启动时检查 Redis 可达
func Ping(ctx context.Context, client *Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close nil 安全
func Close(client *Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
