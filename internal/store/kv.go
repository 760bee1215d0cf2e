package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

var ErrMiss = errors.New("cache miss")

// KV 最小键值接口（便于替换 / 测试）
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

const latestKeyPrefix = "iot:latest:"

// LatestReadings 每个传感器最新读数缓存（key: iot:latest:<sensor_id>，带 TTL）
type LatestReadings struct {
	kv  KV
	ttl time.Duration
}

func NewLatestReadings(kv KV, ttl time.Duration) *LatestReadings {
	return &LatestReadings{kv: kv, ttl: ttl}
}

func latestKey(sensorID int64) string {
	return latestKeyPrefix + strconv.FormatInt(sensorID, 10)
}

// Put 覆盖写入
func (l *LatestReadings) Put(ctx context.Context, ev domain.ReadingEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, latestKey(ev.SensorID), string(b), l.ttl)
}

// Get 未命中返回 ErrMiss
func (l *LatestReadings) Get(ctx context.Context, sensorID int64) (*domain.ReadingEvent, error) {
	raw, err := l.kv.Get(ctx, latestKey(sensorID))
	if err != nil {
		return nil, err
	}
	var ev domain.ReadingEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, fmt.Errorf("invalid cached reading for sensor %d: %w", sensorID, err)
	}
	return &ev, nil
}

// All 返回全部未过期的缓存读数，按卧室名、传感器名排序
func (l *LatestReadings) All(ctx context.Context) ([]domain.ReadingEvent, error) {
	keys, err := l.kv.ScanKeys(ctx, latestKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReadingEvent, 0, len(keys))
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, latestKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		ev, err := l.Get(ctx, id)
		if err != nil {
			// 扫描与读取之间过期
			if errors.Is(err, ErrMiss) {
				continue
			}
			return nil, err
		}
		out = append(out, *ev)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomName != out[j].RoomName {
			return out[i].RoomName < out[j].RoomName
		}
		return out[i].SensorName < out[j].SensorName
	})
	return out, nil
}
