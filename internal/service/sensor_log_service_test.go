package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/models"
	"github.com/prashant-rs/iot-monitoring/internal/store"
)

func TestSensorLogService_Validation(t *testing.T) {
	repos := setupRepos(t)
	svc := NewSensorLogService(repos.SensorLogs, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Recent(ctx, 0)
	requireKind(t, err, KindValidation, "Minutes must be between 1 and 1440")
	_, err = svc.Recent(ctx, 1441)
	requireKind(t, err, KindValidation, "Minutes must be between 1 and 1440")

	_, err = svc.All(ctx, models.Pagination{Limit: 1001})
	requireKind(t, err, KindValidation, "Limit must be between 1 and 1000")
	_, err = svc.All(ctx, models.Pagination{Limit: 10, Offset: -1})
	requireKind(t, err, KindValidation, "")

	_, err = svc.Purge(ctx, 0)
	requireKind(t, err, KindValidation, "Days must be a positive integer")

	_, err = svc.Live(ctx)
	requireKind(t, err, KindUnavailable, "")
}

func TestSensorLogService_QueriesAndPurge(t *testing.T) {
	repos := setupRepos(t)
	svc := NewSensorLogService(repos.SensorLogs, nil, zap.NewNop())
	ctx := context.Background()

	b, err := repos.Bedrooms.Create(ctx, "Master Bedroom", nil)
	require.NoError(t, err)
	s, err := repos.Sensors.Create(ctx, &domain.Sensor{
		BedroomID: b.ID, Name: "Temp 1", Type: domain.SensorTypeTemperature, Unit: "°C", MinValue: 20, MaxValue: 25, IsActive: true,
	})
	require.NoError(t, err)
	_, err = repos.SensorLogs.BulkCreate(ctx, []domain.NewReading{{SensorID: s.ID, RoomName: b.Name, SensorName: s.Name, Value: 21}})
	require.NoError(t, err)

	recent, err := svc.Recent(ctx, DefaultRecentMinutes)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	stats, err := svc.Stats(ctx, s.ID, domain.TimeRange{})
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Count)

	exported, err := svc.Export(ctx, ExportRequest{Bedroom: b.Name})
	require.NoError(t, err)
	assert.Len(t, exported, 1)

	// 读数为刚写入，7 天前的截止时间不会删除
	n, err := svc.Purge(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, n)

	// 时间前移 8 天后清理
	svc.now = func() time.Time { return time.Now().AddDate(0, 0, 8) }
	n, err = svc.Purge(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSensorLogService_Live(t *testing.T) {
	repos := setupRepos(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	latest := store.NewLatestReadings(store.NewRedisKV(client), time.Minute)
	svc := NewSensorLogService(repos.SensorLogs, latest, zap.NewNop())
	ctx := context.Background()

	live, err := svc.Live(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)

	require.NoError(t, latest.Put(ctx, domain.ReadingEvent{SensorID: 1, RoomName: "Master Bedroom", SensorName: "Temp 1", Value: 23.4}))
	live, err = svc.Live(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, 23.4, live[0].Value)
}

func TestRetentionService_RunPurgesImmediately(t *testing.T) {
	repos := setupRepos(t)
	logs := NewSensorLogService(repos.SensorLogs, nil, zap.NewNop())
	ctx := context.Background()

	b, err := repos.Bedrooms.Create(ctx, "Master Bedroom", nil)
	require.NoError(t, err)
	s, err := repos.Sensors.Create(ctx, &domain.Sensor{
		BedroomID: b.ID, Name: "Temp 1", Type: domain.SensorTypeTemperature, Unit: "°C", MinValue: 20, MaxValue: 25, IsActive: true,
	})
	require.NoError(t, err)
	_, err = repos.SensorLogs.BulkCreate(ctx, []domain.NewReading{{SensorID: s.ID, RoomName: b.Name, SensorName: s.Name, Value: 21}})
	require.NoError(t, err)

	logs.now = func() time.Time { return time.Now().AddDate(0, 0, 2) }
	retention := NewRetentionService(logs, 1, time.Hour, zap.NewNop())

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		retention.Run(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		list, err := repos.SensorLogs.List(ctx, 10, 0)
		return err == nil && len(list) == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retention loop did not stop")
	}
}

func TestRetentionService_Disabled(t *testing.T) {
	retention := NewRetentionService(nil, 0, time.Hour, zap.NewNop())
	// days <= 0 立即返回
	retention.Run(context.Background())
}
