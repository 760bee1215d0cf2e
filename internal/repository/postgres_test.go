package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ============================================
// Bedrooms
// ============================================

func TestPostgresBedrooms_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresBedroomsRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at", "sensor_count", "active_sensors"}).
		AddRow(2, "Guest Room", nil, now, now, 0, 0).
		AddRow(1, "Master Bedroom", "main", now, now, 2, 1)
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Guest Room", list[0].Name)
	assert.Nil(t, list[0].Description)
	assert.Equal(t, "main", *list[1].Description)
	assert.Equal(t, 2, list[1].SensorCount)
	assert.Equal(t, 1, list[1].ActiveSensors)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBedrooms_Get_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresBedroomsRepository(db)

	mock.ExpectQuery(`SELECT id, name, description`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	b, err := repo.Get(context.Background(), 42)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBedrooms_Create_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresBedroomsRepository(db)

	mock.ExpectQuery(`INSERT INTO bedrooms`).
		WithArgs("Master Bedroom", nil).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	b, err := repo.Create(context.Background(), "Master Bedroom", nil)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBedrooms_Delete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresBedroomsRepository(db)

	mock.ExpectExec(`DELETE FROM bedrooms`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Sensors
// ============================================

func TestPostgresSensors_ListActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "bedroom_id", "bedroom_name", "name", "type", "unit", "min_value", "max_value"}).
		AddRow(1, 1, "Master Bedroom", "Temp 1", "temperature", "°C", 20.0, 25.0).
		AddRow(2, 1, "Master Bedroom", "Hum 1", "humidity", "%", 40.0, 60.0)
	mock.ExpectQuery(`WHERE s.is_active = TRUE`).WillReturnRows(rows)

	list, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Master Bedroom", list[0].BedroomName)
	assert.Equal(t, 20.0, list[0].MinValue)
	assert.Equal(t, 60.0, list[1].MaxValue)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensors_Create_ForeignKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorsRepository(db)

	mock.ExpectQuery(`INSERT INTO sensors`).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	s, err := repo.Create(context.Background(), &domain.Sensor{
		BedroomID: 99, Name: "Temp", Type: domain.SensorTypeTemperature, Unit: "°C", MinValue: 1, MaxValue: 2, IsActive: true,
	})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrForeignKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensors_ExistsInBedroom(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorsRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), "Temp 1", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsInBedroom(context.Background(), 1, "Temp 1", 0)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Sensor logs
// ============================================

func TestPostgresSensorLogs_BulkCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)

	mock.ExpectExec(`INSERT INTO sensor_logs`).
		WithArgs(int64(1), "Master Bedroom", "Temp 1", 21.5, int64(2), "Master Bedroom", "Hum 1", 45.25).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.BulkCreate(context.Background(), []domain.NewReading{
		{SensorID: 1, RoomName: "Master Bedroom", SensorName: "Temp 1", Value: 21.5},
		{SensorID: 2, RoomName: "Master Bedroom", SensorName: "Hum 1", Value: 45.25},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensorLogs_BulkCreate_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)

	n, err := repo.BulkCreate(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	// 空批次不访问数据库
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensorLogs_ListBySensor_TimeRange(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	ts := start.Add(30 * time.Minute)

	mock.ExpectQuery(`timestamp >= \$2 AND timestamp <= \$3`).
		WithArgs(int64(5), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sensor_id", "room_name", "sensor_name", "timestamp", "value"}).
			AddRow(10, 5, "Kids Room", "Temp", ts, 22.1))

	logs, err := repo.ListBySensor(context.Background(), 5, domain.TimeRange{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 22.1, logs[0].Value)
	assert.Equal(t, ts, logs[0].Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensorLogs_Stats_NoReadings(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min", "max", "avg", "first", "last"}).
			AddRow(0, nil, nil, nil, nil, nil))

	stats, err := repo.Stats(context.Background(), 3, domain.TimeRange{})
	require.NoError(t, err)
	assert.Nil(t, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensorLogs_Stats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(time.Hour)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "min", "max", "avg", "first", "last"}).
			AddRow(3, 20.0, 24.0, 22.3333333, first, last))

	stats, err := repo.Stats(context.Background(), 3, domain.TimeRange{})
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 22.33, stats.AvgValue)
	assert.Equal(t, first, stats.FirstReading)
	assert.Equal(t, last, stats.LastReading)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSensorLogs_DeleteOlderThan(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSensorLogsRepository(db)
	cutoff := time.Now().AddDate(0, 0, -30)

	mock.ExpectExec(`DELETE FROM sensor_logs WHERE timestamp <`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Simulation config
// ============================================

func TestPostgresSimulationConfig_Get_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSimulationConfigRepository(db)

	mock.ExpectQuery(`FROM simulation_config`).WillReturnError(sql.ErrNoRows)

	cfg, err := repo.Get(context.Background())
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfigMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSimulationConfig_Update_PartialFields(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSimulationConfigRepository(db)
	now := time.Now()
	running := true

	mock.ExpectQuery(`SET is_running = \$1, updated_at = NOW\(\)`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "interval_ms", "is_running", "updated_at"}).
			AddRow(1, 60000, true, now))

	cfg, err := repo.Update(context.Background(), domain.SimulationConfigUpdate{IsRunning: &running})
	require.NoError(t, err)
	assert.True(t, cfg.IsRunning)
	assert.Equal(t, 60000, cfg.IntervalMs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSimulationConfig_Update_NoFieldsReads(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresSimulationConfigRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, interval_ms, is_running, updated_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "interval_ms", "is_running", "updated_at"}).
			AddRow(1, 5000, false, now))

	cfg, err := repo.Update(context.Background(), domain.SimulationConfigUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.IntervalMs)
	require.NoError(t, mock.ExpectationsWereMet())
}
