package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// SQLiteSensorLogsRepository 读数Repository（gorm / SQLite）
type SQLiteSensorLogsRepository struct {
	db *gorm.DB
}

// NewSQLiteSensorLogsRepository 创建读数Repository
func NewSQLiteSensorLogsRepository(db *gorm.DB) *SQLiteSensorLogsRepository {
	return &SQLiteSensorLogsRepository{db: db}
}

var _ SensorLogsRepository = (*SQLiteSensorLogsRepository)(nil)

// BulkCreate gorm 对切片生成单条多行 INSERT
func (r *SQLiteSensorLogsRepository) BulkCreate(ctx context.Context, readings []domain.NewReading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([]SensorLogRow, 0, len(readings))
	for _, rd := range readings {
		rows = append(rows, SensorLogRow{
			SensorID:   rd.SensorID,
			RoomName:   rd.RoomName,
			SensorName: rd.SensorName,
			Timestamp:  now,
			Value:      rd.Value,
		})
	}

	res := r.db.WithContext(ctx).Create(&rows)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert sensor logs: %w", translateError(res.Error))
	}
	return res.RowsAffected, nil
}

func (r *SQLiteSensorLogsRepository) Latest(ctx context.Context) ([]domain.LatestReading, error) {
	type latestRow struct {
		SensorLogRow
		Type        string
		Unit        string
		BedroomName string
	}

	var rows []latestRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			sl.id, sl.sensor_id, sl.room_name, sl.sensor_name, sl.timestamp, sl.value,
			s.type, s.unit, b.name AS bedroom_name
		FROM sensor_logs sl
		JOIN (
			SELECT sensor_id, MAX(timestamp) AS max_ts
			FROM sensor_logs
			GROUP BY sensor_id
		) latest ON sl.sensor_id = latest.sensor_id AND sl.timestamp = latest.max_ts
		JOIN sensors s ON sl.sensor_id = s.id
		JOIN bedrooms b ON s.bedroom_id = b.id
		ORDER BY b.name, s.name, sl.id
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}

	out := make([]domain.LatestReading, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LatestReading{
			SensorLog:   row.SensorLogRow.toDomain(),
			Type:        row.Type,
			Unit:        row.Unit,
			BedroomName: row.BedroomName,
		})
	}
	return out, nil
}

func (r *SQLiteSensorLogsRepository) ListBySensor(ctx context.Context, sensorID int64, tr domain.TimeRange) ([]domain.SensorLog, error) {
	q := r.db.WithContext(ctx).Model(&SensorLogRow{}).Where("sensor_id = ?", sensorID)
	return r.find(withTimeRange(q, tr))
}

func (r *SQLiteSensorLogsRepository) ListByBedroom(ctx context.Context, roomName string, tr domain.TimeRange) ([]domain.SensorLog, error) {
	q := r.db.WithContext(ctx).Model(&SensorLogRow{}).Where("room_name = ?", roomName)
	return r.find(withTimeRange(q, tr))
}

func (r *SQLiteSensorLogsRepository) Stats(ctx context.Context, sensorID int64, tr domain.TimeRange) (*domain.SensorStats, error) {
	q := r.db.WithContext(ctx).
		Model(&SensorLogRow{}).
		Select("COUNT(*), MIN(value), MAX(value), AVG(value), MIN(timestamp), MAX(timestamp)").
		Where("sensor_id = ?", sensorID)

	var (
		count            int64
		minV, maxV, avgV sql.NullFloat64
		firstTs, lastTs  sql.NullString
	)
	if err := withTimeRange(q, tr).Row().Scan(&count, &minV, &maxV, &avgV, &firstTs, &lastTs); err != nil {
		return nil, fmt.Errorf("failed to query sensor stats: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	first, err := parseSQLiteTime(firstTs)
	if err != nil {
		return nil, err
	}
	last, err := parseSQLiteTime(lastTs)
	if err != nil {
		return nil, err
	}

	return &domain.SensorStats{
		Count:        count,
		MinValue:     minV.Float64,
		MaxValue:     maxV.Float64,
		AvgValue:     math.Round(avgV.Float64*100) / 100,
		FirstReading: first,
		LastReading:  last,
	}, nil
}

func (r *SQLiteSensorLogsRepository) Recent(ctx context.Context, since time.Time) ([]domain.SensorLog, error) {
	q := r.db.WithContext(ctx).Model(&SensorLogRow{}).Where("timestamp >= ?", since.UTC())
	return r.find(q)
}

func (r *SQLiteSensorLogsRepository) List(ctx context.Context, limit, offset int) ([]domain.SensorLog, error) {
	q := r.db.WithContext(ctx).Model(&SensorLogRow{}).Limit(limit).Offset(offset)
	return r.find(q)
}

func (r *SQLiteSensorLogsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&SensorLogRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete sensor logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SQLiteSensorLogsRepository) find(q *gorm.DB) ([]domain.SensorLog, error) {
	var rows []SensorLogRow
	if err := q.Order("timestamp DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query sensor logs: %w", err)
	}
	out := make([]domain.SensorLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func withTimeRange(q *gorm.DB, tr domain.TimeRange) *gorm.DB {
	if tr.Start != nil {
		q = q.Where("timestamp >= ?", tr.Start.UTC())
	}
	if tr.End != nil {
		q = q.Where("timestamp <= ?", tr.End.UTC())
	}
	return q
}
