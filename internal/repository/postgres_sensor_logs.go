package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// PostgresSensorLogsRepository 读数Repository实现
type PostgresSensorLogsRepository struct {
	db *sql.DB
}

// NewPostgresSensorLogsRepository 创建读数Repository
func NewPostgresSensorLogsRepository(db *sql.DB) *PostgresSensorLogsRepository {
	return &PostgresSensorLogsRepository{db: db}
}

var _ SensorLogsRepository = (*PostgresSensorLogsRepository)(nil)

const sensorLogColumns = `id, sensor_id, room_name, sensor_name, timestamp, value`

// BulkCreate 一条 INSERT 写入整批读数
func (r *PostgresSensorLogsRepository) BulkCreate(ctx context.Context, readings []domain.NewReading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(readings))
	args := make([]any, 0, len(readings)*4)
	for i, rd := range readings {
		n := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4))
		args = append(args, rd.SensorID, rd.RoomName, rd.SensorName, rd.Value)
	}

	query := `INSERT INTO sensor_logs (sensor_id, room_name, sensor_name, value) VALUES ` + strings.Join(values, ", ")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sensor logs: %w", translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to insert sensor logs: %w", err)
	}
	return n, nil
}

// Latest 每个传感器的最新读数
func (r *PostgresSensorLogsRepository) Latest(ctx context.Context) ([]domain.LatestReading, error) {
	query := `
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
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	defer rows.Close()

	out := []domain.LatestReading{}
	for rows.Next() {
		var lr domain.LatestReading
		if err := rows.Scan(
			&lr.ID, &lr.SensorID, &lr.RoomName, &lr.SensorName, &lr.Timestamp, &lr.Value,
			&lr.Type, &lr.Unit, &lr.BedroomName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan latest reading: %w", err)
		}
		out = append(out, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest readings: %w", err)
	}
	return out, nil
}

func (r *PostgresSensorLogsRepository) ListBySensor(ctx context.Context, sensorID int64, tr domain.TimeRange) ([]domain.SensorLog, error) {
	where, args := timeRangeWhere("sensor_id = $1", []any{sensorID}, tr)
	query := `SELECT ` + sensorLogColumns + ` FROM sensor_logs WHERE ` + where + ` ORDER BY timestamp DESC, id DESC`
	return r.query(ctx, query, args...)
}

func (r *PostgresSensorLogsRepository) ListByBedroom(ctx context.Context, roomName string, tr domain.TimeRange) ([]domain.SensorLog, error) {
	where, args := timeRangeWhere("room_name = $1", []any{roomName}, tr)
	query := `SELECT ` + sensorLogColumns + ` FROM sensor_logs WHERE ` + where + ` ORDER BY timestamp DESC, id DESC`
	return r.query(ctx, query, args...)
}

// Stats 统计 count/min/max/avg/first/last，无数据返回 nil
func (r *PostgresSensorLogsRepository) Stats(ctx context.Context, sensorID int64, tr domain.TimeRange) (*domain.SensorStats, error) {
	where, args := timeRangeWhere("sensor_id = $1", []any{sensorID}, tr)
	query := `
		SELECT COUNT(*), MIN(value), MAX(value), AVG(value), MIN(timestamp), MAX(timestamp)
		FROM sensor_logs
		WHERE ` + where

	var (
		count            int64
		minV, maxV, avgV sql.NullFloat64
		firstTs, lastTs  sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count, &minV, &maxV, &avgV, &firstTs, &lastTs); err != nil {
		return nil, fmt.Errorf("failed to query sensor stats: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	return &domain.SensorStats{
		Count:        count,
		MinValue:     minV.Float64,
		MaxValue:     maxV.Float64,
		AvgValue:     math.Round(avgV.Float64*100) / 100,
		FirstReading: firstTs.Time,
		LastReading:  lastTs.Time,
	}, nil
}

func (r *PostgresSensorLogsRepository) Recent(ctx context.Context, since time.Time) ([]domain.SensorLog, error) {
	query := `SELECT ` + sensorLogColumns + ` FROM sensor_logs WHERE timestamp >= $1 ORDER BY timestamp DESC, id DESC`
	return r.query(ctx, query, since)
}

func (r *PostgresSensorLogsRepository) List(ctx context.Context, limit, offset int) ([]domain.SensorLog, error) {
	query := `SELECT ` + sensorLogColumns + ` FROM sensor_logs ORDER BY timestamp DESC, id DESC LIMIT $1 OFFSET $2`
	return r.query(ctx, query, limit, offset)
}

// DeleteOlderThan 按时间清理历史读数
func (r *PostgresSensorLogsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sensor_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sensor logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete sensor logs: %w", err)
	}
	return n, nil
}

func (r *PostgresSensorLogsRepository) query(ctx context.Context, query string, args ...any) ([]domain.SensorLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor logs: %w", err)
	}
	defer rows.Close()

	out := []domain.SensorLog{}
	for rows.Next() {
		var l domain.SensorLog
		if err := rows.Scan(&l.ID, &l.SensorID, &l.RoomName, &l.SensorName, &l.Timestamp, &l.Value); err != nil {
			return nil, fmt.Errorf("failed to scan sensor log: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor logs: %w", err)
	}
	return out, nil
}

// timeRangeWhere 在 base 条件后追加 timestamp 范围（$n 顺延）
func timeRangeWhere(base string, args []any, tr domain.TimeRange) (string, []any) {
	where := []string{base}
	argIdx := len(args) + 1
	if tr.Start != nil {
		where = append(where, fmt.Sprintf("timestamp >= $%d", argIdx))
		args = append(args, *tr.Start)
		argIdx++
	}
	if tr.End != nil {
		where = append(where, fmt.Sprintf("timestamp <= $%d", argIdx))
		args = append(args, *tr.End)
	}
	return strings.Join(where, " AND "), args
}
