package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

var (
	ErrAlreadyRunning = errors.New("simulation is already running")
	ErrNotRunning     = errors.New("simulation is not running")
)

// SensorRegistry 活跃传感器来源
type SensorRegistry interface {
	ListActive(ctx context.Context) ([]domain.ActiveSensor, error)
}

// ReadingSink 读数批量写入
type ReadingSink interface {
	BulkCreate(ctx context.Context, readings []domain.NewReading) (int64, error)
}

// ConfigStore simulation_config 单行存取
type ConfigStore interface {
	Get(ctx context.Context) (*domain.SimulationConfig, error)
	Update(ctx context.Context, upd domain.SimulationConfigUpdate) (*domain.SimulationConfig, error)
}

// ReadingPublisher 写库成功后发布读数（可选）
type ReadingPublisher interface {
	Publish(ctx context.Context, events []domain.ReadingEvent) error
}

// Result 控制操作结果；状态冲突以 Success=false 返回，不作为 error
type Result struct {
	Success    bool
	Message    string
	IntervalMs int
	IsRunning  bool
	// Reason 失败时为 ErrAlreadyRunning / ErrNotRunning
	Reason error
}

// Status 引擎状态：is_running 取进程内状态，interval 取配置行
type Status struct {
	IsRunning       bool    `json:"is_running"`
	IntervalMs      int     `json:"interval_ms"`
	IntervalSeconds float64 `json:"interval_seconds"`
}

// Engine 模拟引擎：STOPPED / RUNNING 状态机 + 定时生成读数
//
// 控制操作由 mu 串行化；定时任务在自己的 goroutine 中执行，不持有 mu。
// Stop 只取消定时器，不会中断正在进行的生成批次。
type Engine struct {
	sensors   SensorRegistry
	sink      ReadingSink
	config    ConfigStore
	publisher ReadingPublisher
	logger    *zap.Logger

	// generate 便于测试替换
	generate func(min, max float64) float64

	mu         sync.Mutex
	running    bool
	intervalMs int
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewEngine 创建模拟引擎，publisher 可以为 nil
func NewEngine(sensors SensorRegistry, sink ReadingSink, config ConfigStore, publisher ReadingPublisher, logger *zap.Logger) *Engine {
	return &Engine{
		sensors:   sensors,
		sink:      sink,
		config:    config,
		publisher: publisher,
		logger:    logger,
		generate:  GenerateValue,
	}
}

// Start intervalMs <= 0 时使用配置行中的间隔
func (e *Engine) Start(ctx context.Context, intervalMs int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked(ctx, intervalMs)
}

// Stop 停止定时任务并持久化 is_running=false
func (e *Engine) Stop(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked(ctx)
}

// Restart 先停止（忽略未运行），再以 intervalMs 启动
func (e *Engine) Restart(ctx context.Context, intervalMs int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.stopLocked(ctx)
	if err != nil {
		return Result{}, err
	}
	if !res.Success && !errors.Is(res.Reason, ErrNotRunning) {
		return res, nil
	}
	return e.startLocked(ctx, intervalMs)
}

// UpdateInterval 运行中则以新间隔重启，否则只持久化
func (e *Engine) UpdateInterval(ctx context.Context, intervalMs int) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasRunning := e.running
	if wasRunning {
		if _, err := e.stopLocked(ctx); err != nil {
			return Result{}, err
		}
	}

	if _, err := e.config.Update(ctx, domain.SimulationConfigUpdate{IntervalMs: &intervalMs}); err != nil {
		return Result{}, fmt.Errorf("failed to persist interval: %w", err)
	}

	if wasRunning {
		res, err := e.startLocked(ctx, intervalMs)
		if err != nil {
			return Result{}, err
		}
		if !res.Success {
			return res, nil
		}
	}

	e.logger.Info("Simulation interval updated",
		zap.Int("interval_ms", intervalMs),
		zap.Bool("is_running", e.running),
	)

	return Result{
		Success:    true,
		Message:    "Interval updated successfully",
		IntervalMs: intervalMs,
		IsRunning:  e.running,
	}, nil
}

// Status 当前状态
func (e *Engine) Status(ctx context.Context) (Status, error) {
	cfg, err := e.config.Get(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		IsRunning:       e.IsRunning(),
		IntervalMs:      cfg.IntervalMs,
		IntervalSeconds: float64(cfg.IntervalMs) / 1000,
	}, nil
}

// IsRunning 进程内运行状态
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Shutdown 进程退出时取消定时器并等待循环退出，不修改配置行
// （保留 is_running，供 SIMULATION_AUTO_RESUME 使用）
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	if e.running {
		e.cancel()
		e.running = false
		e.cancel = nil
		e.done = nil
	}
	e.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) startLocked(ctx context.Context, intervalMs int) (Result, error) {
	if e.running {
		return Result{
			Success:    false,
			Message:    "Simulation is already running",
			IntervalMs: e.intervalMs,
			IsRunning:  true,
			Reason:     ErrAlreadyRunning,
		}, nil
	}

	if intervalMs <= 0 {
		cfg, err := e.config.Get(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read simulation config: %w", err)
		}
		intervalMs = cfg.IntervalMs
	}

	running := true
	if _, err := e.config.Update(ctx, domain.SimulationConfigUpdate{IntervalMs: &intervalMs, IsRunning: &running}); err != nil {
		return Result{}, fmt.Errorf("failed to persist simulation state: %w", err)
	}

	// 启动时立即生成一批，失败直接返回，引擎保持 STOPPED
	if _, err := e.GenerateReadings(ctx); err != nil {
		return Result{}, fmt.Errorf("initial generation failed: %w", err)
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go e.loop(taskCtx, time.Duration(intervalMs)*time.Millisecond, done)

	e.running = true
	e.intervalMs = intervalMs
	e.cancel = cancel
	e.done = done

	e.logger.Info("Simulation started", zap.Int("interval_ms", intervalMs))

	return Result{
		Success:    true,
		Message:    "Simulation started successfully",
		IntervalMs: intervalMs,
		IsRunning:  true,
	}, nil
}

func (e *Engine) stopLocked(ctx context.Context) (Result, error) {
	if !e.running {
		return Result{
			Success: false,
			Message: "Simulation is not running",
			Reason:  ErrNotRunning,
		}, nil
	}

	e.cancel()
	e.running = false
	e.cancel = nil
	e.done = nil

	running := false
	if _, err := e.config.Update(ctx, domain.SimulationConfigUpdate{IsRunning: &running}); err != nil {
		return Result{}, fmt.Errorf("failed to persist simulation state: %w", err)
	}

	e.logger.Info("Simulation stopped")

	return Result{
		Success:    true,
		Message:    "Simulation stopped successfully",
		IntervalMs: e.intervalMs,
		IsRunning:  false,
	}, nil
}

// loop 定时触发生成；单次失败只记日志，调度继续
func (e *Engine) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 批次不随 Stop 取消
			if _, err := e.GenerateReadings(context.WithoutCancel(ctx)); err != nil {
				e.logger.Error("Scheduled generation failed", zap.Error(err))
			}
		}
	}
}

// GenerateReadings 为所有活跃传感器各生成一条读数并批量写入，返回写入条数
func (e *Engine) GenerateReadings(ctx context.Context) (int, error) {
	sensors, err := e.sensors.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active sensors: %w", err)
	}
	if len(sensors) == 0 {
		e.logger.Debug("No active sensors, skipping generation")
		return 0, nil
	}

	readings := make([]domain.NewReading, 0, len(sensors))
	events := make([]domain.ReadingEvent, 0, len(sensors))
	now := time.Now().UTC()
	for _, s := range sensors {
		// 库中可能存在绕过写入校验的数据
		if s.MinValue > s.MaxValue {
			e.logger.Warn("Skipping sensor with inverted bounds",
				zap.Int64("sensor_id", s.ID),
				zap.Float64("min_value", s.MinValue),
				zap.Float64("max_value", s.MaxValue),
			)
			continue
		}
		v := e.generate(s.MinValue, s.MaxValue)
		readings = append(readings, domain.NewReading{
			SensorID:   s.ID,
			RoomName:   s.BedroomName,
			SensorName: s.Name,
			Value:      v,
		})
		events = append(events, domain.ReadingEvent{
			SensorID:   s.ID,
			BedroomID:  s.BedroomID,
			RoomName:   s.BedroomName,
			SensorName: s.Name,
			Type:       s.Type,
			Unit:       s.Unit,
			Value:      v,
			Timestamp:  now,
		})
	}
	if len(readings) == 0 {
		return 0, nil
	}

	n, err := e.sink.BulkCreate(ctx, readings)
	if err != nil {
		return 0, fmt.Errorf("failed to write readings: %w", err)
	}

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, events); err != nil {
			e.logger.Warn("Failed to publish readings", zap.Int("count", len(events)), zap.Error(err))
		}
	}

	e.logger.Debug("Generated readings", zap.Int64("count", n))
	return int(n), nil
}
