package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
)

const (
	msgIntervalRange    = "Interval must be between 1000ms (1s) and 3600000ms (1hr)"
	msgIntervalRequired = "interval_ms is required"
)

// SimulationEngine simulation.Engine 的控制接口
type SimulationEngine interface {
	Start(ctx context.Context, intervalMs int) (simulation.Result, error)
	Stop(ctx context.Context) (simulation.Result, error)
	Restart(ctx context.Context, intervalMs int) (simulation.Result, error)
	UpdateInterval(ctx context.Context, intervalMs int) (simulation.Result, error)
	Status(ctx context.Context) (simulation.Status, error)
}

var _ SimulationEngine = (*simulation.Engine)(nil)

// SimulationService 模拟控制面：参数校验后再调用引擎
type SimulationService struct {
	engine SimulationEngine
	config repository.SimulationConfigRepository
	logger *zap.Logger
}

// NewSimulationService 创建模拟控制服务
func NewSimulationService(engine SimulationEngine, config repository.SimulationConfigRepository, logger *zap.Logger) *SimulationService {
	return &SimulationService{engine: engine, config: config, logger: logger}
}

// Start intervalMs 为 nil 或 0 时使用配置中的间隔
func (s *SimulationService) Start(ctx context.Context, intervalMs *int) (simulation.Result, error) {
	interval, err := optionalInterval(intervalMs)
	if err != nil {
		return simulation.Result{}, err
	}
	res, err := s.engine.Start(ctx, interval)
	if err != nil {
		return simulation.Result{}, internalError("Failed to start simulation", err)
	}
	return res, resultError(res)
}

func (s *SimulationService) Stop(ctx context.Context) (simulation.Result, error) {
	res, err := s.engine.Stop(ctx)
	if err != nil {
		return simulation.Result{}, internalError("Failed to stop simulation", err)
	}
	return res, resultError(res)
}

func (s *SimulationService) Restart(ctx context.Context, intervalMs *int) (simulation.Result, error) {
	interval, err := optionalInterval(intervalMs)
	if err != nil {
		return simulation.Result{}, err
	}
	res, err := s.engine.Restart(ctx, interval)
	if err != nil {
		return simulation.Result{}, internalError("Failed to restart simulation", err)
	}
	return res, resultError(res)
}

// UpdateInterval interval_ms 必填
func (s *SimulationService) UpdateInterval(ctx context.Context, intervalMs *int) (simulation.Result, error) {
	if intervalMs == nil || *intervalMs == 0 {
		return simulation.Result{}, validationError(msgIntervalRequired)
	}
	if !domain.IntervalInRange(*intervalMs) {
		return simulation.Result{}, validationError(msgIntervalRange)
	}
	res, err := s.engine.UpdateInterval(ctx, *intervalMs)
	if err != nil {
		return simulation.Result{}, internalError("Failed to update simulation interval", err)
	}
	return res, resultError(res)
}

func (s *SimulationService) Status(ctx context.Context) (simulation.Status, error) {
	st, err := s.engine.Status(ctx)
	if err != nil {
		return simulation.Status{}, internalError("Failed to fetch simulation status", err)
	}
	return st, nil
}

func (s *SimulationService) GetConfig(ctx context.Context) (*domain.SimulationConfig, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch simulation config", err)
	}
	return cfg, nil
}

// UpdateConfig 直接写配置行，不经过引擎（is_running 可能与进程状态不一致）
func (s *SimulationService) UpdateConfig(ctx context.Context, upd domain.SimulationConfigUpdate) (*domain.SimulationConfig, error) {
	if upd.IntervalMs != nil && !domain.IntervalInRange(*upd.IntervalMs) {
		return nil, validationError(msgIntervalRange)
	}
	cfg, err := s.config.Update(ctx, upd)
	if err != nil {
		return nil, internalError("Failed to update simulation config", err)
	}
	return cfg, nil
}

// Resume 启动时按配置行恢复运行（SIMULATION_AUTO_RESUME）
func (s *SimulationService) Resume(ctx context.Context) (bool, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.IsRunning {
		return false, nil
	}

	res, err := s.engine.Start(ctx, cfg.IntervalMs)
	if err != nil {
		return false, err
	}
	s.logger.Info("Simulation resumed from persisted state",
		zap.Int("interval_ms", res.IntervalMs),
		zap.Bool("started", res.Success),
	)
	return res.Success, nil
}

func optionalInterval(intervalMs *int) (int, error) {
	if intervalMs == nil || *intervalMs == 0 {
		return 0, nil
	}
	if !domain.IntervalInRange(*intervalMs) {
		return 0, validationError(msgIntervalRange)
	}
	return *intervalMs, nil
}

// resultError 引擎返回的状态冲突转为 KindState
func resultError(res simulation.Result) error {
	if res.Success {
		return nil
	}
	return &Error{Kind: KindState, Message: res.Message, Err: res.Reason}
}
