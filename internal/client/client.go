package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
)

// envelope 服务端统一响应；模拟控制接口的字段直接位于顶层
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	IntervalMs *int            `json:"interval_ms"`
	IsRunning  *bool           `json:"is_running"`
}

// APIError 服务端返回 success=false
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// ControlResult 模拟控制接口的结果
type ControlResult struct {
	Message    string
	IntervalMs int
	IsRunning  *bool
}

// Client iot-monitoring HTTP API 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端；只在网络错误时重试
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient, logger: logger}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var env envelope
	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	c.logger.Debug("API call finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode()),
	)

	if resp.IsError() || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: msg, Detail: env.Error}
	}
	return &env, nil
}

func decodeData[T any](env *envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response data: %w", err)
	}
	return out, nil
}

func controlResult(env *envelope) ControlResult {
	res := ControlResult{Message: env.Message, IsRunning: env.IsRunning}
	if env.IntervalMs != nil {
		res.IntervalMs = *env.IntervalMs
	}
	return res
}

func intervalBody(intervalMs int) map[string]any {
	if intervalMs <= 0 {
		return map[string]any{}
	}
	return map[string]any{"interval_ms": intervalMs}
}

// StartSimulation intervalMs <= 0 时使用服务端配置
func (c *Client) StartSimulation(ctx context.Context, intervalMs int) (ControlResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/simulation/start", intervalBody(intervalMs))
	if err != nil {
		return ControlResult{}, err
	}
	return controlResult(env), nil
}

func (c *Client) StopSimulation(ctx context.Context) (ControlResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/simulation/stop", map[string]any{})
	if err != nil {
		return ControlResult{}, err
	}
	return controlResult(env), nil
}

func (c *Client) RestartSimulation(ctx context.Context, intervalMs int) (ControlResult, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/simulation/restart", intervalBody(intervalMs))
	if err != nil {
		return ControlResult{}, err
	}
	return controlResult(env), nil
}

func (c *Client) UpdateInterval(ctx context.Context, intervalMs int) (ControlResult, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/simulation/interval", map[string]any{"interval_ms": intervalMs})
	if err != nil {
		return ControlResult{}, err
	}
	return controlResult(env), nil
}

func (c *Client) SimulationStatus(ctx context.Context) (simulation.Status, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/simulation/status", nil)
	if err != nil {
		return simulation.Status{}, err
	}
	return decodeData[simulation.Status](env)
}

func (c *Client) ListBedrooms(ctx context.Context) ([]domain.BedroomWithCounts, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/bedrooms", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.BedroomWithCounts](env)
}

func (c *Client) ListSensors(ctx context.Context) ([]domain.Sensor, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/sensors", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.Sensor](env)
}

func (c *Client) LatestReadings(ctx context.Context) ([]domain.LatestReading, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/sensor-logs/latest", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]domain.LatestReading](env)
}
