package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/common/database"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
	"github.com/prashant-rs/iot-monitoring/internal/service"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
)

type testAPI struct {
	handler http.Handler
	repos   *repository.Repositories
	engine  *simulation.Engine
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.MigrateSQLite(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)

	logger := zap.NewNop()
	repos := repository.NewSQLiteRepositories(db)
	engine := simulation.NewEngine(repos.Sensors, repos.SensorLogs, repos.SimulationConfig, nil, logger)
	t.Cleanup(func() {
		_ = engine.Shutdown(context.Background())
		sqlDB.Close()
	})

	handler := NewAPIHandler(Services{
		Bedrooms:   service.NewBedroomService(repos.Bedrooms, logger),
		Sensors:    service.NewSensorService(repos.Sensors, repos.Bedrooms, logger),
		SensorLogs: service.NewSensorLogService(repos.SensorLogs, nil, logger),
		Simulation: service.NewSimulationService(engine, repos.SimulationConfig, logger),
	}, logger)

	return &testAPI{handler: handler, repos: repos, engine: engine}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (a *testAPI) createBedroom(t *testing.T, name string) int64 {
	t.Helper()
	rec, out := a.do(t, http.MethodPost, "/api/bedrooms", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(out["data"].(map[string]any)["id"].(float64))
}

func (a *testAPI) createSensor(t *testing.T, bedroomID int64, name string) int64 {
	t.Helper()
	rec, out := a.do(t, http.MethodPost, "/api/sensors", map[string]any{
		"bedroom_id": bedroomID,
		"name":       name,
		"type":       "temperature",
		"unit":       "°C",
		"min_value":  20.0,
		"max_value":  25.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(out["data"].(map[string]any)["id"].(float64))
}

func TestSystemRoutes(t *testing.T) {
	api := setupAPI(t)

	rec, out := api.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IoT Monitoring System API", out["message"])
	assert.Equal(t, "1.0.0", out["version"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec, out = api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Contains(t, out, "uptime")

	rec, out = api.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Route not found", out["message"])

	rec, _ = api.do(t, http.MethodGet, "/api/simulation/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodOptions, "/api/bedrooms", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBedroomRoutes(t *testing.T) {
	api := setupAPI(t)

	rec, out := api.do(t, http.MethodPost, "/api/bedrooms", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bedroom name is required", out["message"])

	id := api.createBedroom(t, "Master Bedroom")

	rec, out = api.do(t, http.MethodPost, "/api/bedrooms", map[string]any{"name": "Master Bedroom"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Bedroom with this name already exists", out["message"])

	api.createSensor(t, id, "Temp 1")

	rec, out = api.do(t, http.MethodGet, "/api/bedrooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := out["data"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, 1.0, list[0].(map[string]any)["sensor_count"])
	assert.Equal(t, 1.0, list[0].(map[string]any)["active_sensors"])

	rec, out = api.do(t, http.MethodPut, "/api/bedrooms/999", map[string]any{"name": ""})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bedroom not found", out["message"])

	rec, out = api.do(t, http.MethodPut, "/api/bedrooms/1", map[string]any{"name": "Guest Room", "description": "north"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Guest Room", out["data"].(map[string]any)["name"])

	rec, _ = api.do(t, http.MethodGet, "/api/bedrooms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(t, http.MethodPatch, "/api/bedrooms/1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSensorRoutes(t *testing.T) {
	api := setupAPI(t)
	bedroomID := api.createBedroom(t, "Master Bedroom")

	rec, out := api.do(t, http.MethodPost, "/api/sensors", map[string]any{
		"bedroom_id": bedroomID, "name": "Hum 1", "type": "humidity", "unit": "%",
		"min_value": "40", "max_value": "60",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sensor := out["data"].(map[string]any)
	assert.Equal(t, 40.0, sensor["min_value"])
	assert.Equal(t, true, sensor["is_active"])
	assert.Equal(t, "Master Bedroom", sensor["bedroom_name"])

	rec, out = api.do(t, http.MethodPost, "/api/sensors", map[string]any{
		"bedroom_id": bedroomID, "name": "Hum 2", "type": "pressure", "unit": "%",
		"min_value": 40, "max_value": 60,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["message"], "Invalid sensor type")

	rec, _ = api.do(t, http.MethodPost, "/api/sensors", map[string]any{
		"bedroom_id": bedroomID, "name": "Hum 1", "type": "humidity", "unit": "%",
		"min_value": 40, "max_value": 60,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	id := int64(sensor["id"].(float64))
	rec, out = api.do(t, http.MethodPatch, "/api/sensors/"+itoa(id)+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sensor deactivated successfully", out["message"])
	assert.Equal(t, false, out["data"].(map[string]any)["is_active"])

	rec, out = api.do(t, http.MethodGet, "/api/sensors/bedroom/"+itoa(bedroomID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)

	rec, out = api.do(t, http.MethodGet, "/api/sensors/bedroom/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bedroom not found", out["message"])

	rec, _ = api.do(t, http.MethodDelete, "/api/sensors/"+itoa(id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(t, http.MethodGet, "/api/sensors/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBedroomCascades(t *testing.T) {
	api := setupAPI(t)
	ctx := context.Background()

	bedroomID := api.createBedroom(t, "Master Bedroom")
	api.createSensor(t, bedroomID, "Temp 1")
	api.createSensor(t, bedroomID, "Temp 2")

	n, err := api.engine.GenerateReadings(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rec, out := api.do(t, http.MethodDelete, "/api/bedrooms/"+itoa(bedroomID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bedroom deleted successfully", out["message"])

	sensors, err := api.repos.Sensors.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sensors)
	logs, err := api.repos.SensorLogs.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSimulationRoutes(t *testing.T) {
	api := setupAPI(t)

	// 越界间隔被拒绝，引擎状态不变
	rec, out := api.do(t, http.MethodPut, "/api/simulation/interval", map[string]any{"interval_ms": 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Interval must be between 1000ms (1s) and 3600000ms (1hr)", out["message"])
	assert.False(t, api.engine.IsRunning())

	rec, out = api.do(t, http.MethodGet, "/api/simulation/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := out["data"].(map[string]any)
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, 60000.0, status["interval_ms"])
	assert.Equal(t, 60.0, status["interval_seconds"])

	rec, out = api.do(t, http.MethodPut, "/api/simulation/interval", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "interval_ms is required", out["message"])

	rec, out = api.do(t, http.MethodPost, "/api/simulation/stop", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Simulation is not running", out["message"])

	rec, out = api.do(t, http.MethodPost, "/api/simulation/start", map[string]any{"interval_ms": 30000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Simulation started successfully", out["message"])
	assert.Equal(t, 30000.0, out["interval_ms"])

	rec, out = api.do(t, http.MethodPost, "/api/simulation/start", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Simulation is already running", out["message"])

	rec, out = api.do(t, http.MethodPut, "/api/simulation/interval", map[string]any{"interval_ms": 5000})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5000.0, out["interval_ms"])
	assert.Equal(t, true, out["is_running"])

	rec, out = api.do(t, http.MethodPost, "/api/simulation/restart", map[string]any{"interval_ms": 10000})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10000.0, out["interval_ms"])

	rec, out = api.do(t, http.MethodPost, "/api/simulation/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Simulation stopped successfully", out["message"])
	assert.NotContains(t, out, "interval_ms")

	rec, out = api.do(t, http.MethodGet, "/api/simulation/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["data"].(map[string]any)["is_running"])
	assert.Equal(t, 10000.0, out["data"].(map[string]any)["interval_ms"])

	rec, _ = api.do(t, http.MethodGet, "/api/simulation/start", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSimulationConfigRoutes(t *testing.T) {
	api := setupAPI(t)

	rec, out := api.do(t, http.MethodGet, "/api/simulation/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 60000.0, out["data"].(map[string]any)["interval_ms"])

	rec, _ = api.do(t, http.MethodPut, "/api/simulation/config", map[string]any{"interval_ms": 999})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = api.do(t, http.MethodPut, "/api/simulation/config", map[string]any{"interval_ms": 2000, "is_running": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Configuration updated successfully", out["message"])
	cfg := out["data"].(map[string]any)
	assert.Equal(t, 2000.0, cfg["interval_ms"])
	assert.Equal(t, true, cfg["is_running"])

	// 配置行与引擎状态可以不一致
	assert.False(t, api.engine.IsRunning())
}

func TestSensorLogRoutes(t *testing.T) {
	api := setupAPI(t)
	bedroomID := api.createBedroom(t, "Master Bedroom")
	sensorID := api.createSensor(t, bedroomID, "Temp 1")
	emptySensorID := api.createSensor(t, bedroomID, "Temp 2")

	// 停用第二个传感器，生成批次只写入一条
	rec, _ := api.do(t, http.MethodPatch, "/api/sensors/"+itoa(emptySensorID)+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := api.engine.GenerateReadings(context.Background())
	require.NoError(t, err)

	rec, out := api.do(t, http.MethodGet, "/api/sensor-logs/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, out["data"], 1)
	latest := out["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "temperature", latest["type"])
	assert.Equal(t, "Master Bedroom", latest["bedroom_name"])

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, out["minutes"])
	assert.Len(t, out["data"], 1)

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/recent?minutes=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Minutes must be between 1 and 1440", out["message"])

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/all?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"limit": 5.0, "offset": 0.0}, out["pagination"])

	rec, _ = api.do(t, http.MethodGet, "/api/sensor-logs/all?limit=5000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/sensor/"+itoa(sensorID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/sensor/"+itoa(sensorID)+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, out["data"].(map[string]any)["count"])

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/sensor/"+itoa(emptySensorID)+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, out["data"])
	assert.Contains(t, out, "data")
	assert.Equal(t, "No readings found for this sensor", out["message"])

	rec, _ = api.do(t, http.MethodGet, "/api/sensor-logs/sensor/"+itoa(sensorID)+"?start_time=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/bedroom/Master%20Bedroom", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 1)

	rec, out = api.do(t, http.MethodGet, "/api/sensor-logs/live", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, _ = api.do(t, http.MethodDelete, "/api/sensor-logs/purge?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = api.do(t, http.MethodDelete, "/api/sensor-logs/purge?days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, out["data"].(map[string]any)["deleted"])
}

func TestSensorLogExportRoute(t *testing.T) {
	api := setupAPI(t)
	bedroomID := api.createBedroom(t, "Master Bedroom")
	sensorID := api.createSensor(t, bedroomID, "Temp 1")
	_, err := api.engine.GenerateReadings(context.Background())
	require.NoError(t, err)

	rec, _ := api.do(t, http.MethodGet, "/api/sensor-logs/export?sensor_id="+itoa(sensorID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sensor_logs_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sensorLogSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, SensorLogExportHeader, rows[0])
	assert.Equal(t, "Master Bedroom", rows[1][2])
	assert.Equal(t, "Temp 1", rows[1][3])
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestLogger(zap.NewNop()), Recover(zap.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Internal server error", out["message"])
}

func TestRequestIDPassthrough(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), RequestLogger(zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}
