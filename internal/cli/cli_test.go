package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/common/database"
	"github.com/prashant-rs/iot-monitoring/internal/domain"
	httpapi "github.com/prashant-rs/iot-monitoring/internal/http"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
	"github.com/prashant-rs/iot-monitoring/internal/service"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
)

func setupServer(t *testing.T) (*httptest.Server, *repository.Repositories) {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.MigrateSQLite(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)

	logger := zap.NewNop()
	repos := repository.NewSQLiteRepositories(db)
	engine := simulation.NewEngine(repos.Sensors, repos.SensorLogs, repos.SimulationConfig, nil, logger)

	srv := httptest.NewServer(httpapi.NewAPIHandler(httpapi.Services{
		Bedrooms:   service.NewBedroomService(repos.Bedrooms, logger),
		Sensors:    service.NewSensorService(repos.Sensors, repos.Bedrooms, logger),
		SensorLogs: service.NewSensorLogService(repos.SensorLogs, nil, logger),
		Simulation: service.NewSimulationService(engine, repos.SimulationConfig, logger),
	}, logger))

	t.Cleanup(func() {
		srv.Close()
		_ = engine.Shutdown(context.Background())
		sqlDB.Close()
	})
	return srv, repos
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulationCommands(t *testing.T) {
	srv, _ := setupServer(t)

	out, err := run(t, srv, "simulation", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation is stopped (interval 60000ms, 60.0s)")

	out, err = run(t, srv, "simulation", "start", "--interval", "30000")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation started successfully")
	assert.Contains(t, out, "Interval: 30000ms")

	_, err = run(t, srv, "sim", "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Simulation is already running")

	out, err = run(t, srv, "simulation", "interval", "5000")
	require.NoError(t, err)
	assert.Contains(t, out, "Running: true")

	_, err = run(t, srv, "simulation", "interval", "500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Interval must be between")

	out, err = run(t, srv, "simulation", "stop")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation stopped successfully")

	out, err = run(t, srv, "simulation", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulation is stopped (interval 5000ms, 5.0s)")
}

func TestListCommands(t *testing.T) {
	srv, repos := setupServer(t)
	ctx := context.Background()

	out, err := run(t, srv, "bedroom", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No bedrooms found.")

	b, err := repos.Bedrooms.Create(ctx, "Master Bedroom", nil)
	require.NoError(t, err)
	s, err := repos.Sensors.Create(ctx, &domain.Sensor{
		BedroomID: b.ID, Name: "Temp 1", Type: domain.SensorTypeTemperature, Unit: "C", MinValue: 20, MaxValue: 25, IsActive: true,
	})
	require.NoError(t, err)
	_, err = repos.SensorLogs.BulkCreate(ctx, []domain.NewReading{{SensorID: s.ID, RoomName: b.Name, SensorName: s.Name, Value: 21.5}})
	require.NoError(t, err)

	out, err = run(t, srv, "bedroom", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Master Bedroom")

	out, err = run(t, srv, "sensors", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Temp 1")
	assert.Contains(t, out, "20.00-25.00 C")

	out, err = run(t, srv, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "21.50 C")
}

func TestIntervalArgValidation(t *testing.T) {
	srv, _ := setupServer(t)
	_, err := run(t, srv, "simulation", "interval", "fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interval")
}
