package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestStartSimulation(t *testing.T) {
	var gotBody map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/simulation/start", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Simulation started successfully",
			"interval_ms": 5000,
		})
	})

	res, err := c.StartSimulation(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, "Simulation started successfully", res.Message)
	assert.Equal(t, 5000, res.IntervalMs)
	assert.Nil(t, res.IsRunning)
	assert.Equal(t, 5000.0, gotBody["interval_ms"])
}

func TestStartSimulation_DefaultIntervalOmitsField(t *testing.T) {
	var gotBody map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "interval_ms": 60000})
	})

	res, err := c.StartSimulation(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 60000, res.IntervalMs)
	assert.NotContains(t, gotBody, "interval_ms")
}

func TestUpdateInterval_APIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Interval must be between 1000ms (1s) and 3600000ms (1hr)",
		})
	})

	_, err := c.UpdateInterval(context.Background(), 500)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Interval must be between 1000ms (1s) and 3600000ms (1hr)", apiErr.Message)
}

func TestUpdateInterval_RunningFlag(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "message": "Interval updated successfully", "interval_ms": 2000, "is_running": true,
		})
	})

	res, err := c.UpdateInterval(context.Background(), 2000)
	require.NoError(t, err)
	require.NotNil(t, res.IsRunning)
	assert.True(t, *res.IsRunning)
}

func TestSimulationStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/simulation/status", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"is_running": true, "interval_ms": 1500, "interval_seconds": 1.5},
		})
	})

	st, err := c.SimulationStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.IsRunning)
	assert.Equal(t, 1500, st.IntervalMs)
	assert.Equal(t, 1.5, st.IntervalSeconds)
}

func TestListBedroomsAndLatest(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/bedrooms":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": []map[string]any{
					{"id": 1, "name": "Master Bedroom", "sensor_count": 2, "active_sensors": 1},
				},
			})
		case "/api/sensor-logs/latest":
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data": []map[string]any{
					{"id": 9, "sensor_id": 1, "room_name": "Master Bedroom", "sensor_name": "Temp 1", "value": 22.5, "type": "temperature", "unit": "°C"},
				},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Route not found"})
		}
	})
	ctx := context.Background()

	bedrooms, err := c.ListBedrooms(ctx)
	require.NoError(t, err)
	require.Len(t, bedrooms, 1)
	assert.Equal(t, "Master Bedroom", bedrooms[0].Name)
	assert.Equal(t, 2, bedrooms[0].SensorCount)

	latest, err := c.LatestReadings(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 22.5, latest[0].Value)
	assert.Equal(t, "temperature", latest[0].Type)

	_, err = c.ListSensors(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Route not found", apiErr.Message)
}
