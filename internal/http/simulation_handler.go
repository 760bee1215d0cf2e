package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
	"github.com/prashant-rs/iot-monitoring/internal/service"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
)

const simulationPath = "/api/simulation/"

// SimulationHandler /api/simulation 控制接口
type SimulationHandler struct {
	svc    *service.SimulationService
	logger *zap.Logger
}

func NewSimulationHandler(svc *service.SimulationService, logger *zap.Logger) *SimulationHandler {
	return &SimulationHandler{svc: svc, logger: logger}
}

type intervalPayload struct {
	IntervalMs *int `json:"interval_ms"`
}

type configPayload struct {
	IntervalMs *int  `json:"interval_ms"`
	IsRunning  *bool `json:"is_running"`
}

func (h *SimulationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, simulationPath), "/")

	switch action {
	case "start":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.start(w, r)
	case "stop":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.stop(w, r)
	case "restart":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.restart(w, r)
	case "interval":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.updateInterval(w, r)
	case "status":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.status(w, r)
	case "config":
		switch r.Method {
		case http.MethodGet:
			h.getConfig(w, r)
		case http.MethodPut:
			h.updateConfig(w, r)
		default:
			methodNotAllowed(w)
		}
	default:
		notFound(w)
	}
}

func (h *SimulationHandler) start(w http.ResponseWriter, r *http.Request) {
	var payload intervalPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	res, err := h.svc.Start(r.Context(), payload.IntervalMs)
	h.writeResult(w, res, err, false)
}

func (h *SimulationHandler) stop(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Stop(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: res.Message})
}

func (h *SimulationHandler) restart(w http.ResponseWriter, r *http.Request) {
	var payload intervalPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	res, err := h.svc.Restart(r.Context(), payload.IntervalMs)
	h.writeResult(w, res, err, false)
}

func (h *SimulationHandler) updateInterval(w http.ResponseWriter, r *http.Request) {
	var payload intervalPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	res, err := h.svc.UpdateInterval(r.Context(), payload.IntervalMs)
	h.writeResult(w, res, err, true)
}

// writeResult start/restart 返回 interval_ms；interval 额外返回 is_running
func (h *SimulationHandler) writeResult(w http.ResponseWriter, res simulation.Result, err error, withRunning bool) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body := map[string]any{
		"success":     true,
		"message":     res.Message,
		"interval_ms": res.IntervalMs,
	}
	if withRunning {
		body["is_running"] = res.IsRunning
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *SimulationHandler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(st))
}

func (h *SimulationHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfig(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(cfg))
}

func (h *SimulationHandler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var payload configPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	cfg, err := h.svc.UpdateConfig(r.Context(), domain.SimulationConfigUpdate{
		IntervalMs: payload.IntervalMs,
		IsRunning:  payload.IsRunning,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Configuration updated successfully", cfg))
}
