package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/service"
)

const sensorsPath = "/api/sensors"

// SensorHandler /api/sensors
type SensorHandler struct {
	svc    *service.SensorService
	logger *zap.Logger
}

func NewSensorHandler(svc *service.SensorService, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{svc: svc, logger: logger}
}

// sensorPayload bedroom_id / min_value / max_value 接受数字或数字字符串
type sensorPayload struct {
	BedroomID any    `json:"bedroom_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Unit      string `json:"unit"`
	MinValue  any    `json:"min_value"`
	MaxValue  any    `json:"max_value"`
	IsActive  *bool  `json:"is_active"`
}

func (p sensorPayload) request() service.SensorRequest {
	return service.SensorRequest{
		BedroomID: int64FromAny(p.BedroomID),
		Name:      p.Name,
		Type:      p.Type,
		Unit:      p.Unit,
		MinValue:  p.MinValue,
		MaxValue:  p.MaxValue,
		IsActive:  p.IsActive,
	}
}

func (h *SensorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == sensorsPath {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	rest := strings.TrimPrefix(path, sensorsPath+"/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 2 && parts[0] == "bedroom":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		bedroomID, ok := parseID(parts[1])
		if !ok {
			badRequest(w, "Invalid bedroom ID")
			return
		}
		h.listByBedroom(w, r, bedroomID)

	case len(parts) == 2 && parts[1] == "toggle":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		id, ok := parseID(parts[0])
		if !ok {
			badRequest(w, "Invalid sensor ID")
			return
		}
		h.toggle(w, r, id)

	case len(parts) == 1 && parts[0] != "":
		id, ok := parseID(parts[0])
		if !ok {
			badRequest(w, "Invalid sensor ID")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			methodNotAllowed(w)
		}

	default:
		notFound(w)
	}
}

func (h *SensorHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *SensorHandler) listByBedroom(w http.ResponseWriter, r *http.Request, bedroomID int64) {
	list, err := h.svc.ListByBedroom(r.Context(), bedroomID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *SensorHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(s))
}

func (h *SensorHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload sensorPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	s, err := h.svc.Create(r.Context(), payload.request())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkMessage("Sensor created successfully", s))
}

func (h *SensorHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var payload sensorPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	s, err := h.svc.Update(r.Context(), id, payload.request())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Sensor updated successfully", s))
}

func (h *SensorHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Sensor deleted successfully", nil))
}

func (h *SensorHandler) toggle(w http.ResponseWriter, r *http.Request, id int64) {
	s, msg, err := h.svc.ToggleActive(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(msg, s))
}
