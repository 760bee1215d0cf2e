package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/models"
	"github.com/prashant-rs/iot-monitoring/internal/service"
)

const sensorLogsPath = "/api/sensor-logs/"

// SensorLogHandler /api/sensor-logs
type SensorLogHandler struct {
	svc    *service.SensorLogService
	logger *zap.Logger
}

func NewSensorLogHandler(svc *service.SensorLogService, logger *zap.Logger) *SensorLogHandler {
	return &SensorLogHandler{svc: svc, logger: logger}
}

func (h *SensorLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 卧室名可能包含转义字符，按原始路径切分后再解码
	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.EscapedPath(), sensorLogsPath), "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "purge":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		h.purge(w, r)
		return
	case r.Method != http.MethodGet:
		methodNotAllowed(w)
		return
	}

	switch {
	case rest == "latest":
		h.latest(w, r)
	case rest == "recent":
		h.recent(w, r)
	case rest == "all":
		h.all(w, r)
	case rest == "export":
		h.export(w, r)
	case rest == "live":
		h.live(w, r)
	case parts[0] == "sensor" && (len(parts) == 2 || (len(parts) == 3 && parts[2] == "stats")):
		id, ok := parseID(parts[1])
		if !ok {
			badRequest(w, "Invalid sensor ID")
			return
		}
		if len(parts) == 3 {
			h.stats(w, r, id)
			return
		}
		h.bySensor(w, r, id)
	case parts[0] == "bedroom" && len(parts) == 2 && parts[1] != "":
		name, err := url.PathUnescape(parts[1])
		if err != nil {
			badRequest(w, "Invalid bedroom name")
			return
		}
		h.byBedroom(w, r, name)
	default:
		notFound(w)
	}
}

func (h *SensorLogHandler) latest(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Latest(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *SensorLogHandler) recent(w http.ResponseWriter, r *http.Request) {
	minutes, err := queryInt(r, "minutes", service.DefaultRecentMinutes)
	if err != nil {
		minutes = 0
	}
	list, err := h.svc.Recent(r.Context(), minutes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    nonNil(list),
		"minutes": minutes,
	})
}

func (h *SensorLogHandler) all(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", models.DefaultLimit)
	if err != nil {
		limit = 0
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		offset = -1
	}
	p := models.Pagination{Limit: limit, Offset: offset}
	list, err := h.svc.All(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       nonNil(list),
		"pagination": p,
	})
}

func (h *SensorLogHandler) bySensor(w http.ResponseWriter, r *http.Request, id int64) {
	tr, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, "Invalid time range: "+err.Error())
		return
	}
	list, err := h.svc.BySensor(r.Context(), id, tr)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *SensorLogHandler) stats(w http.ResponseWriter, r *http.Request, id int64) {
	tr, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, "Invalid time range: "+err.Error())
		return
	}
	stats, err := h.svc.Stats(r.Context(), id, tr)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if stats == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    nil,
			"message": "No readings found for this sensor",
		})
		return
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

func (h *SensorLogHandler) byBedroom(w http.ResponseWriter, r *http.Request, name string) {
	tr, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, "Invalid time range: "+err.Error())
		return
	}
	list, err := h.svc.ByBedroom(r.Context(), name, tr)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *SensorLogHandler) purge(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		days = 0
	}
	n, err := h.svc.Purge(r.Context(), days)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(
		fmt.Sprintf("Deleted %d readings older than %d days", n, days),
		map[string]any{"deleted": n, "days": days},
	))
}

func (h *SensorLogHandler) export(w http.ResponseWriter, r *http.Request) {
	tr, err := parseTimeRange(r)
	if err != nil {
		badRequest(w, "Invalid time range: "+err.Error())
		return
	}
	req := service.ExportRequest{Bedroom: strings.TrimSpace(r.URL.Query().Get("bedroom")), Range: tr}
	if v := r.URL.Query().Get("sensor_id"); v != "" {
		id, ok := parseID(v)
		if !ok {
			badRequest(w, "Invalid sensor ID")
			return
		}
		req.SensorID = id
	}

	list, err := h.svc.Export(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := GenerateSensorLogExport(list)
	if err != nil {
		h.logger.Error("Failed to generate readings export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: "Failed to export readings", Error: err.Error()})
		return
	}

	filename := fmt.Sprintf("sensor_logs_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *SensorLogHandler) live(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Live(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}
