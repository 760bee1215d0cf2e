package httpapi

import (
	"net/http"
	"time"
)

const apiVersion = "1.0.0"

// SystemHandler 根路径横幅与健康检查
type SystemHandler struct {
	startedAt time.Time
	now       func() time.Time
}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{startedAt: time.Now(), now: time.Now}
}

// Root 只响应 "/"，其余未匹配路由返回 404
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "IoT Monitoring System API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"bedrooms":   "/api/bedrooms",
			"sensors":    "/api/sensors",
			"sensorLogs": "/api/sensor-logs",
			"simulation": "/api/simulation",
		},
	})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	now := h.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"uptime":    now.Sub(h.startedAt).Seconds(),
	})
}
