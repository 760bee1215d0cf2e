package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/service"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handlers 需要挂载的全部 handler
type Handlers struct {
	System     *SystemHandler
	Bedrooms   *BedroomHandler
	Sensors    *SensorHandler
	SensorLogs *SensorLogHandler
	Simulation *SimulationHandler
}

// RegisterRoutes 注册 /api 下的全部路由；"/" 兜底处理未知路由
func (r *Router) RegisterRoutes(h Handlers) {
	r.Handle("/", h.System.Root)
	r.Handle("/health", h.System.Health)

	r.HandleHandler("/api/bedrooms", h.Bedrooms)
	r.HandleHandler("/api/bedrooms/", h.Bedrooms)

	r.HandleHandler("/api/sensors", h.Sensors)
	r.HandleHandler("/api/sensors/", h.Sensors)

	r.HandleHandler("/api/sensor-logs/", h.SensorLogs)

	r.HandleHandler("/api/simulation/", h.Simulation)
}

// Services handler 依赖的服务
type Services struct {
	Bedrooms   *service.BedroomService
	Sensors    *service.SensorService
	SensorLogs *service.SensorLogService
	Simulation *service.SimulationService
}

// NewAPIHandler 组装路由和中间件（日志 → panic 恢复 → CORS）
func NewAPIHandler(s Services, logger *zap.Logger) http.Handler {
	r := NewRouter(logger)
	r.RegisterRoutes(Handlers{
		System:     NewSystemHandler(),
		Bedrooms:   NewBedroomHandler(s.Bedrooms, logger),
		Sensors:    NewSensorHandler(s.Sensors, logger),
		SensorLogs: NewSensorLogHandler(s.SensorLogs, logger),
		Simulation: NewSimulationHandler(s.Simulation, logger),
	})
	return Chain(r, RequestLogger(logger), Recover(logger), CORS())
}
