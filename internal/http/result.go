package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/service"
)

// Response 统一响应信封：{success, message?, data?, error?}
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok(data any) Response {
	return Response{Success: true, Data: data}
}

func OkMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// statusFor 服务层错误类别 → HTTP 状态码
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindState:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError 写出服务层错误；500 时附带底层错误信息并记录日志
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	se := service.AsError(err)
	status := statusFor(se.Kind)
	resp := Fail(se.Message)
	if status == http.StatusInternalServerError {
		if se.Err != nil {
			resp.Error = se.Err.Error()
		}
		logger.Error(se.Message, zap.Error(se.Err))
	}
	writeJSON(w, status, resp)
}
