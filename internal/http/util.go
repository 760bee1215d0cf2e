package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// queryInt 查询参数缺省时返回 def；非整数返回 error
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// parseID 路径中的正整数 ID
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// int64FromAny JSON 数字或数字字符串 → int64；无法解析返回 0
func int64FromAny(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0
		}
		return int64(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unsupported time format")
}

// parseTimeRange start_time / end_time 查询参数，均可省略
func parseTimeRange(r *http.Request) (domain.TimeRange, error) {
	var tr domain.TimeRange
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("start_time")); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return tr, errors.New("invalid start_time")
		}
		tr.Start = &t
	}
	if v := strings.TrimSpace(q.Get("end_time")); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return tr, errors.New("invalid end_time")
		}
		tr.End = &t
	}
	return tr, nil
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, Fail("Method not allowed"))
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, Fail("Route not found"))
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Fail(message))
}

// nonNil 保证列表序列化为 [] 而不是 null
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
