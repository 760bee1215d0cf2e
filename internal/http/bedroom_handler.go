package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/service"
)

const bedroomsPath = "/api/bedrooms"

// BedroomHandler /api/bedrooms
type BedroomHandler struct {
	svc    *service.BedroomService
	logger *zap.Logger
}

func NewBedroomHandler(svc *service.BedroomService, logger *zap.Logger) *BedroomHandler {
	return &BedroomHandler{svc: svc, logger: logger}
}

type bedroomPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *BedroomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == bedroomsPath {
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

	idStr := strings.TrimPrefix(path, bedroomsPath+"/")
	if idStr == "" || strings.Contains(idStr, "/") {
		notFound(w)
		return
	}
	id, ok := parseID(idStr)
	if !ok {
		badRequest(w, "Invalid bedroom ID")
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
}

func (h *BedroomHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(nonNil(list)))
}

func (h *BedroomHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(b))
}

func (h *BedroomHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload bedroomPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	b, err := h.svc.Create(r.Context(), service.BedroomRequest{Name: payload.Name, Description: payload.Description})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkMessage("Bedroom created successfully", b))
}

func (h *BedroomHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var payload bedroomPayload
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	b, err := h.svc.Update(r.Context(), id, service.BedroomRequest{Name: payload.Name, Description: payload.Description})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Bedroom updated successfully", b))
}

func (h *BedroomHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Bedroom deleted successfully", nil))
}
