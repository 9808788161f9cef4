package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

// FootprintHandler 浏览足迹 Handler
type FootprintHandler struct {
	footprints *service.FootprintService
	logger     *zap.Logger
}

func NewFootprintHandler(footprints *service.FootprintService, logger *zap.Logger) *FootprintHandler {
	return &FootprintHandler{footprints: footprints, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *FootprintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/rent/api/v1/footprints" && r.Method == http.MethodGet:
		h.List(w, r)
	case r.URL.Path == "/rent/api/v1/footprints" && r.Method == http.MethodPost:
		h.Record(w, r)
	case r.URL.Path == "/rent/api/v1/footprints" && r.Method == http.MethodDelete:
		h.Clear(w, r)
	case strings.HasPrefix(r.URL.Path, "/rent/api/v1/footprints/") && r.Method == http.MethodDelete:
		h.Remove(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Record 记录一次浏览（重复浏览只刷新时间）
func (h *FootprintHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseID string `json:"houseId"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil || req.HouseID == "" {
		writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	if err := h.footprints.RecordView(r.Context(), callerIdentity(r), req.HouseID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// List 最近浏览，新的在前
func (h *FootprintHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	items, err := h.footprints.List(r.Context(), callerIdentity(r), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (h *FootprintHandler) Remove(w http.ResponseWriter, r *http.Request) {
	houseID := strings.TrimPrefix(r.URL.Path, "/rent/api/v1/footprints/")
	if houseID == "" || strings.Contains(houseID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := h.footprints.Remove(r.Context(), callerIdentity(r), houseID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *FootprintHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.footprints.Clear(r.Context(), callerIdentity(r)); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
