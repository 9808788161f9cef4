package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

// ReservationHandler 看房预约 Handler
type ReservationHandler struct {
	reservations *service.ReservationService
	logger       *zap.Logger
}

func NewReservationHandler(reservations *service.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReservationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/rent/api/v1/reservations" && r.Method == http.MethodPost:
		h.Create(w, r)
	case r.URL.Path == "/rent/api/v1/reservations/my" && r.Method == http.MethodGet:
		h.ListMine(w, r)
	case r.URL.Path == "/rent/api/v1/reservations/received" && r.Method == http.MethodGet:
		h.ListReceived(w, r)
	case strings.HasPrefix(r.URL.Path, "/rent/api/v1/reservations/") && r.Method == http.MethodPost:
		h.action(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Create 提交看房预约
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseID string `json:"houseId"`
		Date    string `json:"date"`
		Name    string `json:"name"`
		Note    string `json:"note"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	res, err := h.reservations.Create(r.Context(), service.CreateReservationRequest{
		ListingID:        req.HouseID,
		RequesterContact: callerContact(r),
		Date:             req.Date,
		DisplayName:      req.Name,
		Note:             req.Note,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// ListMine 我（租客）提交的预约
func (h *ReservationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	views, err := h.reservations.ListForRequester(r.Context(), callerContact(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// ListReceived 我（房东）收到的预约
func (h *ReservationHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	views, err := h.reservations.ListForOwner(r.Context(), callerContact(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// action POST /rent/api/v1/reservations/{id}/{accept|reject|cancel}
func (h *ReservationHandler) action(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/rent/api/v1/reservations/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	contact := callerContact(r)
	switch action {
	case "accept", "reject":
		err = h.reservations.Decide(r.Context(), id, contact, action)
	case "cancel":
		err = h.reservations.Cancel(r.Context(), id, contact)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
