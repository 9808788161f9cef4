package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

// ContractHandler 租房合同 Handler
type ContractHandler struct {
	contracts *service.ContractService
	logger    *zap.Logger
}

func NewContractHandler(contracts *service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{contracts: contracts, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ContractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/rent/api/v1/contracts" && r.Method == http.MethodPost:
		h.Create(w, r)
	case r.URL.Path == "/rent/api/v1/contracts/landlord" && r.Method == http.MethodGet:
		h.ListLandlord(w, r)
	case r.URL.Path == "/rent/api/v1/contracts/tenant" && r.Method == http.MethodGet:
		h.ListTenant(w, r)
	case strings.HasPrefix(r.URL.Path, "/rent/api/v1/contracts/") && r.Method == http.MethodPost:
		h.action(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Create 租客提交租房申请
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HouseID string `json:"houseId"`
		Remark  string `json:"remark"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	contract, err := h.contracts.Create(r.Context(), service.CreateContractRequest{
		ListingID:     req.HouseID,
		TenantContact: callerContact(r),
		Remark:        req.Remark,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(contract))
}

// ListLandlord 房东侧合同列表，?status= 可选过滤
func (h *ContractHandler) ListLandlord(w http.ResponseWriter, r *http.Request) {
	views, err := h.contracts.ListByLandlord(r.Context(), callerContact(r), r.URL.Query().Get("status"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// ListTenant 租客侧在租合同
func (h *ContractHandler) ListTenant(w http.ResponseWriter, r *http.Request) {
	views, err := h.contracts.ListByTenantActive(r.Context(), callerContact(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(views))
}

// action POST /rent/api/v1/contracts/{id}/{confirm|quit|quit/confirm|quit/reject}
func (h *ContractHandler) action(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/rent/api/v1/contracts/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	contact := callerContact(r)
	var err error
	switch action {
	case "confirm":
		err = h.contracts.Confirm(r.Context(), id, contact)
	case "quit":
		var req struct {
			Reason string `json:"reason"`
		}
		if berr := readBodyJSON(r, 1<<16, &req); berr != nil {
			writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
			return
		}
		err = h.contracts.QuitApply(r.Context(), id, contact, req.Reason)
	case "quit/confirm":
		err = h.contracts.QuitConfirm(r.Context(), id, contact)
	case "quit/reject":
		err = h.contracts.QuitReject(r.Context(), id, contact)
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
