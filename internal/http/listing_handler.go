package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

// ListingHandler 房源管理 Handler
type ListingHandler struct {
	listings *service.ListingService
	logger   *zap.Logger
}

func NewListingHandler(listings *service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ListingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch {
	case r.URL.Path == "/rent/api/v1/houses" && r.Method == http.MethodGet:
		h.QueryListings(w, r)
	case r.URL.Path == "/rent/api/v1/houses" && r.Method == http.MethodPost:
		h.Publish(w, r)
	case r.URL.Path == "/rent/api/v1/houses/my" && r.Method == http.MethodGet:
		h.ListMine(w, r)
	case r.URL.Path == "/rent/api/v1/houses/my/published" && r.Method == http.MethodGet:
		h.ListMinePublished(w, r)
	case r.URL.Path == "/rent/api/v1/houses/nearby" && r.Method == http.MethodGet:
		h.Nearby(w, r)
	case r.URL.Path == "/rent/api/v1/houses/export" && r.Method == http.MethodGet:
		h.Export(w, r)
	case strings.HasPrefix(r.URL.Path, "/rent/api/v1/houses/"):
		h.byID(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ListingHandler) byID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/rent/api/v1/houses/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case action == "" && r.Method == http.MethodGet:
		h.Get(w, r, id)
	case action == "" && r.Method == http.MethodPut:
		h.Update(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.Delete(w, r, id)
	case action == "status" && r.Method == http.MethodPost:
		h.SetStatus(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Publish 发布房源：body 即房源文档 JSON
func (h *ListingHandler) Publish(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, err)
		return
	}
	id, err := h.listings.Publish(r.Context(), body)
	if err != nil {
		h.logger.Error("Publish failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	listing, err := h.listings.Get(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(listing.Document))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.listings.Update(r.Context(), id, body); err != nil {
		h.logger.Error("Update failed", zap.String("id", id), zap.Error(err))
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func (h *ListingHandler) SetStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	if err := h.listings.SetStatus(r.Context(), id, req.Status); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// Delete 下架并删除房源，预约/合同级联清除
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.listings.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

func queryRequest(r *http.Request) service.QueryListingsRequest {
	q := r.URL.Query()
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 50)
	if page <= 0 {
		page = 1
	}
	return service.QueryListingsRequest{
		ProvinceCode: q.Get("provinceCode"),
		CityCode:     q.Get("cityCode"),
		DistrictCode: q.Get("districtCode"),
		MinPrice:     parseInt64Ptr(q.Get("minPrice")),
		MaxPrice:     parseInt64Ptr(q.Get("maxPrice")),
		PaymentTerm:  q.Get("payment"),
		Keyword:      q.Get("keyword"),
		Status:       q.Get("status"),
		Offset:       (page - 1) * size,
		Limit:        size,
	}
}

// QueryListings 条件分页查询（默认只看在架）
func (h *ListingHandler) QueryListings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listings.Query(r.Context(), queryRequest(r))
	if err != nil {
		h.logger.Error("QueryListings failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	docs := make([]any, 0, len(resp.Items))
	for _, item := range resp.Items {
		docs = append(docs, item.Document)
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": docs,
		"total": resp.Total,
	}))
}

// ListMine 我发布的全部房源（含下架）
func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	contact := callerContact(r)
	items, err := h.listings.ListByOwner(r.Context(), contact)
	if err != nil {
		writeErr(w, err)
		return
	}
	docs := make([]any, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.Document)
	}
	writeJSON(w, http.StatusOK, Ok(docs))
}

// ListMinePublished 我发布的在架房源（紧凑行）
func (h *ListingHandler) ListMinePublished(w http.ResponseWriter, r *http.Request) {
	contact := callerContact(r)
	items, err := h.listings.ListPublishedByOwner(r.Context(), contact)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Nearby 附近房源（按区域精度优先匹配）
func (h *ListingHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseInt(q.Get("limit"), 8)
	items, err := h.listings.Nearby(r.Context(), q.Get("provinceCode"), q.Get("cityCode"), q.Get("districtCode"), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Export 导出房源清单 Excel（后台报表）
func (h *ListingHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.listings.ExportExcel(r.Context(), queryRequest(r))
	if err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		writeErr(w, err)
		return
	}
	filename := fmt.Sprintf("listings_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(data)
}
