package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
	return r
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRentRoutes 注册租房各业务路由
func (r *Router) RegisterRentRoutes(
	listings *ListingHandler,
	reservations *ReservationHandler,
	contracts *ContractHandler,
	mailbox *MailboxHandler,
	footprints *FootprintHandler,
) {
	// houses
	r.HandleHandler("/rent/api/v1/houses", listings)
	r.HandleHandler("/rent/api/v1/houses/", listings)

	// reservations
	r.HandleHandler("/rent/api/v1/reservations", reservations)
	r.HandleHandler("/rent/api/v1/reservations/", reservations)

	// contracts
	r.HandleHandler("/rent/api/v1/contracts", contracts)
	r.HandleHandler("/rent/api/v1/contracts/", contracts)

	// messages
	r.HandleHandler("/rent/api/v1/messages", mailbox)
	r.HandleHandler("/rent/api/v1/messages/", mailbox)

	// footprints
	r.HandleHandler("/rent/api/v1/footprints", footprints)
	r.HandleHandler("/rent/api/v1/footprints/", footprints)
}
