package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

// MailboxHandler 消息盒子 Handler
type MailboxHandler struct {
	mailbox *service.MailboxService
	logger  *zap.Logger
}

func NewMailboxHandler(mailbox *service.MailboxService, logger *zap.Logger) *MailboxHandler {
	return &MailboxHandler{mailbox: mailbox, logger: logger}
}

// ServeHTTP 实现 http.Handler 接口
func (h *MailboxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/rent/api/v1/messages" && r.Method == http.MethodGet:
		h.List(w, r)
	case r.URL.Path == "/rent/api/v1/messages" && r.Method == http.MethodPost:
		h.Post(w, r)
	case r.URL.Path == "/rent/api/v1/messages/unread-count" && r.Method == http.MethodGet:
		h.UnreadCount(w, r)
	case r.URL.Path == "/rent/api/v1/messages/read-all" && r.Method == http.MethodPost:
		h.MarkAllRead(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 收件箱，新的在前
func (h *MailboxHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.mailbox.List(r.Context(), callerContact(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Post 系统侧投递消息（运营通知等）
func (h *MailboxHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string `json:"recipient"`
		Kind      string `json:"kind"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		Payload   string `json:"payload"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	msg, err := h.mailbox.Post(r.Context(), req.Recipient, req.Kind, req.Title, req.Body, req.Payload)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(msg))
}

func (h *MailboxHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.mailbox.UnreadCount(r.Context(), callerContact(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"count": count}))
}

func (h *MailboxHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.mailbox.MarkAllRead(r.Context(), callerContact(r)); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
