package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/lcyksp/Harmony-Rental/internal/service"
)

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

func parseInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &i
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

// callerContact 取已由网关校验过的用户联系方式（手机号/邮箱）
// 网关放在 X-User-Contact 头；联调时也接受 ?contact=
func callerContact(r *http.Request) string {
	if v := r.Header.Get("X-User-Contact"); v != "" {
		return v
	}
	return r.URL.Query().Get("contact")
}

// callerIdentity 正式身份 + 登录前的临时会话 ID（足迹合并用）
func callerIdentity(r *http.Request) service.Identity {
	id := service.Identity{Contact: callerContact(r)}
	if v := r.Header.Get("X-Session-Id"); v != "" {
		id.LegacySessionID = v
	} else {
		id.LegacySessionID = r.URL.Query().Get("sessionId")
	}
	return id
}
