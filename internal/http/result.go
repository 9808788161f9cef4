package httpapi

import (
	"errors"
	"net/http"

	"github.com/lcyksp/Harmony-Rental/internal/domain"
)

// Result 与客户端约定保持一致
// - code: 200 成功；4xx/5xx 业务失败（HTTP 状态码恒为 200，前端只看 code）
// - data: any
// - message: string
type Result[T any] struct {
	Code    int    `json:"code"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

const (
	ResultSuccess = 200
	ResultError   = 500
)

func Ok[T any](data T) Result[T] {
	return Result[T]{Code: ResultSuccess, Data: data, Message: "ok"}
}

func Fail(code int, message string) Result[any] {
	return Result[any]{Code: code, Data: nil, Message: message}
}

// errCode 域错误分类 → 业务码
func errCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return ResultError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusOK, Fail(errCode(err), err.Error()))
}
