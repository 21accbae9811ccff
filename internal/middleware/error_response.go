package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/birdsong/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// apiErrがnilの場合は500の内部エラーとして書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	if apiErr == nil {
		statusCode = http.StatusInternalServerError
		apiErr = model.NewInternalError()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
	if err != nil {
		slog.Warn("failed to write error response",
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()),
		)
	}
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// WriteTooManyRequests は429レスポンスを書き込む。
// Retry-Afterには切り上げた秒数(最小1)を設定する。
func WriteTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	sec := int(math.Ceil(retryAfter.Seconds()))
	if sec < 1 {
		sec = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(sec))
	WriteErrorResponse(w, http.StatusTooManyRequests, model.NewRateLimitedError())
}
