package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/model"
)

// maxRequestBodySize はJSONリクエストボディの上限。
const maxRequestBodySize = 64 << 10

// msgResponse は処理結果メッセージのみを返すレスポンス。
type msgResponse struct {
	Msg string `json:"msg"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeMsg は{"msg": ...}形式のレスポンスを書き込む。
func writeMsg(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, msgResponse{Msg: msg})
}

// decodeJSON はリクエストボディをJSONとしてデコードする。
// 不正なボディの場合はVALIDATION_FAILEDのAPIErrorを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("request body is empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.NewValidationError("request body is too large")
		}
		return model.NewValidationError("invalid JSON body")
	}
	return nil
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeUnauthorized は未認証エラーを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeTokenInvalid, model.ErrCodeUserNotFound, model.ErrCodeFavoriteNotFound:
		return http.StatusNotFound
	case model.ErrCodeProxyForbidden:
		return http.StatusForbidden
	case model.ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isAPIErrorCode はerrが指定コードのAPIErrorかどうかを返す。
func isAPIErrorCode(err error, code string) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
