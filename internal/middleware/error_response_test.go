package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/birdsong/internal/model"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("エラーボディのデコードに失敗: %v", err)
	}
	return body
}

// 各ドメインエラーのコード・カテゴリ・対処方法がそのままボディに載ること。
func TestWriteErrorResponse_DomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		apiErr   *model.APIError
		category string
	}{
		{"登録済みメール", http.StatusConflict, model.NewEmailTakenError(), "auth"},
		{"無効なトークン", http.StatusNotFound, model.NewTokenInvalidError(), "auth"},
		{"プロキシ対象外", http.StatusForbidden, model.NewProxyForbiddenError("http://169.254.169.254/"), "validation"},
		{"お気に入りなし", http.StatusNotFound, model.NewFavoriteNotFoundError("fav-1"), "recording"},
		{"録音API失敗", http.StatusBadGateway, model.NewUpstreamFailedError("timeout"), "recording"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorResponse(w, tt.status, tt.apiErr)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			body := decodeErrorBody(t, w)
			if body.Code != tt.apiErr.Code {
				t.Errorf("code = %q, want %q", body.Code, tt.apiErr.Code)
			}
			if body.Category != tt.category {
				t.Errorf("category = %q, want %q", body.Category, tt.category)
			}
			if body.Message != tt.apiErr.Message || body.Action == "" {
				t.Errorf("message/action が不正: %+v", body)
			}
		})
	}
}

func TestWriteErrorResponse_NilErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorResponse(w, http.StatusBadRequest, nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInternal)
	}
}

// 内部エラーの詳細はレスポンスに含めない。
func TestWriteInternalServerError_HidesDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeInternal || body.Category != "system" {
		t.Errorf("body = %+v", body)
	}
	if body.Message != model.NewInternalError().Message {
		t.Errorf("message = %q", body.Message)
	}
}

func TestWriteTooManyRequests_RetryAfterRoundsUp(t *testing.T) {
	tests := []struct {
		retryAfter time.Duration
		want       string
	}{
		{0, "1"},
		{300 * time.Millisecond, "1"},
		{6 * time.Second, "6"},
		{6500 * time.Millisecond, "7"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		WriteTooManyRequests(w, tt.retryAfter)

		if w.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", w.Code)
		}
		if got := w.Header().Get("Retry-After"); got != tt.want {
			t.Errorf("Retry-After(%v) = %q, want %q", tt.retryAfter, got, tt.want)
		}
		if body := decodeErrorBody(t, w); body.Code != model.ErrCodeRateLimited {
			t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimited)
		}
	}
}
