package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/birdsong/internal/model"
)

// --- GET /users, GET /user/{id} ---

func TestUserHandler_List(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		listFn: func(_ context.Context) ([]*model.User, error) {
			return []*model.User{
				{ID: "u1", Email: "a@example.com", PasswordHash: "hash"},
				{ID: "u2", Email: "b@example.com", PasswordHash: "hash"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp []userResponse
	decodeBody(t, w, &resp)
	if len(resp) != 2 || resp[0].ID != "u1" || resp[1].ID != "u2" {
		t.Errorf("response = %+v", resp)
	}
}

func TestUserHandler_Get(t *testing.T) {
	h := NewUserHandler(&mockUserService{
		getFn: func(_ context.Context, id string) (*model.User, error) {
			if id == "u1" {
				return &model.User{ID: id, Email: "a@example.com"}, nil
			}
			return nil, model.NewUserNotFoundError()
		},
	})
	r := chi.NewRouter()
	r.Get("/user/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/user/u1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/user/u9", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing user status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- DELETE /api/users/me テスト ---

func TestUserHandler_Withdraw_Success(t *testing.T) {
	withdrawCalled := false
	svc := &mockUserService{
		withdrawFn: func(ctx context.Context, userID string) error {
			withdrawCalled = true
			if userID != "user-123" {
				t.Errorf("userID = %q, want %q", userID, "user-123")
			}
			return nil
		},
	}

	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = withUserID(req, "user-123")
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !withdrawCalled {
		t.Error("expected Withdraw to be called")
	}
}

func TestUserHandler_Withdraw_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	// ユーザーIDを注入しない
	w := httptest.NewRecorder()

	h.Withdraw(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserHandler_Withdraw_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ユーザー不在", model.NewUserNotFoundError(), http.StatusNotFound},
		{"内部エラー", errors.New("db error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&mockUserService{
				withdrawFn: func(_ context.Context, _ string) error { return tt.err },
			})

			req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/users/me", nil), "user-123")
			w := httptest.NewRecorder()
			h.Withdraw(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
