// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in registerInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, token string) (*model.User, error)
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
// クライアントによってusernameまたはemailでメールアドレスが送られる。
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Bio         string `json:"bio"`
}

// registerRequest はユーザー登録リクエストのボディ。
// firstname/first_nameの両方の表記を受け付ける。is_activeは無視する。
type registerRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
	IsActive  *bool  `json:"is_active"`
}

// registerInput はサービス層に渡す登録入力。
type registerInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Bio       string
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

type confirmEmailResponse struct {
	Msg   string `json:"msg"`
	Email string `json:"email"`
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		writeMsg(w, http.StatusUnauthorized, "Bad email or password")
		return
	}

	session, user, err := h.service.Login(r.Context(), email, req.Password)
	if err != nil {
		if isAPIErrorCode(err, model.ErrCodeInvalidCredentials) {
			writeMsg(w, http.StatusUnauthorized, "Bad email or password")
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Bio:         user.Bio,
	})
}

// Register はユーザーを登録する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	in := registerInput{
		FirstName: firstNonEmpty(req.FirstName, req.Firstname),
		LastName:  firstNonEmpty(req.LastName, req.Lastname),
		Email:     req.Email,
		Password:  req.Password,
		Bio:       req.Bio,
	}

	if _, err := h.service.Register(r.Context(), in); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMsg(w, http.StatusOK, "Registration successfully done. Check your e-mail to confirm the account.")
}

// ForgotPassword はパスワード再設定メールを送信する。
// アカウントの有無にかかわらず同じレスポンスを返す。
// POST /forgot_password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("email is required"))
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMsg(w, http.StatusOK, "If the address is registered, a reset link has been sent.")
}

// ConfirmEmail はメール確認トークンを検証しアカウントを有効化する。
// GET /confirm_email/{token}
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token, err := url.PathUnescape(chi.URLParam(r, "token"))
	if err != nil || token == "" {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTokenInvalidError())
		return
	}

	user, err := h.service.ConfirmEmail(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmEmailResponse{
		Msg:   "E-mail confirmed",
		Email: user.Email,
	})
}

// ResetPassword はトークンを消費して新しいパスワードを設定する。
// POST /reset_password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewTokenInvalidError())
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeMsg(w, http.StatusOK, "Password updated")
}

// Logout は現在のセッションを破棄する。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインユーザー情報を返す。
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), sessionID)
	if err != nil {
		slog.Warn("failed to get current user", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
