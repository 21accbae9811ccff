// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/birdsong/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	userIDContextKey    = contextKey("user_id")
	sessionIDContextKey = contextKey("session_id")
	userIDSinkKey       = contextKey("user_id_sink")
)

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はAuthorizationヘッダーのBearerトークンをセッションIDとして検証するミドルウェアを返す。
// 認証済みユーザーIDとセッションIDをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			session, err := sessionFinder.FindByID(r.Context(), token)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if sink, ok := r.Context().Value(userIDSinkKey).(*string); ok {
				*sink = session.UserID
			}
			ctx := ContextWithUserID(r.Context(), session.UserID)
			ctx = ContextWithSessionID(ctx, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーがない場合や形式が異なる場合は空文字列を返す。
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// SessionIDFromContext はリクエストコンテキストからセッションIDを取得する。
func SessionIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || id == "" {
		return "", fmt.Errorf("session ID not found in context")
	}
	return id, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// withUserIDSink は外側のミドルウェアが認証済みユーザーIDを受け取るための格納先を注入する。
func withUserIDSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, userIDSinkKey, sink)
}

// ContextWithSessionID はコンテキストにセッションIDを注入する。
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}
