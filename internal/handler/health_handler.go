package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker はDB接続の疎通確認に必要なインターフェース。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthHandler はDBへのPingで稼働状態を返すハンドラーを生成する。
// GET /health
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
