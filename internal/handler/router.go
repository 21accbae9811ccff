package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/birdsong/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusMetrics     middleware.StatusMetrics
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	AuthService     AuthServiceInterface
	UserService     UserServiceInterface
	CaptureService  CaptureServiceInterface
	FavoriteService FavoriteServiceInterface
	Proxy           ProxyFetcher
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Recovery → SecurityHeaders → CORS
//	  ├─ 認証ルート: RateLimit(Auth)
//	  └─ 保護ルート: Session → RateLimit(General)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusMetrics))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	captureHandler := NewCaptureHandler(deps.CaptureService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)
	proxyHandler := NewProxyHandler(deps.Proxy)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 録音APIのCORSプロキシ
	r.Get("/proxy/*", proxyHandler.Fetch)

	// アカウント操作（IP単位のレート制限）
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())

		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
		r.Post("/forgot_password", authHandler.ForgotPassword)
		r.Get("/confirm_email/{token}", authHandler.ConfirmEmail)
		r.Post("/reset_password", authHandler.ResetPassword)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// ユーザー
		r.Get("/users", userHandler.List)
		r.Get("/user/{id}", userHandler.Get)
		r.Delete("/api/users/me", userHandler.Withdraw)

		// 観察日誌
		r.Route("/bird_captures", func(r chi.Router) {
			r.Get("/", captureHandler.ListMine)
			r.Post("/", captureHandler.Create)
			r.Get("/public", captureHandler.ListPublic)
		})

		// お気に入り録音
		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.List)
			r.Post("/", favoriteHandler.Add)
			r.Delete("/{id}", favoriteHandler.Delete)
		})
	})

	return r
}
