package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/birdsong/internal/auth"
	"github.com/hitoshi/birdsong/internal/capture"
	"github.com/hitoshi/birdsong/internal/config"
	"github.com/hitoshi/birdsong/internal/database"
	"github.com/hitoshi/birdsong/internal/favorite"
	"github.com/hitoshi/birdsong/internal/handler"
	"github.com/hitoshi/birdsong/internal/logger"
	"github.com/hitoshi/birdsong/internal/metrics"
	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/recording"
	"github.com/hitoshi/birdsong/internal/repository"
	"github.com/hitoshi/birdsong/internal/security"
	"github.com/hitoshi/birdsong/internal/user"
	"github.com/hitoshi/birdsong/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。wはログの出力先で、クライアント用サブコマンドの画面は標準出力に描画する。
func Run(w io.Writer, args []string) error {
	return run(os.Stdout, w, args)
}

func run(out, w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	if cmd.IsClient() {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runClient(ctx, cmd, args[1:], out, logger.Component(logger.Setup(w), logger.ComponentClient))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	tokenRepo := repository.NewPostgresEmailTokenRepo(db)
	captureRepo := repository.NewPostgresCaptureRepo(db)
	favoriteRepo := repository.NewPostgresFavoriteRepo(db)

	// 3. セキュリティ・メトリクスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// 4. ドメインサービスの初期化
	mailer := auth.NewLogMailer(logger.Component(nil, logger.ComponentOutbox))
	authService := auth.NewService(
		userRepo, sessionRepo, tokenRepo, mailer, sanitizer, collector,
		auth.ServiceConfig{
			SessionMaxAge:   cfg.SessionMaxAge,
			ConfirmTokenTTL: cfg.ConfirmTokenTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
			BaseURL:         cfg.BaseURL,
		},
	)
	userService := user.NewService(userRepo, sessionRepo)
	captureService := capture.NewService(captureRepo, sanitizer)
	favoriteService := favorite.NewService(favoriteRepo, sanitizer)

	proxyCfg := recording.DefaultProxyConfig()
	proxyCfg.AllowedHosts = cfg.ProxyAllowedHosts
	proxyCfg.MaxResponseSize = cfg.UpstreamMaxSize
	proxyCfg.RequestsPerSecond = cfg.UpstreamRate
	proxyCfg.Validator = ssrfGuard
	proxy := recording.NewProxy(ssrfGuard.NewSafeClient(cfg.UpstreamTimeout), slog.Default(), collector, proxyCfg)

	// 5. ルーターの構築
	// configのレート制限はreq/min単位
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		StatusMetrics:     collector,
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		HealthChecker:  db,
		MetricsHandler: metrics.SetupMetricsRoute(prometheus.DefaultGatherer),

		AuthService:     handler.NewAuthServiceAdapter(authService),
		UserService:     userService,
		CaptureService:  handler.NewCaptureServiceAdapter(captureService),
		FavoriteService: handler.NewFavoriteServiceAdapter(favoriteService),
		Proxy:           proxy,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、期限切れセッション・メールトークンのクリーンアップジョブを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. リポジトリとジョブの初期化
	sessionRepo := repository.NewPostgresSessionRepo(db)
	tokenRepo := repository.NewPostgresEmailTokenRepo(db)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, tokenRepo, collector, logger.Component(nil, logger.ComponentCleanup))

	// 3. 削除件数を公開するメトリクスサーバー
	metricsServer := metrics.NewServer(":"+cfg.WorkerMetricsPort, prometheus.DefaultGatherer)
	go func() {
		slog.Info("worker metrics server starting", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// クリーンアップジョブをメインgoroutineで実行（ブロッキング）
	cleanupJob.Start(ctx, cfg.CleanupInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("schema_version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
