// Package cleanup は期限切れの認証データを定期的に削除するジョブを提供する。
// 対象は期限切れのセッションと、期限切れまたは使用済みのメールトークン。
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// 削除対象の種別（メトリクスのラベル）
const (
	KindSessions    = "sessions"
	KindEmailTokens = "email_tokens"
)

// SessionPurger は期限切れセッションを削除する。repository.SessionRepositoryが実装する。
type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenPurger は不要になったメールトークンを削除する。repository.EmailTokenRepositoryが実装する。
type TokenPurger interface {
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

// Metrics は削除件数を記録する。metrics.Collectorが実装する。
type Metrics interface {
	RecordCleanupDeleted(kind string, count int64)
}

// Result は1回の実行で削除した件数。
type Result struct {
	Sessions    int64
	EmailTokens int64
}

// CleanupJob は期限切れデータの削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPurger
	tokens   TokenPurger
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewCleanupJob は新しいCleanupJobを生成する。metricsはnilでもよい。
func NewCleanupJob(sessions SessionPurger, tokens TokenPurger, metrics Metrics, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Run は期限切れのセッションとメールトークンを削除する。
// 片方が失敗してももう片方は実行し、両方のエラーをまとめて返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	now := j.now()

	var result Result
	var errs []error

	n, err := j.sessions.DeleteExpired(ctx, now)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("セッションの削除に失敗: %w", err))
	} else {
		result.Sessions = n
		j.record(KindSessions, n)
	}

	n, err = j.tokens.DeleteStale(ctx, now)
	if err != nil {
		j.logger.Error("メールトークンの削除に失敗しました", slog.String("error", err.Error()))
		errs = append(errs, fmt.Errorf("メールトークンの削除に失敗: %w", err))
	} else {
		result.EmailTokens = n
		j.record(KindEmailTokens, n)
	}

	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}

	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", result.Sessions),
		slog.Int64("deleted_email_tokens", result.EmailTokens),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return result, nil
}

// DefaultInterval はStartに0以下の間隔が渡された場合の実行間隔。
const DefaultInterval = 24 * time.Hour

// Start は起動直後に1回実行し、以降intervalごとに実行する。ctxがキャンセルされるまでブロックする。
// intervalが0以下の場合はDefaultIntervalを使う。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Warn("不正な実行間隔のためデフォルト値を使用します",
			slog.Duration("interval", interval),
			slog.Duration("default", DefaultInterval),
		)
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップジョブを開始しました", slog.Duration("interval", interval))

	j.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *CleanupJob) runLogged(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップジョブの実行に失敗しました", slog.String("error", err.Error()))
	}
}

func (j *CleanupJob) record(kind string, n int64) {
	if j.metrics != nil {
		j.metrics.RecordCleanupDeleted(kind, n)
	}
}
