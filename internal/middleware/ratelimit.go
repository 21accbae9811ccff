package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 認証済みAPIのユーザーごとのレート（req/sec）
	GeneralBurst    int           // 認証済みAPIのバーストサイズ
	AuthRate        rate.Limit    // ログイン・登録・パスワード再設定のIPごとのレート（req/sec）
	AuthBurst       int           // 認証系エンドポイントのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// 1分あたりのデフォルト上限。認証済みAPIはユーザー単位、認証系はIP単位。
const (
	defaultGeneralPerMinute = 120
	defaultAuthPerMinute    = 10
)

// NewRateLimiterConfig は1分あたりのリクエスト数からRateLimiterConfigを生成する。
// 0以下の値はデフォルト値に置き換える。
func NewRateLimiterConfig(generalPerMinute, authPerMinute int) RateLimiterConfig {
	if generalPerMinute <= 0 {
		generalPerMinute = defaultGeneralPerMinute
	}
	if authPerMinute <= 0 {
		authPerMinute = defaultAuthPerMinute
	}
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerMinute) / 60.0),
		GeneralBurst:    generalPerMinute,
		AuthRate:        rate.Limit(float64(authPerMinute) / 60.0),
		AuthBurst:       authPerMinute,
		CleanupInterval: 5 * time.Minute,
	}
}

// keyedLimiter はレートリミッターと最終アクセス時刻を保持する。
type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterSet はキー（ユーザーIDまたはクライアントIP）ごとのリミッター集合。
type limiterSet struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*keyedLimiter),
	}
}

// allow はキーのリミッターからトークンを1つ消費できるかを返す。
func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	kl, ok := s.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = kl
	}
	kl.lastAccess = now
	s.mu.Unlock()

	return kl.limiter.AllowN(now, 1)
}

// evict は最終アクセスからttlを超えたエントリを削除する。
func (s *limiterSet) evict(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, kl := range s.limiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(s.limiters, key)
		}
	}
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimiter は認証済みAPIのユーザー単位の制限と、
// 認証系エンドポイントのクライアントIP単位の制限を管理する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterSet
	auth    *limiterSet

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterSet(config.GeneralRate, config.GeneralBurst),
		auth:    newLimiterSet(config.AuthRate, config.AuthBurst),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware は認証済みAPIのレート制限ミドルウェアを返す。
// リクエストコンテキストにユーザーIDが含まれている必要がある（SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !rl.general.allow(userID, time.Now()) {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware は未認証で呼ばれるログイン・登録系エンドポイントのレート制限ミドルウェアを返す。
// クライアントIP単位で制限し、総当たり攻撃を抑止する。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !rl.auth.allow(ip, time.Now()) {
				writeRateLimitResponse(w, rl.config.AuthRate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", "auth"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されている認証済みAPIリミッターのエントリ数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.len()
}

// AuthLimiterCount は現在管理されている認証系リミッターのエントリ数を返す。
func (rl *RateLimiter) AuthLimiterCount() int {
	return rl.auth.len()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	now := time.Now()
	ttl := rl.config.CleanupInterval * 2
	rl.general.evict(now, ttl)
	rl.auth.evict(now, ttl)
}

// clientIP はRemoteAddrからポートを除いたアドレスを返す。
// リバースプロキシ配下ではchiのRealIPミドルウェアが先にRemoteAddrを書き換える。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	WriteTooManyRequests(w, time.Duration(math.Ceil(1.0/float64(r)))*time.Second)
}
