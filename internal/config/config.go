package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config はAPIサーバー・ワーカー全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionMaxAge int

	// Email token
	ConfirmTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	// Proxy
	ProxyAllowedHosts []string
	UpstreamTimeout   time.Duration
	UpstreamMaxSize   int64
	UpstreamRate      float64

	// Rate Limit
	RateLimitGeneral int
	RateLimitAuth    int

	// Cleanup
	CleanupInterval time.Duration

	// Server
	ServerPort        string
	WorkerMetricsPort string // ワーカーの/metrics
	BaseURL           string

	// CORS
	CORSAllowedOrigin string
}

// ClientConfig はクライアント用サブコマンドの設定を保持する。
type ClientConfig struct {
	APIURL        string        // バックエンドAPI
	ProxyURL      string        // 録音APIの前に連結するプロキシ
	RecordingsURL string        // 録音一覧のURL
	TokenFile     string        // アクセストークンの保存先
	HTTPTimeout   time.Duration // 0は無制限
	UserAgent     string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.ConfirmTokenTTL = getEnvPositiveDuration("CONFIRM_TOKEN_TTL", 48*time.Hour)
	cfg.ResetTokenTTL = getEnvPositiveDuration("RESET_TOKEN_TTL", time.Hour)
	cfg.ProxyAllowedHosts = getEnvList("PROXY_ALLOWED_HOSTS", []string{"www.xeno-canto.org", "xeno-canto.org"})
	cfg.UpstreamTimeout = getEnvPositiveDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	cfg.UpstreamMaxSize = getEnvInt64("UPSTREAM_MAX_SIZE", 5242880)
	cfg.UpstreamRate = getEnvFloat("UPSTREAM_RATE", 1)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.CleanupInterval = getEnvPositiveDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.WorkerMetricsPort = getEnvString("WORKER_METRICS_PORT", "9090")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// LoadClient は環境変数からClientConfigを読み込む。
// 必須項目はなく、未設定の場合はローカルのAPIサーバーを指す。
func LoadClient() *ClientConfig {
	apiURL := strings.TrimRight(getEnvString("BIRDSONG_API_URL", "http://localhost:8080"), "/")
	return &ClientConfig{
		APIURL:        apiURL,
		ProxyURL:      getEnvString("BIRDSONG_PROXY_URL", apiURL+"/proxy/"),
		RecordingsURL: getEnvString("BIRDSONG_RECORDINGS_URL", ""),
		TokenFile:     getEnvString("BIRDSONG_TOKEN_FILE", defaultTokenFile()),
		HTTPTimeout:   getEnvDuration("BIRDSONG_HTTP_TIMEOUT", 30*time.Second),
		UserAgent:     getEnvString("BIRDSONG_USER_AGENT", "Birdsong/1.0"),
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "birdsong", "storage.json")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvPositiveDuration は0以下の値をデフォルト値に置き換える。
func getEnvPositiveDuration(key string, defaultVal time.Duration) time.Duration {
	if d := getEnvDuration(key, defaultVal); d > 0 {
		return d
	}
	return defaultVal
}

// getEnvList はカンマ区切りの環境変数を読み込む。空要素は無視する。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
