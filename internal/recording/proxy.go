package recording

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/birdsong/internal/model"
)

// UpstreamMetrics はプロキシが記録する上流APIのメトリクス。
// metrics.Collectorが実装する。
type UpstreamMetrics interface {
	RecordUpstreamSuccess(host string)
	RecordUpstreamFailure(host string, reason string)
	RecordUpstreamLatency(duration time.Duration)
}

// URLValidator は許可リストの後段で中継先URLを検証する。security.SSRFGuardが実装する。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// ProxyConfig はプロキシの設定。
type ProxyConfig struct {
	AllowedHosts      []string // 中継を許可する上流ホスト
	MaxResponseSize   int64    // 上流レスポンスの最大サイズ（バイト）
	RequestsPerSecond float64  // 上流への最大リクエストレート
	Burst             int
	Validator         URLValidator // nilの場合は許可リストのみで判定する
}

// DefaultProxyConfig はxeno-cantoのみを中継するデフォルト設定を返す。
// xeno-cantoは1秒1リクエスト程度の利用を求めている。
func DefaultProxyConfig() ProxyConfig {
	return ProxyConfig{
		AllowedHosts:      []string{"www.xeno-canto.org", "xeno-canto.org"},
		MaxResponseSize:   5 << 20,
		RequestsPerSecond: 1,
		Burst:             1,
	}
}

// Payload は上流から取得したレスポンス。
// 上流のステータスコードはそのまま中継する。
type Payload struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Proxy は録音APIへのリクエストを中継する。
// ブラウザから直接呼べない外部APIのためのCORSプロキシとして動作する。
type Proxy struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    UpstreamMetrics
	limiter    *rate.Limiter
	allowed    map[string]bool
	validator  URLValidator
	maxSize    int64
}

// NewProxy はProxyを生成する。
// httpClientには本番ではSSRFガード付きクライアントを渡す。
func NewProxy(httpClient *http.Client, logger *slog.Logger, metrics UpstreamMetrics, cfg ProxyConfig) *Proxy {
	allowed := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		allowed[strings.ToLower(h)] = true
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Proxy{
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		allowed:    allowed,
		validator:  cfg.Validator,
		maxSize:    cfg.MaxResponseSize,
	}
}

// Fetch は許可リストに含まれるURLを取得する。
// 許可外のURLはmodel.APIError(PROXY_FORBIDDEN)、通信失敗はUPSTREAM_FAILEDを返す。
func (p *Proxy) Fetch(ctx context.Context, target string) (*Payload, error) {
	u, err := p.validateTarget(target)
	if err != nil {
		return nil, err
	}

	// 上流APIの利用制限を守るため、全リクエストで共有のリミッターを待つ
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("User-Agent", "Birdsong/1.0 (+recordings proxy)")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	p.metrics.RecordUpstreamLatency(time.Since(start))
	if err != nil {
		p.metrics.RecordUpstreamFailure(u.Host, "network")
		p.logger.Error("録音APIの呼び出しに失敗しました",
			slog.String("host", u.Host),
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamFailedError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxSize+1))
	if err != nil {
		p.metrics.RecordUpstreamFailure(u.Host, "read")
		return nil, model.NewUpstreamFailedError(err.Error())
	}
	if int64(len(body)) > p.maxSize {
		p.metrics.RecordUpstreamFailure(u.Host, "too_large")
		p.logger.Warn("録音APIのレスポンスが上限サイズを超えました",
			slog.String("host", u.Host),
			slog.Int64("max_size", p.maxSize),
		)
		return nil, model.NewUpstreamFailedError("response too large")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.metrics.RecordUpstreamSuccess(u.Host)
	} else {
		p.metrics.RecordUpstreamFailure(u.Host, fmt.Sprintf("status_%d", resp.StatusCode))
		p.logger.Warn("録音APIがエラーステータスを返しました",
			slog.String("host", u.Host),
			slog.Int("http_status", resp.StatusCode),
		)
	}

	return &Payload{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// validateTarget は中継先URLのスキームとホストを検証する。
func (p *Proxy) validateTarget(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, model.NewProxyForbiddenError(target)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, model.NewProxyForbiddenError(target)
	}
	if !p.allowed[strings.ToLower(u.Hostname())] {
		return nil, model.NewProxyForbiddenError(target)
	}
	if p.validator != nil {
		if err := p.validator.ValidateURL(u.String()); err != nil {
			p.logger.Warn("中継先URLが拒否されました",
				slog.String("host", u.Host),
				slog.String("error", err.Error()),
			)
			return nil, model.NewProxyForbiddenError(target)
		}
	}
	return u, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordUpstreamSuccess(string)         {}
func (noopMetrics) RecordUpstreamFailure(string, string) {}
func (noopMetrics) RecordUpstreamLatency(time.Duration)  {}
