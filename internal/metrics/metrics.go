// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// プロキシ、認証サービス、クリーンアップジョブ、ロギングミドルウェアから利用する。
type MetricsCollector interface {
	RecordUpstreamSuccess(host string)
	RecordUpstreamFailure(host string, reason string)
	RecordUpstreamLatency(duration time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordLogin(success bool)
	RecordRegistration()
	RecordCleanupDeleted(kind string, count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamSuccess *prometheus.CounterVec
	upstreamFail    *prometheus.CounterVec
	upstreamLatency prometheus.Histogram
	httpStatus      *prometheus.CounterVec
	logins          *prometheus.CounterVec
	registrations   prometheus.Counter
	cleanupDeleted  *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_upstream_success_total",
			Help: "録音API呼び出し成功の合計数",
		}, []string{"host"}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_upstream_fail_total",
			Help: "録音API呼び出し失敗の合計数",
		}, []string{"host", "reason"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdsong_upstream_latency_seconds",
			Help:    "録音API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_login_total",
			Help: "ログイン試行の合計数",
		}, []string{"result"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birdsong_registration_total",
			Help: "ユーザー登録の合計数",
		}),
		cleanupDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birdsong_cleanup_deleted_total",
			Help: "クリーンアップで削除された行の合計数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.upstreamSuccess,
		c.upstreamFail,
		c.upstreamLatency,
		c.httpStatus,
		c.logins,
		c.registrations,
		c.cleanupDeleted,
	)

	return c
}

// RecordUpstreamSuccess は録音API呼び出しの成功を記録する。
func (c *Collector) RecordUpstreamSuccess(host string) {
	c.upstreamSuccess.WithLabelValues(host).Inc()
}

// RecordUpstreamFailure は録音API呼び出しの失敗を記録する。
func (c *Collector) RecordUpstreamFailure(host string, reason string) {
	c.upstreamFail.WithLabelValues(host, reason).Inc()
}

// RecordUpstreamLatency は録音API呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordCleanupDeleted はクリーンアップで削除した行数を記録する。
func (c *Collector) RecordCleanupDeleted(kind string, count int64) {
	c.cleanupDeleted.WithLabelValues(kind).Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// NewServer はワーカー用に/metricsのみを提供するHTTPサーバーを生成する。
func NewServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           SetupMetricsRoute(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

var _ MetricsCollector = (*Collector)(nil)
