package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/birdsong/internal/recording"
)

// ProxyFetcher は録音APIの中継に必要なインターフェース。recording.Proxyが実装する。
type ProxyFetcher interface {
	Fetch(ctx context.Context, target string) (*recording.Payload, error)
}

// ProxyHandler は録音APIへのCORSプロキシ。
// GET /proxy/{上流URL} の形式で、上流URLをそのままパスに連結して呼び出す。
type ProxyHandler struct {
	fetcher ProxyFetcher
}

// NewProxyHandler はProxyHandlerを生成する。
func NewProxyHandler(fetcher ProxyFetcher) *ProxyHandler {
	return &ProxyHandler{fetcher: fetcher}
}

// Fetch は上流レスポンスをステータスコードとContent-Typeごと中継する。
// GET /proxy/*
func (h *ProxyHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	target := proxyTarget(chi.URLParam(r, "*"), r.URL.RawQuery)

	payload, err := h.fetcher.Fetch(r.Context(), target)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(payload.StatusCode)
	w.Write(payload.Body)
}

// proxyTarget はワイルドカード部分から上流URLを復元する。
// パスの正規化で "https://" が "https:/" に縮められている場合は元に戻す。
func proxyTarget(path, rawQuery string) string {
	for _, scheme := range []string{"https:/", "http:/"} {
		if strings.HasPrefix(path, scheme) && !strings.HasPrefix(path, scheme+"/") {
			path = scheme + "/" + strings.TrimPrefix(path, scheme)
			break
		}
	}
	if rawQuery != "" {
		path += "?" + rawQuery
	}
	return path
}
