package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/recording"
)

func TestProxyTarget(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{"そのまま", "https://www.xeno-canto.org/api/2/recordings", "query=cnt:japan", "https://www.xeno-canto.org/api/2/recordings?query=cnt:japan"},
		{"スラッシュ縮約の復元", "https:/www.xeno-canto.org/api/2/recordings", "", "https://www.xeno-canto.org/api/2/recordings"},
		{"http", "http:/xeno-canto.org/x", "", "http://xeno-canto.org/x"},
		{"スキームなし", "www.xeno-canto.org/x", "", "www.xeno-canto.org/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proxyTarget(tt.path, tt.query); got != tt.want {
				t.Errorf("proxyTarget(%q, %q) = %q, want %q", tt.path, tt.query, got, tt.want)
			}
		})
	}
}

func newProxyRouter(fetcher ProxyFetcher) http.Handler {
	r := chi.NewRouter()
	r.Get("/proxy/*", NewProxyHandler(fetcher).Fetch)
	return r
}

func TestProxyHandler_RelaysUpstream(t *testing.T) {
	var gotTarget string
	router := newProxyRouter(&mockProxyFetcher{
		fetchFn: func(_ context.Context, target string) (*recording.Payload, error) {
			gotTarget = target
			return &recording.Payload{
				StatusCode:  http.StatusOK,
				ContentType: "application/json; charset=utf-8",
				Body:        []byte(`{"numRecordings":"1","recordings":[]}`),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/proxy/https://www.xeno-canto.org/api/2/recordings?query=cnt:spain", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTarget != "https://www.xeno-canto.org/api/2/recordings?query=cnt:spain" {
		t.Errorf("target = %q", gotTarget)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `{"numRecordings":"1","recordings":[]}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestProxyHandler_RelaysUpstreamStatus(t *testing.T) {
	router := newProxyRouter(&mockProxyFetcher{
		fetchFn: func(_ context.Context, _ string) (*recording.Payload, error) {
			return &recording.Payload{StatusCode: http.StatusServiceUnavailable, Body: []byte(`{"error":"busy"}`)}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/proxy/https://www.xeno-canto.org/api/2/recordings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestProxyHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"許可外", model.NewProxyForbiddenError("https://evil.example"), http.StatusForbidden},
		{"上流失敗", model.NewUpstreamFailedError("timeout"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProxyRouter(&mockProxyFetcher{
				fetchFn: func(_ context.Context, _ string) (*recording.Payload, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/proxy/https://evil.example/", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
