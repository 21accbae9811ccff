// Package client はバックエンドおよび録音APIを呼び出すHTTPクライアントを提供する。
// GET/POSTのJSONリクエストを発行し、通信失敗と非2xxレスポンスをエラーとして返す。
// リトライは行わず、1回の呼び出しにつき1回だけリクエストを送信する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// maxErrorBody はHTTPErrorに保持するレスポンスボディの最大長。
const maxErrorBody = 512

// HTTPError は非2xxレスポンスを表す。
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error はerrorインターフェースを実装する。
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Client はJSON APIを呼び出すHTTPクライアント。
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するhttp.Clientを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout はリクエスト全体のタイムアウトを設定する。0は無制限。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent はUser-Agentヘッダーを設定する。
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New はClientを生成する。
// ブラウザ同様にCookieを保持するため、publicsuffixリストを使うCookie Jarを設定する。
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{Jar: jar},
		userAgent:  "Birdsong/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetJSON はGETリクエストを送信し、レスポンスJSONをoutにデコードする。
// outがnilの場合はボディを読み捨てる。
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// PostJSON はinをJSONとしてPOSTし、レスポンスJSONをoutにデコードする。
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, bytes.NewReader(body), out)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, url, err)
	}
	return nil
}
