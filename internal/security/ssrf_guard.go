// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuard は録音プロキシの上流リクエストが内部ネットワークへ向かうのを防ぐ。
// 許可リストによるホスト検証の後段として使用する。
type SSRFGuard struct {
	schemes []string
	ports   []int
}

var blockedPrefixes = mustParsePrefixes(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16", // クラウドメタデータ(169.254.169.254)を含む
	"0.0.0.0/8",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
)

func mustParsePrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		out = append(out, netip.MustParsePrefix(c))
	}
	return out
}

// NewSSRFGuard はhttp/httpsの80/443番ポートのみを許可するSSRFGuardを生成する。
func NewSSRFGuard() *SSRFGuard {
	return &SSRFGuard{
		schemes: []string{"http", "https"},
		ports:   []int{80, 443},
	}
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlがDialerのControlフックで接続先IPを検証するため、
// プライベートIPやループバックへの接続はDNS解決後でも拒否される。
func (g *SSRFGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(g.schemes...).
		SetAllowedPorts(g.ports...).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はDNS解決を伴わない静的な検証を行う。
// IPリテラルとlocalhostを拒否する。
func (g *SSRFGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !slices.Contains(g.schemes, scheme) {
		return fmt.Errorf("disallowed scheme: %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if slices.ContainsFunc(blockedPrefixes, func(p netip.Prefix) bool { return p.Contains(addr) }) {
			return fmt.Errorf("blocked IP address: %s", addr)
		}
	}

	return nil
}
