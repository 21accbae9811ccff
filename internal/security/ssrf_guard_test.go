package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSafeClient_Timeout(t *testing.T) {
	timeout := 5 * time.Second
	client := NewSSRFGuard().NewSafeClient(timeout)
	if client.Timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, client.Timeout)
	}
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport")
	}
}

// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClient_BlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewSSRFGuard().NewSafeClient(5 * time.Second)
	if _, err := client.Get(ts.URL); err == nil {
		t.Fatal("expected error for loopback address request, got nil")
	}
}

func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"録音API", "https://xeno-canto.org/api/2/recordings?query=cnt:%22costa%20rica%22", false},
		{"http", "http://www.xeno-canto.org/", false},
		{"公開IP", "https://8.8.8.8/", false},
		{"空文字列", "", true},
		{"ftpスキーム", "ftp://xeno-canto.org/file", true},
		{"fileスキーム", "file:///etc/passwd", true},
		{"ホストなし", "https:///path", true},
		{"localhost", "http://LOCALHOST:8080/", true},
		{"ループバック", "http://127.0.0.1/", true},
		{"プライベートIP 10/8", "http://10.1.2.3/", true},
		{"プライベートIP 172.16/12", "http://172.20.0.1/", true},
		{"プライベートIP 192.168/16", "http://192.168.1.1/", true},
		{"メタデータIP", "http://169.254.169.254/latest/meta-data/", true},
		{"ゼロアドレス", "http://0.0.0.0/", true},
		{"IPv6ループバック", "http://[::1]/", true},
		{"IPv4射影IPv6", "http://[::ffff:127.0.0.1]/", true},
		{"IPv6ユニークローカル", "http://[fd00::1]/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
