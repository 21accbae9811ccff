package security

import "testing"

func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "Seen near the river", "Seen near the river"},
		{"タグを除去する", "<b>Bold</b> remark", "Bold remark"},
		{"scriptは中身ごと除去する", "<script>alert(1)</script>Hi", "Hi"},
		{"イベント属性付きタグを除去する", `<img src=x onerror="alert(1)">Quetzal`, "Quetzal"},
		{"アンパサンドを保持する", "Tom & Jerry", "Tom & Jerry"},
		{"不等号を保持する", "a < b", "a < b"},
		{"前後の空白を除去する", "  Monteverde  ", "Monteverde"},
		{"空文字列", "", ""},
		{"日本語", "<p>カワセミ</p>", "カワセミ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextSanitizer_EncodedTagsAreRemoved(t *testing.T) {
	s := NewTextSanitizer()

	got := s.Sanitize("&lt;b&gt;x&lt;/b&gt;")
	if got != "x" {
		t.Errorf("Sanitize = %q, want %q", got, "x")
	}
}

func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	inputs := []string{"<i>Toucan</i> & friends", "a < b", "Tom &amp; Jerry"}
	for _, in := range inputs {
		once := s.Sanitize(in)
		if twice := s.Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
