package recording

import (
	"errors"
	"fmt"
	"strings"
)

// sonoSeparator はソノグラム画像URLから録音ディレクトリ部分を切り出す区切り文字列。
const sonoSeparator = "ffts"

// ErrMalformedRecording は再生URLの導出に必要なフィールドが欠けている録音を表す。
var ErrMalformedRecording = errors.New("malformed recording")

// SoundURL は録音メタデータから再生可能な音声URLを導出する。
// sono["small"]を"ffts"で分割した先頭部分に、URLエンコードしたfile-nameを連結する。
func SoundURL(rec Recording) (string, error) {
	small, ok := rec.Sono["small"]
	if !ok || small == "" {
		return "", fmt.Errorf("%w: recording %q has no small sonogram", ErrMalformedRecording, rec.ID)
	}
	prefix, _, found := strings.Cut(small, sonoSeparator)
	if !found {
		return "", fmt.Errorf("%w: recording %q sonogram %q lacks %q", ErrMalformedRecording, rec.ID, small, sonoSeparator)
	}
	if rec.FileName == "" {
		return "", fmt.Errorf("%w: recording %q has no file name", ErrMalformedRecording, rec.ID)
	}
	return prefix + EncodeURI(rec.FileName), nil
}

// SoundURLs は録音一覧から同じ長さ・同じ順序の再生URL一覧を導出する。
// 1件でも導出できない録音があればエラーを返し、部分的な結果は返さない。
func SoundURLs(recs []Recording) ([]string, error) {
	urls := make([]string, len(recs))
	for i, rec := range recs {
		u, err := SoundURL(rec)
		if err != nil {
			return nil, fmt.Errorf("recording at index %d: %w", i, err)
		}
		urls[i] = u
	}
	return urls, nil
}

// uriReserved はEncodeURIがエスケープしない文字（英数字を除く）。
const uriReserved = ";,/?:@&=+$-_.!~*'()#"

// EncodeURI はECMAScriptのencodeURIと同じ規則で文字列をエンコードする。
// net/urlのPathEscape/QueryEscapeは保持する文字集合が異なるため自前で実装している。
func EncodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isURIUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(uriReserved, c) >= 0
}
