package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力の自由記述欄（備考、場所、自己紹介、氏名）から
// HTMLを取り除き、プレーンテキストにする。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer は全タグを除去するStrictPolicyでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去し、エンティティを元の文字に戻して前後の空白を取り除く。
// エンティティで二重に符号化されたタグも除去されるよう、結果が変わらなくなるまで繰り返す。
func (s *TextSanitizer) Sanitize(text string) string {
	out := text
	for range 3 {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
