// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, recording, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeFavoriteNotFound   = "FAVORITE_NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeProxyForbidden     = "PROXY_FORBIDDEN"
	ErrCodeUpstreamFailed     = "UPSTREAM_FAILED"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidCredentialsError はメールアドレスまたはパスワード不一致のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewEmailTakenError は登録済みメールアドレスでの再登録エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、パスワード再設定をお試しください。",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewTokenInvalidError はトークンが存在しない・期限切れ・使用済みの場合のエラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "リンクが無効か、有効期限が切れています。",
		Category: "auth",
		Action:   "もう一度パスワード再設定を申請してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewFavoriteNotFoundError はお気に入りが見つからない場合のエラーを生成する。
func NewFavoriteNotFoundError(favoriteID string) *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  fmt.Sprintf("指定されたお気に入りが見つかりません: %s", favoriteID),
		Category: "recording",
		Action:   "お気に入り一覧を再読み込みしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewProxyForbiddenError はプロキシ対象外のURLが指定された場合のエラーを生成する。
func NewProxyForbiddenError(target string) *APIError {
	return &APIError{
		Code:     ErrCodeProxyForbidden,
		Message:  fmt.Sprintf("プロキシが許可されていないURLです: %s", target),
		Category: "validation",
		Action:   "録音APIのURLを指定してください。",
	}
}

// NewUpstreamFailedError は録音APIの呼び出し失敗エラーを生成する。
func NewUpstreamFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailed,
		Message:  fmt.Sprintf("録音APIの取得に失敗しました: %s", reason),
		Category: "recording",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
