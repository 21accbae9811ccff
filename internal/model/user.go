// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、APIレスポンスには含めない。
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Bio          string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはクライアントにaccess_tokenとして返却される不透明トークン。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenPurpose はメールトークンの用途を表す。
type TokenPurpose string

const (
	// TokenPurposeConfirmEmail は登録時のメールアドレス確認用。
	TokenPurposeConfirmEmail TokenPurpose = "confirm_email"
	// TokenPurposeResetPassword はパスワード再設定用。
	TokenPurposeResetPassword TokenPurpose = "reset_password"
)

// EmailToken はメールで配送される一時トークンを表す。
type EmailToken struct {
	Token     string
	UserID    string
	Purpose   TokenPurpose
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable はトークンが未使用かつ有効期限内かを判定する。
func (t *EmailToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
