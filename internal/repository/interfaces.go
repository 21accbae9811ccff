// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/birdsong/internal/model"
)

// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在することを表す。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。大文字小文字は区別しない。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを登録順に返す。
	List(ctx context.Context) ([]*model.User, error)

	// ResetPassword はパスワード再設定トークンの消費、パスワードハッシュの更新、
	// 全セッションの削除を1つのトランザクションで行う。
	// トークンが既に使用済みの場合は何も変更せずfalseを返す。
	ResetPassword(ctx context.Context, userID, passwordHash, token string, usedAt time.Time) (bool, error)

	// Activate はユーザーを有効化する。
	Activate(ctx context.Context, id string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、email_tokens、bird_captures、audio_favoritesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired はnow時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// EmailTokenRepository はメールトークンの永続化インターフェース。
type EmailTokenRepository interface {
	// Create はトークンを作成する。
	Create(ctx context.Context, token *model.EmailToken) error

	// FindByToken はトークン文字列と用途で検索する。見つからない場合はnilを返す。
	// 期限切れ・使用済みの判定は呼び出し側で行う。
	FindByToken(ctx context.Context, token string, purpose model.TokenPurpose) (*model.EmailToken, error)

	// MarkUsed はトークンを使用済みにする。既に使用済みの場合はfalseを返す。
	MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error)

	// DeleteStale は期限切れまたは使用済みのトークンを削除し、削除件数を返す。
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

// CaptureRepository は野鳥観察記録の永続化インターフェース。
type CaptureRepository interface {
	// Create は観察記録を作成する。
	Create(ctx context.Context, capture *model.BirdCapture) error

	// ListByUserID はユーザーの観察記録を新しい順に返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.BirdCapture, error)

	// ListPublic は公開設定の観察記録を新しい順に返す。
	ListPublic(ctx context.Context) ([]*model.BirdCapture, error)
}

// FavoriteRepository はお気に入り録音の永続化インターフェース。
type FavoriteRepository interface {
	// Create はお気に入りを作成する。同じ録音URLが登録済みの場合は既存の行を返す。
	Create(ctx context.Context, favorite *model.AudioFavorite) (*model.AudioFavorite, error)

	// FindByID は指定IDのお気に入りを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AudioFavorite, error)

	// ListByUserID はユーザーのお気に入りを新しい順に返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.AudioFavorite, error)

	// Delete は指定IDのお気に入りを削除する。
	Delete(ctx context.Context, id string) error
}
