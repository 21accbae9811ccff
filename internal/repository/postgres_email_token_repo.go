package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/birdsong/internal/model"
)

// PostgresEmailTokenRepo はPostgreSQLを使用したメールトークンリポジトリ。
type PostgresEmailTokenRepo struct {
	db *sql.DB
}

// NewPostgresEmailTokenRepo はPostgresEmailTokenRepoを生成する。
func NewPostgresEmailTokenRepo(db *sql.DB) *PostgresEmailTokenRepo {
	return &PostgresEmailTokenRepo{db: db}
}

// Create はトークンを作成する。
func (r *PostgresEmailTokenRepo) Create(ctx context.Context, token *model.EmailToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_tokens (token, user_id, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token, token.UserID, string(token.Purpose), token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email token: %w", err)
	}
	return nil
}

// FindByToken はトークン文字列と用途で検索する。見つからない場合はnilを返す。
func (r *PostgresEmailTokenRepo) FindByToken(ctx context.Context, token string, purpose model.TokenPurpose) (*model.EmailToken, error) {
	t := &model.EmailToken{}
	var p string
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, purpose, expires_at, used_at, created_at
		 FROM email_tokens
		 WHERE token = $1 AND purpose = $2`,
		token, string(purpose),
	).Scan(&t.Token, &t.UserID, &p, &t.ExpiresAt, &usedAt, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email token: %w", err)
	}

	t.Purpose = model.TokenPurpose(p)
	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return t, nil
}

// MarkUsed はトークンを使用済みにする。
// 未使用の行だけを更新するため、同時に2回消費されることはない。
func (r *PostgresEmailTokenRepo) MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE email_tokens SET used_at = $2 WHERE token = $1 AND used_at IS NULL`,
		token, usedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark email token used: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// DeleteStale は期限切れまたは使用済みのトークンを削除する。
func (r *PostgresEmailTokenRepo) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM email_tokens WHERE expires_at <= $1 OR used_at IS NOT NULL`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale email tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ EmailTokenRepository = (*PostgresEmailTokenRepo)(nil)
