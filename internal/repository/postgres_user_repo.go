package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/birdsong/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

const userColumns = `id, email, first_name, last_name, bio, password_hash, is_active, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Email, user.FirstName, user.LastName, user.Bio,
		user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// List は全ユーザーを登録順に返す。
func (r *PostgresUserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// ResetPassword はパスワード再設定トークンを消費し、パスワードハッシュを更新して全セッションを削除する。
// 3つの更新は同一トランザクションで行い、途中で失敗した場合はトークンも未使用のまま残る。
// トークンが既に使用済みの場合は何も変更せずfalseを返す。
func (r *PostgresUserRepo) ResetPassword(ctx context.Context, userID, passwordHash, token string, usedAt time.Time) (bool, error) {
	consumed := false
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		// トークンを消費
		result, err := tx.ExecContext(ctx,
			`UPDATE email_tokens SET used_at = $3
			 WHERE token = $1 AND user_id = $2 AND used_at IS NULL`,
			token, userID, usedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to mark email token used: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		// パスワードを更新
		result, err = tx.ExecContext(ctx,
			`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
			userID, passwordHash,
		)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if n, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("failed to update password: user not found: %s", userID)
		}

		// 既存のセッションを失効
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}

		consumed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// Activate はユーザーを有効化する。
func (r *PostgresUserRepo) Activate(ctx context.Context, id string) error {
	return r.execOne(ctx, "activate user",
		`UPDATE users SET is_active = true, updated_at = now() WHERE id = $1`,
		id,
	)
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連データはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

// execOne は1行だけを対象とする更新を実行する。対象がない場合はエラーを返す。
func (r *PostgresUserRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("failed to %s: user not found: %v", op, args[0])
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	user := &model.User{}
	err := s.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Bio,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
