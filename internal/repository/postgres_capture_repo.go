package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/birdsong/internal/model"
)

const captureColumns = `id, user_id, en, cnt, loc, time, rmk, public, created_at`

// PostgresCaptureRepo はPostgreSQLを使用した観察記録リポジトリ。
type PostgresCaptureRepo struct {
	db *sql.DB
}

// NewPostgresCaptureRepo はPostgresCaptureRepoを生成する。
func NewPostgresCaptureRepo(db *sql.DB) *PostgresCaptureRepo {
	return &PostgresCaptureRepo{db: db}
}

// Create は観察記録を作成する。
func (r *PostgresCaptureRepo) Create(ctx context.Context, c *model.BirdCapture) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bird_captures (`+captureColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.UserID, c.En, c.Cnt, c.Loc, c.Time, c.Rmk, c.Public, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bird capture: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの観察記録を新しい順に返す。
func (r *PostgresCaptureRepo) ListByUserID(ctx context.Context, userID string) ([]*model.BirdCapture, error) {
	return r.list(ctx,
		`SELECT `+captureColumns+` FROM bird_captures
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
}

// ListPublic は公開設定の観察記録を新しい順に返す。
func (r *PostgresCaptureRepo) ListPublic(ctx context.Context) ([]*model.BirdCapture, error) {
	return r.list(ctx,
		`SELECT `+captureColumns+` FROM bird_captures
		 WHERE public = true
		 ORDER BY created_at DESC, id`,
	)
}

func (r *PostgresCaptureRepo) list(ctx context.Context, query string, args ...any) ([]*model.BirdCapture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bird captures: %w", err)
	}
	defer rows.Close()

	var captures []*model.BirdCapture
	for rows.Next() {
		c := &model.BirdCapture{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.En, &c.Cnt, &c.Loc, &c.Time, &c.Rmk, &c.Public, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bird capture: %w", err)
		}
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bird captures: %w", err)
	}
	return captures, nil
}

// compile-time interface check
var _ CaptureRepository = (*PostgresCaptureRepo)(nil)
