package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/birdsong/internal/model"
)

const favoriteColumns = `id, user_id, en, cnt, loc, time, url_sound, created_at`

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Create はお気に入りを作成する。
// (user_id, url_sound)が既に存在する場合は挿入せず、既存の行を返す。
func (r *PostgresFavoriteRepo) Create(ctx context.Context, f *model.AudioFavorite) (*model.AudioFavorite, error) {
	saved := &model.AudioFavorite{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO audio_favorites (`+favoriteColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, url_sound) DO UPDATE SET url_sound = EXCLUDED.url_sound
		 RETURNING `+favoriteColumns,
		f.ID, f.UserID, f.En, f.Cnt, f.Loc, f.Time, f.URLSound, f.CreatedAt,
	).Scan(&saved.ID, &saved.UserID, &saved.En, &saved.Cnt, &saved.Loc, &saved.Time, &saved.URLSound, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio favorite: %w", err)
	}
	return saved, nil
}

// FindByID は指定IDのお気に入りを取得する。見つからない場合はnilを返す。
func (r *PostgresFavoriteRepo) FindByID(ctx context.Context, id string) (*model.AudioFavorite, error) {
	f := &model.AudioFavorite{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+favoriteColumns+` FROM audio_favorites WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.UserID, &f.En, &f.Cnt, &f.Loc, &f.Time, &f.URLSound, &f.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find audio favorite: %w", err)
	}
	return f, nil
}

// ListByUserID はユーザーのお気に入りを新しい順に返す。
func (r *PostgresFavoriteRepo) ListByUserID(ctx context.Context, userID string) ([]*model.AudioFavorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+favoriteColumns+` FROM audio_favorites
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audio favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*model.AudioFavorite
	for rows.Next() {
		f := &model.AudioFavorite{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.En, &f.Cnt, &f.Loc, &f.Time, &f.URLSound, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audio favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audio favorites: %w", err)
	}
	return favorites, nil
}

// Delete は指定IDのお気に入りを削除する。
func (r *PostgresFavoriteRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM audio_favorites WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete audio favorite: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
