// Package favorite はお気に入り録音のドメインロジックを提供する。
package favorite

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/repository"
)

const (
	maxEnLength       = 255
	maxCntLength      = 120
	maxLocLength      = 255
	maxTimeLength     = 32
	maxURLSoundLength = 2048
)

// Sanitizer は自由記述欄のHTMLを除去する。
type Sanitizer interface {
	Sanitize(text string) string
}

// AddInput はお気に入り登録の入力。
type AddInput struct {
	En       string
	Cnt      string
	Loc      string
	Time     string
	URLSound string
}

// Service はお気に入りのサービス層。
type Service struct {
	repo      repository.FavoriteRepository
	sanitizer Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.FavoriteRepository, sanitizer Sanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// Add はお気に入りを登録する。同じ録音URLを再登録した場合は既存のお気に入りを返す。
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*model.AudioFavorite, error) {
	f := &model.AudioFavorite{
		ID:        uuid.New().String(),
		UserID:    userID,
		En:        s.sanitizer.Sanitize(in.En),
		Cnt:       s.sanitizer.Sanitize(in.Cnt),
		Loc:       s.sanitizer.Sanitize(in.Loc),
		Time:      s.sanitizer.Sanitize(in.Time),
		URLSound:  in.URLSound,
		CreatedAt: time.Now(),
	}
	if err := validate(f); err != nil {
		return nil, err
	}

	saved, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("お気に入りの登録に失敗しました: %w", err)
	}

	slog.Info("お気に入りを登録しました",
		slog.String("user_id", userID),
		slog.String("favorite_id", saved.ID),
	)
	return saved, nil
}

// List はユーザーのお気に入りを新しい順に返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.AudioFavorite, error) {
	favorites, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	if favorites == nil {
		favorites = []*model.AudioFavorite{}
	}
	return favorites, nil
}

// Remove はお気に入りを削除する。
// 他のユーザーのお気に入りは存在しないものとして扱う。
func (s *Service) Remove(ctx context.Context, userID, favoriteID string) error {
	if uuid.Validate(favoriteID) != nil {
		return model.NewFavoriteNotFoundError(favoriteID)
	}

	f, err := s.repo.FindByID(ctx, favoriteID)
	if err != nil {
		return fmt.Errorf("お気に入りの取得に失敗しました: %w", err)
	}
	if f == nil || f.UserID != userID {
		return model.NewFavoriteNotFoundError(favoriteID)
	}

	if err := s.repo.Delete(ctx, favoriteID); err != nil {
		return fmt.Errorf("お気に入りの削除に失敗しました: %w", err)
	}

	slog.Info("お気に入りを削除しました",
		slog.String("user_id", userID),
		slog.String("favorite_id", favoriteID),
	)
	return nil
}

func validate(f *model.AudioFavorite) error {
	if f.En == "" {
		return model.NewValidationError("en is required")
	}
	if f.URLSound == "" {
		return model.NewValidationError("url_sound is required")
	}
	if len(f.URLSound) > maxURLSoundLength {
		return model.NewValidationError("url_sound is too long")
	}
	u, err := url.Parse(f.URLSound)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.NewValidationError("url_sound must be an http(s) URL")
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"en", f.En, maxEnLength},
		{"cnt", f.Cnt, maxCntLength},
		{"loc", f.Loc, maxLocLength},
		{"time", f.Time, maxTimeLength},
	}
	for _, fld := range fields {
		if utf8.RuneCountInString(fld.value) > fld.max {
			return model.NewValidationError(fmt.Sprintf("%s must be at most %d characters", fld.name, fld.max))
		}
	}
	return nil
}
