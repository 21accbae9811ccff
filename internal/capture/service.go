// Package capture は野鳥観察記録（観察日誌）のドメインロジックを提供する。
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/repository"
)

// 各項目の最大文字数（カラム定義と一致させる）
const (
	maxEnLength   = 255
	maxCntLength  = 120
	maxLocLength  = 255
	maxTimeLength = 32
	maxRmkLength  = 2000
)

// Sanitizer は自由記述欄のHTMLを除去する。
type Sanitizer interface {
	Sanitize(text string) string
}

// CreateInput は観察記録の作成入力。
type CreateInput struct {
	En     string
	Cnt    string
	Loc    string
	Time   string
	Rmk    string
	Public bool
}

// Service は観察記録のサービス層。
type Service struct {
	repo      repository.CaptureRepository
	sanitizer Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CaptureRepository, sanitizer Sanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// Create はユーザーの観察記録を作成する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.BirdCapture, error) {
	c := &model.BirdCapture{
		ID:        uuid.New().String(),
		UserID:    userID,
		En:        s.sanitizer.Sanitize(in.En),
		Cnt:       s.sanitizer.Sanitize(in.Cnt),
		Loc:       s.sanitizer.Sanitize(in.Loc),
		Time:      s.sanitizer.Sanitize(in.Time),
		Rmk:       s.sanitizer.Sanitize(in.Rmk),
		Public:    in.Public,
		CreatedAt: time.Now(),
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("観察記録の作成に失敗しました: %w", err)
	}

	slog.Info("観察記録を作成しました",
		slog.String("user_id", userID),
		slog.String("capture_id", c.ID),
		slog.Bool("public", c.Public),
	)
	return c, nil
}

// ListMine はユーザー自身の観察記録を新しい順に返す。
func (s *Service) ListMine(ctx context.Context, userID string) ([]*model.BirdCapture, error) {
	captures, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("観察記録の取得に失敗しました: %w", err)
	}
	if captures == nil {
		captures = []*model.BirdCapture{}
	}
	return captures, nil
}

// ListPublic は全ユーザーの公開観察記録を新しい順に返す。
func (s *Service) ListPublic(ctx context.Context) ([]*model.BirdCapture, error) {
	captures, err := s.repo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("公開観察記録の取得に失敗しました: %w", err)
	}
	if captures == nil {
		captures = []*model.BirdCapture{}
	}
	return captures, nil
}

func validate(c *model.BirdCapture) error {
	if c.En == "" {
		return model.NewValidationError("en is required")
	}
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"en", c.En, maxEnLength},
		{"cnt", c.Cnt, maxCntLength},
		{"loc", c.Loc, maxLocLength},
		{"time", c.Time, maxTimeLength},
		{"rmk", c.Rmk, maxRmkLength},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return model.NewValidationError(fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		}
	}
	return nil
}
