// Package user はユーザー参照と退会処理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/repository"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// List は全ユーザーを登録順に返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

// Get は指定IDのユーザーを返す。存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	if uuid.Validate(userID) != nil {
		return nil, model.NewUserNotFoundError()
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: email_tokens, bird_captures, audio_favorites）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 2. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
