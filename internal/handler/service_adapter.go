package handler

import (
	"context"

	"github.com/hitoshi/birdsong/internal/auth"
	"github.com/hitoshi/birdsong/internal/capture"
	"github.com/hitoshi/birdsong/internal/favorite"
	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/user"
)

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	svc *auth.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(svc *auth.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{svc: svc}
}

// Register はユーザーを登録する。
func (a *AuthServiceAdapter) Register(ctx context.Context, in registerInput) (*model.User, error) {
	return a.svc.Register(ctx, auth.RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Bio:       in.Bio,
	})
}

// Login はログインしてセッションとユーザーを返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	result, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	return result.Session, result.User, nil
}

// Logout はセッションを破棄する。
func (a *AuthServiceAdapter) Logout(ctx context.Context, sessionID string) error {
	return a.svc.Logout(ctx, sessionID)
}

// GetCurrentUser はセッションのユーザーを返す。
func (a *AuthServiceAdapter) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	return a.svc.GetCurrentUser(ctx, sessionID)
}

// RequestPasswordReset はパスワード再設定メールを送信する。
func (a *AuthServiceAdapter) RequestPasswordReset(ctx context.Context, email string) error {
	return a.svc.RequestPasswordReset(ctx, email)
}

// ConfirmEmail はメールアドレスを確認する。
func (a *AuthServiceAdapter) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	return a.svc.ConfirmEmail(ctx, token)
}

// ResetPassword はパスワードを再設定する。
func (a *AuthServiceAdapter) ResetPassword(ctx context.Context, token, password string) error {
	return a.svc.ResetPassword(ctx, token, password)
}

// CaptureServiceAdapter は capture.Service を CaptureServiceInterface に適合させるアダプタ。
type CaptureServiceAdapter struct {
	svc *capture.Service
}

// NewCaptureServiceAdapter はCaptureServiceAdapterを生成する。
func NewCaptureServiceAdapter(svc *capture.Service) *CaptureServiceAdapter {
	return &CaptureServiceAdapter{svc: svc}
}

// Create は観察記録を作成する。
func (a *CaptureServiceAdapter) Create(ctx context.Context, userID string, in captureInput) (*model.BirdCapture, error) {
	return a.svc.Create(ctx, userID, capture.CreateInput(in))
}

// ListMine はユーザーの観察記録を返す。
func (a *CaptureServiceAdapter) ListMine(ctx context.Context, userID string) ([]*model.BirdCapture, error) {
	return a.svc.ListMine(ctx, userID)
}

// ListPublic は公開観察記録を返す。
func (a *CaptureServiceAdapter) ListPublic(ctx context.Context) ([]*model.BirdCapture, error) {
	return a.svc.ListPublic(ctx)
}

// FavoriteServiceAdapter は favorite.Service を FavoriteServiceInterface に適合させるアダプタ。
type FavoriteServiceAdapter struct {
	svc *favorite.Service
}

// NewFavoriteServiceAdapter はFavoriteServiceAdapterを生成する。
func NewFavoriteServiceAdapter(svc *favorite.Service) *FavoriteServiceAdapter {
	return &FavoriteServiceAdapter{svc: svc}
}

// Add はお気に入りを登録する。
func (a *FavoriteServiceAdapter) Add(ctx context.Context, userID string, in favoriteInput) (*model.AudioFavorite, error) {
	return a.svc.Add(ctx, userID, favorite.AddInput(in))
}

// List はお気に入り一覧を返す。
func (a *FavoriteServiceAdapter) List(ctx context.Context, userID string) ([]*model.AudioFavorite, error) {
	return a.svc.List(ctx, userID)
}

// Remove はお気に入りを削除する。
func (a *FavoriteServiceAdapter) Remove(ctx context.Context, userID, favoriteID string) error {
	return a.svc.Remove(ctx, userID, favoriteID)
}

var (
	_ AuthServiceInterface     = (*AuthServiceAdapter)(nil)
	_ CaptureServiceInterface  = (*CaptureServiceAdapter)(nil)
	_ FavoriteServiceInterface = (*FavoriteServiceAdapter)(nil)
	_ UserServiceInterface     = (*user.Service)(nil)
)
