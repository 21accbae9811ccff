package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/birdsong/internal/middleware"
	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/recording"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn             func(ctx context.Context, in registerInput) (*model.User, error)
	loginFn                func(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	logoutFn               func(ctx context.Context, sessionID string) error
	getCurrentUserFn       func(ctx context.Context, sessionID string) (*model.User, error)
	requestPasswordResetFn func(ctx context.Context, email string) error
	confirmEmailFn         func(ctx context.Context, token string) (*model.User, error)
	resetPasswordFn        func(ctx context.Context, token, password string) error
}

func (m *mockAuthService) Register(ctx context.Context, in registerInput) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return &model.User{}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewUnauthorizedError()
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.requestPasswordResetFn != nil {
		return m.requestPasswordResetFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	if m.confirmEmailFn != nil {
		return m.confirmEmailFn(ctx, token)
	}
	return nil, model.NewTokenInvalidError()
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, password)
	}
	return nil
}

type mockUserService struct {
	listFn     func(ctx context.Context) ([]*model.User, error)
	getFn      func(ctx context.Context, userID string) (*model.User, error)
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.User{}, nil
}

func (m *mockUserService) Get(ctx context.Context, userID string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

type mockCaptureService struct {
	createFn     func(ctx context.Context, userID string, in captureInput) (*model.BirdCapture, error)
	listMineFn   func(ctx context.Context, userID string) ([]*model.BirdCapture, error)
	listPublicFn func(ctx context.Context) ([]*model.BirdCapture, error)
}

func (m *mockCaptureService) Create(ctx context.Context, userID string, in captureInput) (*model.BirdCapture, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &model.BirdCapture{UserID: userID}, nil
}

func (m *mockCaptureService) ListMine(ctx context.Context, userID string) ([]*model.BirdCapture, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, userID)
	}
	return []*model.BirdCapture{}, nil
}

func (m *mockCaptureService) ListPublic(ctx context.Context) ([]*model.BirdCapture, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx)
	}
	return []*model.BirdCapture{}, nil
}

type mockFavoriteService struct {
	addFn    func(ctx context.Context, userID string, in favoriteInput) (*model.AudioFavorite, error)
	listFn   func(ctx context.Context, userID string) ([]*model.AudioFavorite, error)
	removeFn func(ctx context.Context, userID, favoriteID string) error
}

func (m *mockFavoriteService) Add(ctx context.Context, userID string, in favoriteInput) (*model.AudioFavorite, error) {
	if m.addFn != nil {
		return m.addFn(ctx, userID, in)
	}
	return &model.AudioFavorite{UserID: userID}, nil
}

func (m *mockFavoriteService) List(ctx context.Context, userID string) ([]*model.AudioFavorite, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return []*model.AudioFavorite{}, nil
}

func (m *mockFavoriteService) Remove(ctx context.Context, userID, favoriteID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, favoriteID)
	}
	return nil
}

type mockProxyFetcher struct {
	fetchFn func(ctx context.Context, target string) (*recording.Payload, error)
}

func (m *mockProxyFetcher) Fetch(ctx context.Context, target string) (*recording.Payload, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, target)
	}
	return &recording.Payload{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{}`)}, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(_ context.Context) error {
	return m.err
}

// mockSessionFinder はRouterテスト用のSessionFinderモック。
type mockSessionFinder struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinder) FindByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

// --- compile-time interface checks ---
var (
	_ AuthServiceInterface     = (*mockAuthService)(nil)
	_ UserServiceInterface     = (*mockUserService)(nil)
	_ CaptureServiceInterface  = (*mockCaptureService)(nil)
	_ FavoriteServiceInterface = (*mockFavoriteService)(nil)
	_ ProxyFetcher             = (*mockProxyFetcher)(nil)
	_ HealthChecker            = (*mockHealthChecker)(nil)
	_ middleware.SessionFinder = (*mockSessionFinder)(nil)
)

// --- ヘルパー ---

// withUserID はリクエストコンテキストにユーザーIDを注入する。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withSession はリクエストコンテキストにセッションIDとユーザーIDを注入する。
func withSession(r *http.Request, sessionID, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	ctx = middleware.ContextWithSessionID(ctx, sessionID)
	return r.WithContext(ctx)
}
