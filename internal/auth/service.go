// Package auth はパスワード認証、セッション管理、メールトークンによる確認・再設定を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/birdsong/internal/model"
	"github.com/hitoshi/birdsong/internal/repository"
)

// MinPasswordLength はパスワードの最小文字数。
const MinPasswordLength = 8

// bcryptは72バイトを超える入力を拒否する。
const maxPasswordBytes = 72

// Sanitizer は自由記述欄のHTMLを除去する。security.TextSanitizerが実装する。
type Sanitizer interface {
	Sanitize(text string) string
}

// Metrics は認証イベントのメトリクス。metrics.Collectorが実装する。
type Metrics interface {
	RecordLogin(success bool)
	RecordRegistration()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge   int           // セッション有効期間（秒）
	ConfirmTokenTTL time.Duration // メール確認トークンの有効期間
	ResetTokenTTL   time.Duration // パスワード再設定トークンの有効期間
	BaseURL         string        // メール本文のリンクに使うURL
	BcryptCost      int           // 0の場合はbcrypt.DefaultCost
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Bio       string
}

// LoginResult はログイン成功時に返すセッションとユーザー。
type LoginResult struct {
	Session *model.Session
	User    *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokenRepo   repository.EmailTokenRepository
	mailer      Mailer
	sanitizer   Sanitizer
	metrics     Metrics
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokenRepo repository.EmailTokenRepository,
	mailer Mailer,
	sanitizer Sanitizer,
	metrics Metrics,
	config ServiceConfig,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
		sanitizer:   sanitizer,
		metrics:     metrics,
		config:      config,
		now:         time.Now,
	}
}

// Register はユーザーを無効状態で作成し、メール確認トークンを発行して配送する。
// メールアドレスが登録済みの場合はEMAIL_TAKENを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    s.sanitizer.Sanitize(in.FirstName),
		LastName:     s.sanitizer.Sanitize(in.LastName),
		Bio:          s.sanitizer.Sanitize(in.Bio),
		PasswordHash: string(hash),
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.metrics.RecordRegistration()

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	// 確認メールの失敗で登録自体は取り消さない。再送はパスワード再設定で代替できる。
	if err := s.issueToken(ctx, user, model.TokenPurposeConfirmEmail, s.config.ConfirmTokenTTL); err != nil {
		slog.Error("failed to issue confirmation token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// 不一致の場合はユーザーの存在有無にかかわらずINVALID_CREDENTIALSを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.RecordLogin(false)
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordLogin(true)

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return &LoginResult{Session: session, User: user}, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", maskToken(sessionID)))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// RequestPasswordReset はユーザーが存在する場合にパスワード再設定トークンを発行して配送する。
// アカウントの有無を推測されないよう、ユーザーが存在しなくてもエラーを返さない。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}

	if err := s.issueToken(ctx, user, model.TokenPurposeResetPassword, s.config.ResetTokenTTL); err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	return nil
}

// ConfirmEmail はメール確認トークンを検証してユーザーを有効化する。
// 確認リンクは複数回開かれることがあるため、有効期限内であれば使用済みでも成功とする。
func (s *Service) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	t, err := s.tokenRepo.FindByToken(ctx, token, model.TokenPurposeConfirmEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if t == nil || !s.now().Before(t.ExpiresAt) {
		return nil, model.NewTokenInvalidError()
	}

	user, err := s.userRepo.FindByID(ctx, t.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewTokenInvalidError()
	}

	if !user.IsActive {
		if err := s.userRepo.Activate(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to activate user: %w", err)
		}
		user.IsActive = true
	}
	if t.UsedAt == nil {
		if _, err := s.tokenRepo.MarkUsed(ctx, t.Token, s.now()); err != nil {
			return nil, fmt.Errorf("failed to mark token used: %w", err)
		}
	}

	slog.Info("email confirmed", slog.String("user_id", user.ID))
	return user, nil
}

// ResetPassword はパスワード再設定トークンを消費して新しいパスワードを設定する。
// 成功時はユーザーの全セッションを失効させる。
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}

	t, err := s.tokenRepo.FindByToken(ctx, token, model.TokenPurposeResetPassword)
	if err != nil {
		return fmt.Errorf("failed to find token: %w", err)
	}
	if t == nil || !t.Usable(s.now()) {
		return model.NewTokenInvalidError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// トークン消費・パスワード更新・セッション失効は同一トランザクションで行う。
	// 同じトークンでの同時リクエストは一方だけが成功する
	ok, err := s.userRepo.ResetPassword(ctx, t.UserID, string(hash), t.Token, s.now())
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if !ok {
		return model.NewTokenInvalidError()
	}

	slog.Info("password reset", slog.String("user_id", t.UserID))
	return nil
}

// issueToken はメールトークンを発行し、リンク付きのメールを配送する。
func (s *Service) issueToken(ctx context.Context, user *model.User, purpose model.TokenPurpose, ttl time.Duration) error {
	value, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	token := &model.EmailToken{
		Token:     value,
		UserID:    user.ID,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return err
	}

	msg := s.composeMessage(user, purpose, value)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	slog.Info("email token issued",
		slog.String("user_id", user.ID),
		slog.String("purpose", string(purpose)),
		slog.String("token", maskToken(value)),
	)
	return nil
}

func (s *Service) composeMessage(user *model.User, purpose model.TokenPurpose, token string) Message {
	base := strings.TrimRight(s.config.BaseURL, "/")
	switch purpose {
	case model.TokenPurposeResetPassword:
		return Message{
			To:      user.Email,
			Subject: "Restore your Birdsong password",
			Body:    fmt.Sprintf("Open %s/resetpassword/%s to choose a new password.", base, token),
		}
	default:
		return Message{
			To:      user.Email,
			Subject: "Confirm your Birdsong account",
			Body:    fmt.Sprintf("Open %s/confirm_email/%s to confirm your e-mail address.", base, token),
		}
	}
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateToken は暗号的に安全な32バイトのトークンを16進文字列で生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// maskToken はログ出力用にトークンの先頭だけを残す。
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "****"
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", model.NewValidationError("email is invalid")
	}
	return raw, nil
}

func validatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return model.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return model.NewValidationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordLogin(bool)    {}
func (noopMetrics) RecordRegistration() {}
