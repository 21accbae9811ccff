package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/hitoshi/birdsong/internal/recording"
)

// ErrEmptyToken はログインAPIがアクセストークンを返さなかったことを表す。
var ErrEmptyToken = errors.New("login response has no access token")

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type registerRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsActive  bool   `json:"is_active"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

// FetchRecordings はプロキシ経由で録音一覧を取得し、再生URLを導出する。
// 取得失敗時はError=true、IsPending=falseとし、録音一覧を空にする。
// 導出失敗時は取得した録音を保持し、BirdSoundsを空にしてError=trueとする。
func (s *Store) FetchRecordings(ctx context.Context) (State, error) {
	cur := s.Snapshot()
	target := cur.Heroku + cur.URL

	var resp recording.Response
	if err := s.api.GetJSON(ctx, target, &resp); err != nil {
		s.logger.Error("録音一覧の取得に失敗しました",
			slog.String("url", target),
			slog.String("error", err.Error()),
		)
		next := s.update(func(st *State) {
			st.BirdsRaw = []recording.Recording{}
			st.BirdSounds = []string{}
			st.IsPending = false
			st.Error = true
			st.ErrorMessage = "Could not fetch the data for that resource"
		})
		return next, fmt.Errorf("fetch recordings: %w", err)
	}

	recs := resp.Recordings
	if recs == nil {
		recs = []recording.Recording{}
	}
	s.logger.Info("録音一覧を取得しました", slog.Int("count", len(recs)))

	// 録音一覧と再生URLは1回の更新で差し替え、購読者に対応の崩れた状態を見せない
	urls, derr := recording.SoundURLs(recs)
	next := s.update(func(st *State) {
		st.BirdsRaw = recs
		st.IsPending = false
		if derr != nil {
			st.BirdSounds = []string{}
			st.Error = true
			st.ErrorMessage = derr.Error()
			return
		}
		st.BirdSounds = urls
		st.Error = false
		st.ErrorMessage = ""
	})
	if derr != nil {
		s.logger.Error("再生URLの導出に失敗しました", slog.String("error", derr.Error()))
		return next, fmt.Errorf("derive sound urls: %w", derr)
	}
	return next, nil
}

// DeriveSoundURLs は保持している録音一覧から再生URL一覧を導出する。
// 導出できない録音が含まれる場合はBirdSoundsを変更せず、Error=trueとしてエラーを返す。
func (s *Store) DeriveSoundURLs() (State, error) {
	var derr error
	next := s.update(func(st *State) {
		urls, err := recording.SoundURLs(st.BirdsRaw)
		if err != nil {
			derr = err
			st.Error = true
			st.ErrorMessage = err.Error()
			return
		}
		st.BirdSounds = urls
	})
	if derr != nil {
		s.logger.Error("再生URLの導出に失敗しました", slog.String("error", derr.Error()))
		return next, fmt.Errorf("derive sound urls: %w", derr)
	}
	return next, nil
}

// Login は資格情報をバックエンドに送信し、返却されたアクセストークンを永続ストレージに保存する。
// 成功時はLogin=trueとして購読者に通知する。失敗時は状態を変更しない。
func (s *Store) Login(ctx context.Context, username, password string) (State, error) {
	cur := s.Snapshot()

	var resp loginResponse
	err := s.api.PostJSON(ctx, cur.BaseURL+"/login", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err == nil && resp.AccessToken == "" {
		err = ErrEmptyToken
	}
	if err != nil {
		s.logger.Error("ログインに失敗しました",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return cur, fmt.Errorf("login: %w", err)
	}

	if err := s.storage.Set(TokenKey, resp.AccessToken); err != nil {
		s.logger.Error("トークンの保存に失敗しました", slog.String("error", err.Error()))
		return cur, fmt.Errorf("login: store token: %w", err)
	}

	s.logger.Info("ログインしました", slog.String("username", username))
	return s.update(func(st *State) {
		st.Username = username
		st.Login = true
	}), nil
}

// CheckToken は永続ストレージのトークン有無からログイン状態を設定する。
// 有効期限やサーバー側での検証は行わない。
func (s *Store) CheckToken() (State, error) {
	token, err := s.storage.Get(TokenKey)
	if err != nil {
		s.logger.Warn("トークンの読み込みに失敗しました", slog.String("error", err.Error()))
		return s.update(func(st *State) { st.Login = false }), fmt.Errorf("check token: %w", err)
	}
	return s.update(func(st *State) {
		st.Login = token != ""
	}), nil
}

// Logout は永続ストレージからトークンを削除し、Login=falseとする。
func (s *Store) Logout() (State, error) {
	if err := s.storage.Delete(TokenKey); err != nil {
		s.logger.Error("トークンの削除に失敗しました", slog.String("error", err.Error()))
		return s.Snapshot(), fmt.Errorf("logout: %w", err)
	}
	return s.update(func(st *State) {
		st.Login = false
		st.Username = ""
	}), nil
}

// Register はユーザー登録をバックエンドに送信する。
// 成功時はRegister=true、失敗時はRegisterの値を変更しない。
func (s *Store) Register(ctx context.Context, firstName, lastName, email, password string) (State, error) {
	cur := s.Snapshot()

	err := s.api.PostJSON(ctx, cur.BaseURL+"/register", registerRequest{
		Firstname: firstName,
		Lastname:  lastName,
		Email:     email,
		Password:  password,
		IsActive:  false,
	}, nil)
	if err != nil {
		s.logger.Error("ユーザー登録に失敗しました",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return cur, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("ユーザー登録が完了しました", slog.String("email", email))
	return s.update(func(st *State) {
		st.Register = true
		st.Email = email
	}), nil
}

// ConfirmEmail はメール確認エンドポイントを呼び出し、レスポンスをログに残す。
// 状態は変更しない。
func (s *Store) ConfirmEmail(ctx context.Context, token string) error {
	cur := s.Snapshot()
	target := cur.BaseURL + "/confirm_email/" + url.PathEscape(token)

	var resp map[string]any
	if err := s.api.GetJSON(ctx, target, &resp); err != nil {
		s.logger.Warn("メール確認に失敗しました", slog.String("error", err.Error()))
		return fmt.Errorf("confirm email: %w", err)
	}
	s.logger.Info("メール確認の応答を受信しました", slog.Any("response", resp))
	return nil
}

// ResetPassword はトークンと新しいパスワードでパスワード再設定を行う。
// 成功時はPasswordReset=trueとする。
func (s *Store) ResetPassword(ctx context.Context, password, token string) (State, error) {
	cur := s.Snapshot()

	err := s.api.PostJSON(ctx, cur.BaseURL+"/reset_password", resetPasswordRequest{
		Password: password,
		Token:    strings.TrimSpace(token),
	}, nil)
	if err != nil {
		s.logger.Error("パスワード再設定に失敗しました", slog.String("error", err.Error()))
		return cur, fmt.Errorf("reset password: %w", err)
	}

	return s.update(func(st *State) {
		st.PasswordReset = true
		st.Message = "Password updated"
	}), nil
}
