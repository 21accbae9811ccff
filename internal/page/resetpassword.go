package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hitoshi/birdsong/internal/store"
)

// ResetPasswordPage はパスワード再設定フォーム。
// tokenはメールのリンク（ルートパラメータ）から渡される。
type ResetPasswordPage struct {
	view
	token    string
	password string
	logger   *slog.Logger
}

// NewResetPasswordPage はResetPasswordPageを生成する。
func NewResetPasswordPage(s *store.Store, out io.Writer, logger *slog.Logger, token string) *ResetPasswordPage {
	p := &ResetPasswordPage{token: token, logger: logger}
	p.view = view{store: s, out: out, render: renderResetPassword}
	return p
}

// Mount はページを表示し、メール確認エンドポイントを呼び出す。
// 確認結果はログに残すのみで、失敗してもフォームは表示する。
func (p *ResetPasswordPage) Mount(ctx context.Context) {
	p.mount()
	if err := p.store.ConfirmEmail(ctx, p.token); err != nil {
		p.logger.Warn("confirm email probe failed", slog.String("error", err.Error()))
	}
}

// SetPassword は新しいパスワードの入力値を設定する。
func (p *ResetPasswordPage) SetPassword(v string) { p.password = v }

// Submit は新しいパスワードを送信する。
func (p *ResetPasswordPage) Submit(ctx context.Context) error {
	if err := requireFields(map[string]string{"password": p.password, "token": p.token}); err != nil {
		return err
	}
	_, err := p.store.ResetPassword(ctx, p.password, p.token)
	return err
}

func renderResetPassword(w io.Writer, st store.State) {
	if st.PasswordReset {
		fmt.Fprintln(w, "Password restored. You can sign in with your new password.")
		return
	}
	fmt.Fprintln(w, "Restore Password")
}
