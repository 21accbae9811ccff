package page

import (
	"context"
	"fmt"
	"io"

	"github.com/hitoshi/birdsong/internal/store"
)

// LoginPage はログインフォーム。
type LoginPage struct {
	view
	username string
	password string
}

// NewLoginPage はLoginPageを生成する。
func NewLoginPage(s *store.Store, out io.Writer) *LoginPage {
	p := &LoginPage{}
	p.view = view{store: s, out: out, render: renderLogin}
	return p
}

// Mount はページを表示する。保存済みトークンからログイン状態を復元する。
func (p *LoginPage) Mount() error {
	p.mount()
	_, err := p.store.CheckToken()
	return err
}

// SetUsername はユーザー名（メールアドレス）入力欄の値を設定する。
func (p *LoginPage) SetUsername(v string) { p.username = v }

// SetPassword はパスワード入力欄の値を設定する。
func (p *LoginPage) SetPassword(v string) { p.password = v }

// Submit はフォームを送信する。
func (p *LoginPage) Submit(ctx context.Context) error {
	if err := requireFields(map[string]string{"username": p.username, "password": p.password}); err != nil {
		return err
	}
	_, err := p.store.Login(ctx, p.username, p.password)
	return err
}

func renderLogin(w io.Writer, st store.State) {
	if st.Login {
		if st.Username != "" {
			fmt.Fprintf(w, "Logged in as %s\n", st.Username)
		} else {
			fmt.Fprintln(w, "Logged in")
		}
		return
	}
	fmt.Fprintln(w, "Sign in")
}
