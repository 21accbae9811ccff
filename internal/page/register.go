package page

import (
	"context"
	"fmt"
	"io"

	"github.com/hitoshi/birdsong/internal/store"
)

// RegisterPage はユーザー登録フォーム。
type RegisterPage struct {
	view
	firstName string
	lastName  string
	email     string
	password  string
}

// NewRegisterPage はRegisterPageを生成する。
func NewRegisterPage(s *store.Store, out io.Writer) *RegisterPage {
	p := &RegisterPage{}
	p.view = view{store: s, out: out, render: renderRegister}
	return p
}

// Mount はページを表示する。
func (p *RegisterPage) Mount() {
	p.mount()
}

// SetFirstName は名の入力値を設定する。
func (p *RegisterPage) SetFirstName(v string) { p.firstName = v }

// SetLastName は姓の入力値を設定する。
func (p *RegisterPage) SetLastName(v string) { p.lastName = v }

// SetEmail はメールアドレスの入力値を設定する。
func (p *RegisterPage) SetEmail(v string) { p.email = v }

// SetPassword はパスワードの入力値を設定する。
func (p *RegisterPage) SetPassword(v string) { p.password = v }

// Submit はフォームを送信する。
func (p *RegisterPage) Submit(ctx context.Context) error {
	if err := requireFields(map[string]string{
		"firstname": p.firstName,
		"lastname":  p.lastName,
		"email":     p.email,
		"password":  p.password,
	}); err != nil {
		return err
	}
	_, err := p.store.Register(ctx, p.firstName, p.lastName, p.email, p.password)
	return err
}

func renderRegister(w io.Writer, st store.State) {
	if st.Register {
		fmt.Fprintf(w, "Registration complete for %s. Check your inbox to confirm your e-mail.\n", st.Email)
		return
	}
	fmt.Fprintln(w, "Create an account")
}
