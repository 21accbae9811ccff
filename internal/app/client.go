package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hitoshi/birdsong/internal/client"
	"github.com/hitoshi/birdsong/internal/config"
	"github.com/hitoshi/birdsong/internal/page"
	"github.com/hitoshi/birdsong/internal/store"
)

// passwordEnv はパスワードフラグ未指定時に参照する環境変数。
// コマンドライン引数はプロセス一覧から見えるため、こちらの利用を推奨する。
const passwordEnv = "BIRDSONG_PASSWORD"

// runClient はクライアント用サブコマンドを実行する。
// 各サブコマンドは対応するページを表示し、フォームの値をフラグから受け取って送信する。
func runClient(ctx context.Context, cmd Command, args []string, out io.Writer, logger *slog.Logger) error {
	cfg := config.LoadClient()

	s, storage, err := newClientStore(cfg, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case CommandRecordings:
		return runRecordings(ctx, s, out)
	case CommandLogin:
		return runLogin(ctx, s, args, out)
	case CommandRegister:
		return runRegister(ctx, s, args, out)
	case CommandResetPassword:
		return runResetPassword(ctx, s, args, out, logger)
	case CommandLogout:
		if _, err := s.Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(out, "Logged out")
		return nil
	case CommandStatus:
		return runStatus(ctx, s, storage, args, out, logger)
	default:
		return fmt.Errorf("unknown client command: %s", cmd)
	}
}

// newClientStore はAPIクライアントとトークン保存先を持つStoreを生成する。
func newClientStore(cfg *config.ClientConfig, logger *slog.Logger) (*store.Store, *store.FileStorage, error) {
	api, err := client.New(client.WithTimeout(cfg.HTTPTimeout), client.WithUserAgent(cfg.UserAgent))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create api client: %w", err)
	}

	storage, err := store.NewFileStorage(cfg.TokenFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open token storage: %w", err)
	}

	s := store.New(api, storage, logger, store.Config{
		URL:     cfg.RecordingsURL,
		Heroku:  cfg.ProxyURL,
		BaseURL: cfg.APIURL,
	})
	return s, storage, nil
}

func runRecordings(ctx context.Context, s *store.Store, out io.Writer) error {
	p := page.NewRecordingsPage(s, out)
	defer p.Unmount()
	return p.Mount(ctx)
}

func runLogin(ctx context.Context, s *store.Store, args []string, out io.Writer) error {
	fs := newFlagSet(CommandLogin)
	username := fs.String("username", "", "メールアドレス")
	password := fs.String("password", "", "パスワード（未指定時は"+passwordEnv+"）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := page.NewLoginPage(s, out)
	defer p.Unmount()
	if err := p.Mount(); err != nil {
		return err
	}
	p.SetUsername(*username)
	p.SetPassword(passwordOrEnv(*password))
	return p.Submit(ctx)
}

func runRegister(ctx context.Context, s *store.Store, args []string, out io.Writer) error {
	fs := newFlagSet(CommandRegister)
	firstName := fs.String("firstname", "", "名")
	lastName := fs.String("lastname", "", "姓")
	email := fs.String("email", "", "メールアドレス")
	password := fs.String("password", "", "パスワード（未指定時は"+passwordEnv+"）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := page.NewRegisterPage(s, out)
	defer p.Unmount()
	p.Mount()
	p.SetFirstName(*firstName)
	p.SetLastName(*lastName)
	p.SetEmail(*email)
	p.SetPassword(passwordOrEnv(*password))
	return p.Submit(ctx)
}

func runResetPassword(ctx context.Context, s *store.Store, args []string, out io.Writer, logger *slog.Logger) error {
	fs := newFlagSet(CommandResetPassword)
	token := fs.String("token", "", "メールに記載されたトークン")
	password := fs.String("password", "", "新しいパスワード（未指定時は"+passwordEnv+"）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := page.NewResetPasswordPage(s, out, logger, *token)
	defer p.Unmount()
	p.Mount(ctx)
	p.SetPassword(passwordOrEnv(*password))
	return p.Submit(ctx)
}

// runStatus はログイン状態を表示する。
// -watchを指定するとトークンファイルを監視し、別プロセスでのログイン・ログアウトを反映し続ける。
func runStatus(ctx context.Context, s *store.Store, storage *store.FileStorage, args []string, out io.Writer, logger *slog.Logger) error {
	fs := newFlagSet(CommandStatus)
	watch := fs.Bool("watch", false, "トークンの変更を監視する")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := s.CheckToken()
	if err != nil {
		return err
	}
	printStatus(out, st)
	if !*watch {
		return nil
	}

	unsubscribe := s.Subscribe(func(st store.State) { printStatus(out, st) })
	defer unsubscribe()

	logger.Info("watching token file", slog.String("path", storage.Path()))

	return storage.Watch(ctx, logger, func() {
		if _, err := s.CheckToken(); err != nil {
			logger.Warn("failed to reload token", slog.String("error", err.Error()))
		}
	})
}

func printStatus(w io.Writer, st store.State) {
	if st.Login {
		fmt.Fprintln(w, "logged in")
		return
	}
	fmt.Fprintln(w, "logged out")
}

func newFlagSet(cmd Command) *flag.FlagSet {
	fs := flag.NewFlagSet(string(cmd), flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func passwordOrEnv(v string) string {
	if v != "" {
		return v
	}
	return os.Getenv(passwordEnv)
}
