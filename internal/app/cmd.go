package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"

	// 以下はAPIサーバーに接続するクライアント用サブコマンド。

	// CommandRecordings は録音一覧を取得して表示する。
	CommandRecordings Command = "recordings"
	// CommandLogin はログインしてアクセストークンを保存する。
	CommandLogin Command = "login"
	// CommandRegister はユーザー登録を行う。
	CommandRegister Command = "register"
	// CommandResetPassword はメールのトークンでパスワードを再設定する。
	CommandResetPassword Command = "reset-password"
	// CommandLogout は保存済みのアクセストークンを削除する。
	CommandLogout Command = "logout"
	// CommandStatus はログイン状態を表示する。
	CommandStatus Command = "status"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch cmd := Command(args[0]); cmd {
	case CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck,
		CommandRecordings, CommandLogin, CommandRegister, CommandResetPassword,
		CommandLogout, CommandStatus:
		return cmd
	default:
		return CommandServe
	}
}

// IsClient はコマンドがクライアント用サブコマンドかどうかを返す。
// クライアント用サブコマンドはサーバー設定（DATABASE_URLなど）を必要としない。
func (c Command) IsClient() bool {
	switch c {
	case CommandRecordings, CommandLogin, CommandRegister, CommandResetPassword,
		CommandLogout, CommandStatus:
		return true
	}
	return false
}
