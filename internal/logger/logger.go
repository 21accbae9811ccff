// Package logger はbirdsongのJSON構造化ログを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// componentキーの値。出力先を共有するログをjqなどで分離するために使う。
const (
	ComponentOutbox  = "outbox"  // 送信箱（確認・再設定メール）
	ComponentCleanup = "cleanup" // 期限切れデータの削除ジョブ
	ComponentClient  = "client"  // CLIクライアント
)

// New は指定レベル以上を出力するJSONロガーを生成する。
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup はLOG_LEVEL環境変数のレベルでJSONロガーを生成する。
func Setup(w io.Writer) *slog.Logger {
	return New(w, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupDefault はSetupのロガーをグローバルロガーとして設定する。
// wがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}

// ParseLevel はdebug/info/warn/errorをslog.Levelに変換する。
// 空文字や未知の値はinfoとして扱う。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component はcomponent属性を付与した子ロガーを返す。lがnilの場合はslog.Default()を使う。
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("component", name))
}
