package auth

import (
	"context"
	"log/slog"
)

// Message は配送するメール。
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer はメール配送のインターフェース。
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer はメールを送信せず、専用のロガー（送信箱）に書き出すMailer。
// SMTPを持たない開発環境やテストで使用する。
// 送信箱はアプリケーションログとは別の出力先に向けること。
type LogMailer struct {
	outbox *slog.Logger
}

// NewLogMailer はLogMailerを生成する。
func NewLogMailer(outbox *slog.Logger) *LogMailer {
	return &LogMailer{outbox: outbox}
}

// Send はメッセージを送信箱に書き出す。
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.outbox.InfoContext(ctx, "mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
