package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxBeginner はトランザクション開始用のインターフェース。*sql.DBが実装する。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// withTx はfnを1つのトランザクション内で実行する。
// fnがエラーを返した場合はロールバックし、そのエラーを返す。
func withTx(ctx context.Context, db TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
