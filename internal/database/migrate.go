// Package database はPostgreSQL接続とスキーママイグレーションを提供する。
package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// users, sessions, email_tokens, bird_captures, audio_favorites の5テーブル。
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func newSource() (source.Driver, error) {
	d, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	return d, nil
}

// NewMigrator はbirdsongスキーマ用のmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := newSource()
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("birdsong", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// LatestVersion は埋め込まれたマイグレーションの最大バージョンを返す。DB接続は不要。
func LatestVersion() (uint, error) {
	src, err := newSource()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no embedded migrations: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migration after %d: %w", v, err)
		}
		v = next
	}
}

// RunMigrations は未適用のマイグレーションをすべて適用し、適用後のバージョンを返す。
// すでに最新の場合もエラーにはならない。前回の失敗でdirtyになっている場合はエラーを返す。
func RunMigrations(databaseURL string) (uint, error) {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
