// Package store はUI全体で共有する状態と、それを更新するアクションを提供する。
// 状態はStoreの内部にのみ保持し、変更はアクション経由でのみ行う。
// 変更のたびに購読者へ新しい状態のスナップショットを通知する。
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/hitoshi/birdsong/internal/recording"
)

// DefaultProxyPrefix は録音APIのURLの前に付けるプロキシホストの既定値。
const DefaultProxyPrefix = "http://localhost:8080/proxy/"

// DefaultBaseURL はバックエンドAPIの既定値。
const DefaultBaseURL = "http://localhost:8080"

// State はUIが参照する共有状態。
// BirdSoundsはBirdsRawと位置で対応する。
type State struct {
	Message       string
	IsPending     bool
	Error         bool
	ErrorMessage  string
	BirdsRaw      []recording.Recording
	BirdSounds    []string
	URL           string
	Heroku        string
	BaseURL       string
	Login         bool
	Username      string
	Email         string
	Register      bool
	PasswordReset bool
}

// clone はスライスを複製したStateを返す。
func (s State) clone() State {
	s.BirdsRaw = slices.Clone(s.BirdsRaw)
	s.BirdSounds = slices.Clone(s.BirdSounds)
	return s
}

// API はアクションが使用するHTTPクライアント。client.Clientが実装する。
type API interface {
	GetJSON(ctx context.Context, url string, out any) error
	PostJSON(ctx context.Context, url string, in, out any) error
}

// Config はStoreの接続先設定。空の項目は既定値で補う。
type Config struct {
	URL     string // 録音一覧のURL
	Heroku  string // プロキシホスト（URLの前に連結する）
	BaseURL string // バックエンドAPI
}

// Store は共有状態とアクションを保持する。
// ページコンポーネントには明示的に渡して使う。
type Store struct {
	api     API
	storage TokenStorage
	logger  *slog.Logger

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New はStoreを生成する。初期状態は読み込み中（IsPending=true）。
func New(api API, storage TokenStorage, logger *slog.Logger, cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = recording.DefaultQueryURL
	}
	if cfg.Heroku == "" {
		cfg.Heroku = DefaultProxyPrefix
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Store{
		api:     api,
		storage: storage,
		logger:  logger,
		state: State{
			IsPending:  true,
			BirdsRaw:   []recording.Recording{},
			BirdSounds: []string{},
			URL:        cfg.URL,
			Heroku:     cfg.Heroku,
			BaseURL:    cfg.BaseURL,
		},
		subs: make(map[int]func(State)),
	}
}

// Snapshot は現在の状態のコピーを返す。
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe は状態変更の通知先を登録し、登録解除関数を返す。
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// update は状態を変更し、変更後のスナップショットを購読者に通知して返す。
// 通知はロックの外で行う。
func (s *Store) update(mutate func(*State)) State {
	s.mu.Lock()
	mutate(&s.state)
	next := s.state.clone()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(next.clone())
	}
	return next
}
