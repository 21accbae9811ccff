package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// TokenKey は永続ストレージ上でアクセストークンを保持するキー。
const TokenKey = "token"

// TokenStorage はブラウザのlocalStorageに相当するキー・バリュー型の永続ストレージ。
// 存在しないキーのGetは空文字列とnilを返す。
type TokenStorage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage はプロセス内のみで保持するTokenStorage。テストで使用する。
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage はMemoryStorageを生成する。
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get はキーに対応する値を返す。
func (m *MemoryStorage) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// Set はキーに値を保存する。
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete はキーを削除する。
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage はJSONファイルに保存するTokenStorage。
// ファイルは0600で作成し、書き込みは一時ファイルからのrenameで置き換える。
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage はpathを保存先とするFileStorageを生成する。
// 親ディレクトリが存在しない場合は作成する。
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{path: path}, nil
}

// Path は保存先ファイルのパスを返す。
func (f *FileStorage) Path() string {
	return f.path
}

// Get はキーに対応する値を返す。ファイルが存在しない場合は空文字列を返す。
func (f *FileStorage) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set はキーに値を保存する。
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete はキーを削除する。
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

// Watch は保存先ファイルの変更を監視し、変更のたびにonChangeを呼び出す。
// 別プロセスによるログイン・ログアウトを検知するために使う。
// ctxがキャンセルされるまでブロックする。
func (f *FileStorage) Watch(ctx context.Context, logger *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// renameによる置き換えを検知するため、ファイルではなくディレクトリを監視する
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch storage directory: %w", err)
	}

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				onChange()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("token storage watch error", slog.String("error", werr.Error()))
		}
	}
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode storage: %w", err)
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}
