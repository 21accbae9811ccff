// Package page は共有ストアを参照して画面を描画するページコンポーネントを提供する。
// 各ページはフォームの入力値をローカルに保持し、送信時にストアのアクションを呼び出す。
// ストアの状態が変わるたびに出力先へ再描画する。
package page

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/hitoshi/birdsong/internal/store"
)

// ErrRequiredField は必須入力が空のまま送信されたことを表す。
var ErrRequiredField = errors.New("required field is empty")

// view はページ共通の描画・購読処理。
type view struct {
	store  *store.Store
	out    io.Writer
	render func(io.Writer, store.State)

	mu          sync.Mutex
	unsubscribe func()
}

// mount はストアを購読し、現在の状態で初回描画する。
func (v *view) mount() {
	v.mu.Lock()
	if v.unsubscribe == nil {
		v.unsubscribe = v.store.Subscribe(v.draw)
	}
	v.mu.Unlock()
	v.draw(v.store.Snapshot())
}

// Unmount はストアの購読を解除する。
func (v *view) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *view) draw(st store.State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.render(v.out, st)
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s", ErrRequiredField, strings.Join(missing, ", "))
	}
	return nil
}
