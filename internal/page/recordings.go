package page

import (
	"context"
	"fmt"
	"io"

	"github.com/hitoshi/birdsong/internal/store"
)

// RecordingsPage は録音一覧ページ。
// マウント時に録音一覧を取得し、読み込み中・エラー・一覧のいずれかを描画する。
type RecordingsPage struct {
	view
}

// NewRecordingsPage はRecordingsPageを生成する。
func NewRecordingsPage(s *store.Store, out io.Writer) *RecordingsPage {
	p := &RecordingsPage{}
	p.view = view{store: s, out: out, render: renderRecordings}
	return p
}

// Mount はページを表示し、録音一覧の取得を開始する。
func (p *RecordingsPage) Mount(ctx context.Context) error {
	p.mount()
	_, err := p.store.FetchRecordings(ctx)
	return err
}

func renderRecordings(w io.Writer, st store.State) {
	switch {
	case st.Error:
		fmt.Fprintf(w, "Error: %s\n", st.ErrorMessage)
	case st.IsPending:
		fmt.Fprintln(w, "Loading...")
	case len(st.BirdsRaw) == 0:
		fmt.Fprintln(w, "No recordings found.")
	default:
		fmt.Fprintf(w, "%d recordings\n", len(st.BirdsRaw))
		for i, rec := range st.BirdsRaw {
			sound := ""
			if i < len(st.BirdSounds) {
				sound = st.BirdSounds[i]
			}
			fmt.Fprintf(w, "%3d. %s (%s %s) - %s, %s\n     %s\n",
				i+1, rec.En, rec.Gen, rec.Sp, rec.Loc, rec.Cnt, sound)
		}
	}
}
