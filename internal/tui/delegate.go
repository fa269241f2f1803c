package tui

import (
	"fmt"
	"io"

	blist "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

// row adapts model.Item to bubbles/list.Item.
type row struct {
	model.Item
}

func (r row) Title() string       { return r.Content }
func (r row) Description() string { return "" }
func (r row) FilterValue() string { return r.Content }

// rowDelegate renders one line per item. While dragging, the selected row
// is the item in hand.
type rowDelegate struct {
	dragging bool
}

func (d rowDelegate) Height() int                                 { return 1 }
func (d rowDelegate) Spacing() int                                { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *blist.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m blist.Model, index int, item blist.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := r.Content
	if r.Checked {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
		if d.dragging {
			prefix = t.Dragging.Render("≡") + " "
			text = t.Dragging.Render(r.Content)
		}
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

func toRows(items []model.Item) []blist.Item {
	out := make([]blist.Item, len(items))
	for i, it := range items {
		out[i] = row{it}
	}
	return out
}
