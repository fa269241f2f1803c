// Package tui is the interactive front end: a bubbletea program that turns
// key presses into list operations. Dragging is keyboard driven: grab a row,
// move it, then drop or cancel.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	blist "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dragdo/internal/list"
	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/store"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// snapshotMsg carries a list change published outside Update.
type snapshotMsg list.Snapshot

// loadedMsg reports the end of the initial load.
type loadedMsg struct{ err error }

type Model struct {
	ctx  context.Context
	list *list.List
	keys keyMap

	rows     blist.Model
	revision uint64

	// Inline add
	adding bool
	ti     textinput.Model
	addErr string

	// Drag in progress: the item taken from dragFrom is shown at dragTo.
	dragging bool
	dragFrom int
	dragTo   int

	loading bool
	loadErr error

	width, height int
}

// New builds the model. The list is loaded by the command returned from Init.
func New(ctx context.Context, l *list.List) Model {
	keys := defaultKeys()

	rows := blist.New(toRows(l.Items()), rowDelegate{}, defaultWidth-2, defaultHeight-4)
	rows.SetShowHelp(true)
	rows.SetShowPagination(true)
	rows.SetShowStatusBar(true)
	// Filtering would renumber rows and break drop indices.
	rows.SetFilteringEnabled(false)
	rows.SetStatusBarItemName("item", "items")
	rows.DisableQuitKeybindings()
	rows.Styles.Title = ui.Current().Title
	rows.Styles.HelpStyle = ui.Current().Help
	rows.Styles.PaginationStyle = ui.Current().Help
	rows.AdditionalShortHelpKeys = keys.browseHelp
	rows.AdditionalFullHelpKeys = keys.browseHelp

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item..."
	ti.CharLimit = 200

	m := Model{
		ctx:     ctx,
		list:    l,
		keys:    keys,
		rows:    rows,
		ti:      ti,
		loading: true,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.revision = l.Snapshot().Revision
	m.rows.Title = ui.Header(l.Items())
	return m
}

func (m Model) Init() tea.Cmd {
	l, ctx := m.list, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: l.Initialize(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if m.dragging {
			m.endDrag()
		}
		m.sync(m.list.Snapshot())
		return m, nil

	case snapshotMsg:
		// Snapshots can arrive late; only move forward.
		if msg.Revision > m.revision && !m.dragging {
			m.sync(list.Snapshot(msg))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.adding:
			return m.updateAdding(msg)
		case m.dragging:
			return m.updateDragging(msg), nil
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), msg.String() == "esc":
		return m, tea.Quit

	// Edits wait for the initial load; the load replaces the list.
	case m.loading && (key.Matches(msg, m.keys.Toggle) || key.Matches(msg, m.keys.Grab) || key.Matches(msg, m.keys.Add)):
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			m.list.ToggleChecked(it.ID)
			m.sync(m.list.Snapshot())
		}
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		if _, ok := m.selected(); ok {
			m.dragging = true
			m.dragFrom = m.rows.Index()
			m.dragTo = m.dragFrom
			m.rows.SetDelegate(rowDelegate{dragging: true})
			m.rows.AdditionalShortHelpKeys = m.keys.dragHelp
			m.rows.AdditionalFullHelpKeys = m.keys.dragHelp
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.addErr = ""
		m.ti.SetValue(m.list.Pending())
		m.ti.CursorEnd()
		m.resize()
		cmd := m.ti.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.rows, cmd = m.rows.Update(msg)
	return m, cmd
}

func (m Model) updateDragging(msg tea.KeyMsg) Model {
	n := len(m.rows.Items())
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.dragTo > 0 {
			m.dragTo--
			m.preview()
		}
	case key.Matches(msg, m.keys.Down):
		if m.dragTo < n-1 {
			m.dragTo++
			m.preview()
		}
	case key.Matches(msg, m.keys.Drop):
		m.endDrag()
		m.list.Reorder(m.dragFrom, m.dragTo, true)
		m.sync(m.list.Snapshot())
		m.rows.Select(m.dragTo)
	case key.Matches(msg, m.keys.Cancel):
		m.endDrag()
		m.list.Reorder(m.dragFrom, 0, false)
		m.sync(m.list.Snapshot())
		m.rows.Select(m.dragFrom)
	}
	return m
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.list.SetPendingInput(m.ti.Value())
		if _, ok := m.list.Commit(); !ok {
			m.addErr = "Content cannot be empty"
			return m, nil
		}
		m.ti.SetValue("")
		m.ti.Blur()
		m.adding = false
		m.resize()
		m.sync(m.list.Snapshot())
		m.rows.Select(len(m.rows.Items()) - 1)
		return m, nil
	case "esc":
		// The draft stays pending; it is not saved.
		m.list.SetPendingInput(m.ti.Value())
		m.ti.Blur()
		m.adding = false
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.list.SetPendingInput(m.ti.Value())
	m.revision = m.list.Snapshot().Revision
	if strings.TrimSpace(m.ti.Value()) != "" {
		m.addErr = ""
	}
	return m, cmd
}

func (m *Model) endDrag() {
	m.dragging = false
	m.rows.SetDelegate(rowDelegate{})
	m.rows.AdditionalShortHelpKeys = m.keys.browseHelp
	m.rows.AdditionalFullHelpKeys = m.keys.browseHelp
}

// preview shows the list as it would look if the item were dropped at dragTo.
func (m *Model) preview() {
	items := m.list.Items()
	if m.dragFrom >= len(items) || m.dragTo >= len(items) {
		return
	}
	m.rows.SetItems(toRows(model.Move(items, m.dragFrom, m.dragTo)))
	m.rows.Select(m.dragTo)
}

func (m *Model) sync(s list.Snapshot) {
	idx := m.rows.Index()
	m.rows.SetItems(toRows(s.Items))
	m.rows.Title = ui.Header(s.Items)
	if idx >= len(s.Items) {
		idx = len(s.Items) - 1
	}
	if idx >= 0 {
		m.rows.Select(idx)
	}
	m.revision = s.Revision
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h = m.height - 8
	}
	if h < 3 {
		h = 3
	}
	m.rows.SetSize(m.width-4, h)
}

func (m Model) selected() (model.Item, bool) {
	r, ok := m.rows.SelectedItem().(row)
	if !ok {
		return model.Item{}, false
	}
	return r.Item, true
}

// Items returns what the view currently shows, including a drag preview.
func (m Model) Items() []model.Item {
	out := make([]model.Item, 0, len(m.rows.Items()))
	for _, it := range m.rows.Items() {
		if r, ok := it.(row); ok {
			out = append(out, r.Item)
		}
	}
	return out
}

func (m Model) View() string {
	t := ui.Current()
	content := m.rows.View()

	var status []string
	switch {
	case m.loading:
		status = append(status, t.Muted.Render("loading…"))
	case m.loadErr != nil:
		status = append(status, t.Pending.Render("offline: "+store.KindOf(m.loadErr).String()))
	}
	if err := m.list.LastSaveError(); err != nil {
		status = append(status, t.Error.Render("last save failed: "+store.KindOf(err).String()))
	}
	if m.dragging {
		status = append(status, t.Dragging.Render("moving: ↑/↓ to place, enter to drop, esc to cancel"))
	}
	if len(status) > 0 {
		content += "\n" + strings.Join(status, "  ")
	}

	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += ": " + t.Error.Render(m.addErr)
		}
		bar := ui.Panel([]string{title, m.ti.View()})
		content += "\n" + bar
	}
	return ui.Panel([]string{content})
}
