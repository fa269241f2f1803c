package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/dragdo/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	full, empty := "█", "░"
	if Current().Name == "mono" {
		full, empty = "#", "."
	}
	bar := strings.Repeat(full, filled) + strings.Repeat(empty, width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines in the current theme's border.
func Panel(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Header is the one-line summary shown above a list.
func Header(items []model.Item) string {
	t := Current()
	done, pending := model.Stats(items)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(items),
	)
}

// ItemLine renders one row: position, checkbox and content.
func ItemLine(pos int, it model.Item) string {
	t := Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Content
	if it.Checked {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	return fmt.Sprintf("%2d. %s %s %s", pos, box, text, t.Muted.Render("("+it.ID+")"))
}

// ListPanel renders items as a framed, numbered list with a progress bar.
func ListPanel(items []model.Item) string {
	lines := []string{Header(items), ""}
	if len(items) == 0 {
		lines = append(lines, Current().Muted.Render("nothing here yet, try: dragdo add <content>"))
	}
	for i, it := range items {
		lines = append(lines, ItemLine(i+1, it))
	}
	done, _ := model.Stats(items)
	lines = append(lines, "", ProgressBar(done, len(items), 28))
	return Panel(lines)
}
