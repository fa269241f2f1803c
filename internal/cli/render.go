package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

func validFormat(f string) bool {
	switch strings.ToLower(f) {
	case "text", "json", "yaml", "yml":
		return true
	}
	return false
}

// render writes items in format. Machine formats always emit a list, never
// null, so scripts can iterate without checking.
func render(w io.Writer, items []model.Item, format string, group bool) error {
	if items == nil {
		items = []model.Item{}
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}

	if !group {
		_, err := fmt.Fprintln(w, ui.ListPanel(items))
		return err
	}
	_, err := fmt.Fprintln(w, ui.Panel(groupLines(items)))
	return err
}

// groupLines lays out pending items first, then done ones, each numbered
// by its position in the full list.
func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []string
	for i, it := range items {
		line := ui.ItemLine(i+1, it)
		if it.Checked {
			done = append(done, line)
		} else {
			pend = append(pend, line)
		}
	}

	lines := []string{ui.Header(items), "", t.Accent.Render("Pending")}
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	}
	lines = append(lines, pend...)
	lines = append(lines, "", t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	}
	return append(lines, done...)
}
