package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/dragdo/internal/model"
)

func TestProgressBar(t *testing.T) {
	SetTheme("classic")
	assert.Equal(t, "█████ 100%", ProgressBar(2, 2, 5))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
}

func TestMonoTheme_PlainASCII(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	out := ListPanel([]model.Item{
		{ID: "item-0", Content: "milk", Checked: true},
		{ID: "item-1", Content: "eggs"},
	})
	assert.Contains(t, out, "[x] milk")
	assert.Contains(t, out, "[ ] eggs")
	assert.Contains(t, out, "(item-1)")
	assert.Contains(t, out, "#####")
	assert.NotContains(t, out, "\x1b[")

	var buf bytes.Buffer
	Fail(&buf, "boom")
	OK(&buf, "saved")
	assert.Equal(t, "error: boom\nok saved\n", buf.String())
}

func TestListPanel_EmptyHint(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })
	out := ListPanel(nil)
	assert.True(t, strings.Contains(out, "nothing here yet"))
}
