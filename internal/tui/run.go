package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/dragdo/internal/list"
)

// RunOption adjusts the program, mostly for tests.
type RunOption func(*[]tea.ProgramOption)

// WithIO swaps the terminal for in and out and drops the alt screen.
func WithIO(in io.Reader, out io.Writer) RunOption {
	return func(o *[]tea.ProgramOption) {
		*o = append(*o, tea.WithInput(in), tea.WithOutput(out))
	}
}

// Run starts the interactive list and blocks until the user quits. Any save
// still waiting on the quiet period is flushed before it returns.
func Run(ctx context.Context, l *list.List, opts ...RunOption) error {
	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	custom := len(opts) > 0
	for _, o := range opts {
		o(&popts)
	}
	if !custom {
		popts = append(popts, tea.WithAltScreen())
	}

	p := tea.NewProgram(New(ctx, l), popts...)

	// Changes made by Update are already in the model; this forwards the
	// ones made elsewhere, such as the initial load. Send must not run on
	// the Update goroutine.
	unsubscribe := l.Subscribe(func(s list.Snapshot) {
		go p.Send(snapshotMsg(s))
	})
	defer unsubscribe()

	_, err := p.Run()
	l.Flush(context.WithoutCancel(ctx))
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
