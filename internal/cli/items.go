package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var format string
	var group bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return usagef("ls: unknown format %q (want text, json or yaml)", format)
			}
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := app.load(cmd.Context(), s); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), s.list.Items(), format, group)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text|json|yaml)")
	cmd.Flags().BoolVar(&group, "group", false, "Group text output by pending/done")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <content...>",
		Short: "Append an item (content may be several words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return usagef("add: empty content")
			}
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := app.load(cmd.Context(), s); err != nil {
				return err
			}

			s.list.SetPendingInput(content)
			it, ok := s.list.Commit()
			if !ok {
				return usagef("add: empty content")
			}
			if err := app.persist(cmd.Context(), s); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "added "+it.ID)
			return nil
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id|index>",
		Short: "Check or uncheck an item by id or 1-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := app.load(cmd.Context(), s); err != nil {
				return err
			}

			items := s.list.Items()
			id := args[0]
			if model.IndexOf(items, id) < 0 {
				n, err := position(args[0], len(items))
				if err != nil {
					return err
				}
				id = items[n].ID
			}
			s.list.ToggleChecked(id)
			if err := app.persist(cmd.Context(), s); err != nil {
				return err
			}

			now := s.list.Items()[model.IndexOf(s.list.Items(), id)]
			state := "unchecked"
			if now.Checked {
				state = "checked"
			}
			ui.OK(cmd.OutOrStdout(), state+" "+id)
			return nil
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "mv <from> <to>",
		Aliases: []string{"move"},
		Short:   "Move the item at 1-based position from to position to",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := app.load(cmd.Context(), s); err != nil {
				return err
			}

			n := len(s.list.Items())
			from, err := position(args[0], n)
			if err != nil {
				return err
			}
			to, err := position(args[1], n)
			if err != nil {
				return err
			}
			if !s.list.Reorder(from, to, true) {
				return usagef("mv: nothing to move")
			}
			if err := app.persist(cmd.Context(), s); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("moved %d to %d", from+1, to+1))
			return nil
		},
	}
}

// position parses a 1-based index and returns it 0-based.
func position(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usagef("not an item id or index: %s", arg)
	}
	if i < 1 || i > n {
		return 0, usagef("index out of range: have %d, got %d (run `dragdo ls` to see valid indexes)", n, i)
	}
	return i - 1, nil
}
