package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dragdo/internal/store"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

func newRemoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the jsonbox record",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(newRemoteCreateCmd(app))
	cmd.AddCommand(newRemotePullCmd(app))
	return cmd
}

func newRemoteCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a record holding the cached list and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.Remote.Offline || strings.TrimSpace(app.cfg.Remote.BoxID) == "" {
				return usagef("remote create: a box id is required (--box or remote.box_id) and --offline must be off")
			}
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.gateway.LoadCached(cmd.Context())
			if err != nil && store.KindOf(err) != store.KindNotFound {
				return fmt.Errorf("read cache: %w", err)
			}
			id, err := s.gateway.Create(cmd.Context(), items)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.OK(out, fmt.Sprintf("created record %s with %d items", id, len(items)))
			ui.Hint(out, fmt.Sprintf("Add to dragdo.toml:\n[remote]\nbox_id = %q\nrecord_id = %q", app.cfg.Remote.BoxID, id))
			return nil
		},
	}
}

func newRemotePullCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the local cache with the remote record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(app.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.gateway.Load(cmd.Context())
			if err != nil {
				if store.KindOf(err) == store.KindNotConfigured {
					return usagef("remote pull: %v", err)
				}
				return err
			}
			if err := s.gateway.StoreCached(cmd.Context(), items); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("pulled %d items into the %s cache", len(items), app.cfg.Cache.Backend))
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(app.cfg.Files) == 0 {
				fmt.Fprintln(out, "# no config file found; defaults, environment and flags only")
			}
			for _, f := range app.cfg.Files {
				fmt.Fprintln(out, "# read "+f)
			}
			if err := app.cfg.Write(out); err != nil {
				return fmt.Errorf("config: write: %w", err)
			}
			return nil
		},
	}
}
