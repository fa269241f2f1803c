// Package cli is the dragdo command line: a cobra tree whose root launches
// the interactive list and whose subcommands script the same operations.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dragdo/internal/config"
	"github.com/Makepad-fr/dragdo/internal/list"
	"github.com/Makepad-fr/dragdo/internal/store"
	"github.com/Makepad-fr/dragdo/internal/store/cache"
	"github.com/Makepad-fr/dragdo/internal/store/jsonbox"
	"github.com/Makepad-fr/dragdo/internal/tui"
	"github.com/Makepad-fr/dragdo/internal/ui"
)

// Options carries the process streams. Nil fields default to os.Stdout and
// os.Stderr.
type Options struct {
	Out io.Writer
	Err io.Writer
}

// usageError marks bad invocations; Run maps it to exit code 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// App is the state shared by every command of one invocation.
type App struct {
	opt Options

	configPath string
	baseURL    string
	boxID      string
	recordID   string
	cacheName  string
	cacheDir   string
	debounceMS int
	logLevel   string
	theme      string
	offline    bool

	cfg    *config.Config
	logger *log.Logger
}

// Run executes args and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}

	cmd := NewRootCmd(opt)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	ui.Fail(opt.Err, err.Error())
	if isUsage(err) {
		ui.Hint(opt.Err, "Run `dragdo --help` for usage.")
		return 2
	}
	return 1
}

func isUsage(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "flag needs an argument") ||
		strings.Contains(msg, "arg(s)") ||
		strings.HasPrefix(msg, "invalid argument")
}

// NewRootCmd builds the command tree.
func NewRootCmd(opt Options) *cobra.Command {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}
	app := &App{opt: opt}

	cmd := &cobra.Command{
		Use:           "dragdo",
		Short:         "A reorderable checklist kept in a jsonbox record",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Interactive list: m to grab, arrows to move, enter to drop
  dragdo

  # Scriptable commands
  dragdo add Buy milk
  dragdo ls --format json
  dragdo toggle 2
  dragdo mv 1 3

  # First run: create a record in your box
  dragdo --box box_0123456789abcdef remote create
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context())
		},
	}
	cmd.SetOut(opt.Out)
	cmd.SetErr(opt.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.configPath, "config", "", "Config file (skips the user and project file search)")
	pf.StringVar(&app.baseURL, "base-url", "", "jsonbox service root")
	pf.StringVar(&app.boxID, "box", "", "jsonbox box id")
	pf.StringVar(&app.recordID, "record", "", "jsonbox record id holding the list")
	pf.StringVar(&app.cacheName, "cache", "", "Local cache backend (file|sqlite|memory)")
	pf.StringVar(&app.cacheDir, "cache-dir", "", "Directory for cache files and the TUI log")
	pf.IntVar(&app.debounceMS, "debounce", 0, "Save quiet period in milliseconds (> 0)")
	pf.StringVar(&app.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.StringVar(&app.theme, "theme", "", "Color theme (classic|neon|mono)")
	pf.BoolVar(&app.offline, "offline", false, "Never talk to jsonbox; use the local cache only")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRemoteCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// setup loads the configuration, layers the flags that were set on top and
// builds the stderr logger.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var o config.Overrides
	if flags.Changed("base-url") {
		o.BaseURL = &a.baseURL
	}
	if flags.Changed("box") {
		o.BoxID = &a.boxID
	}
	if flags.Changed("record") {
		o.RecordID = &a.recordID
	}
	if flags.Changed("cache") {
		o.Cache = &a.cacheName
	}
	if flags.Changed("cache-dir") {
		o.CacheDir = &a.cacheDir
	}
	if flags.Changed("debounce") {
		o.DebounceMS = &a.debounceMS
	}
	if flags.Changed("log-level") {
		o.LogLevel = &a.logLevel
	}
	if flags.Changed("theme") {
		o.Theme = &a.theme
	}
	if flags.Changed("offline") {
		o.Offline = &a.offline
	}
	if err := cfg.Apply(o); err != nil {
		return usagef("%v", err)
	}

	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)
	a.logger = cfg.Log.NewLogger(a.opt.Err)
	a.logger.Debug("config loaded", "files", cfg.Files, "offline", cfg.Offline())
	return nil
}

// session is one opened list with the storage behind it.
type session struct {
	list    *list.List
	gateway *store.Gateway
	cache   cache.Cache
	logger  *log.Logger
}

func (s *session) Close() {
	s.list.Close()
	if err := s.cache.Close(); err != nil {
		s.logger.Warn("cache close failed", "err", err)
	}
}

// open wires cache, jsonbox client, gateway and list from the configuration.
func (a *App) open(logger *log.Logger) (*session, error) {
	cfg := a.cfg
	c, err := cache.Open(cfg.Cache.Backend, cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	var docs store.DocumentStore
	if !cfg.Remote.Offline && strings.TrimSpace(cfg.Remote.BoxID) != "" {
		client, err := jsonbox.New(jsonbox.Config{
			BaseURL: cfg.Remote.BaseURL,
			BoxID:   cfg.Remote.BoxID,
			Timeout: cfg.Timeout(),
			Logger:  logger,
		})
		if err != nil {
			_ = c.Close()
			return nil, usagef("%v", err)
		}
		docs = client
	}

	gw := store.NewGateway(docs, c, cfg.Remote.RecordID, store.WithGatewayLogger(logger))
	l := list.New(gw,
		list.WithDebounce(cfg.Debounce()),
		list.WithLogger(logger),
		list.WithCacheFallback(cfg.Cache.Fallback || cfg.Offline()),
	)
	return &session{list: l, gateway: gw, cache: c, logger: logger}, nil
}

// load runs the initial load. A remote failure is fatal unless the cache
// may stand in for it.
func (a *App) load(ctx context.Context, s *session) error {
	err := s.list.Initialize(ctx)
	if err == nil {
		return nil
	}
	if a.cfg.Offline() || a.cfg.Cache.Fallback {
		a.logger.Debug("using cached list", "reason", store.KindOf(err))
		return nil
	}
	return fmt.Errorf("load: %w", err)
}

// persist flushes the pending save and reports a remote failure. Offline,
// the cache write is all there is.
func (a *App) persist(ctx context.Context, s *session) error {
	s.list.Flush(ctx)
	err := s.list.LastSaveError()
	if err == nil {
		return nil
	}
	if a.cfg.Offline() && store.KindOf(err) == store.KindNotConfigured {
		return nil
	}
	return fmt.Errorf("saved locally, remote save failed: %w", err)
}

func (a *App) runTUI(ctx context.Context) error {
	var logger *log.Logger
	if path := a.cfg.Log.File; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = a.cfg.Log.NewLogger(f)
	} else {
		logger = log.New(io.Discard)
	}

	s, err := a.open(logger)
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("tui started", "record", s.gateway.RecordID(), "offline", a.cfg.Offline())
	if err := tui.Run(ctx, s.list); err != nil {
		return err
	}
	if err := s.list.LastSaveError(); err != nil && !a.cfg.Offline() {
		ui.Fail(a.opt.Err, "last save failed: "+err.Error())
	}
	return nil
}
