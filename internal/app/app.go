package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/five82/fars/internal/config"
	"github.com/five82/fars/internal/fars"
	"github.com/five82/fars/internal/logging"
	"github.com/five82/fars/internal/prefs"
	"github.com/five82/fars/internal/state"
	"github.com/five82/fars/internal/ui"
)

// Options configure the fars application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/fars/prefs.toml
	PollEvery  int    // seconds; zero uses default
	Days       *int   // overrides config and prefs when set
	Dump       bool   // print the booking window as JSON and exit
	Out        io.Writer
}

// Run loads configuration and either dumps the current booking window or
// runs the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logger, closer, err := logging.Open(cfg.LogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	days := windowDays(cfg, userPrefs, opts.Days)

	clientOpts := cfg.ClientOptions()
	clientOpts.Logger = logger
	client := fars.NewClient(clientOpts)

	if opts.Dump {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return Dump(ctx, out, client, cfg.Bookable, days)
	}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	store := &state.Store{}
	poller := NewPoller(client, store, interval, days, cfg.Bookable, logger)
	poller.Start(ctx)
	logger.Info("fars started", "base_url", cfg.BaseURL, "days", days, "poll", interval)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Config:    &cfg,
		PollTick:  time.Second,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Days:      days,
		Refresh:   poller.Trigger,
		Logger:    logger,
	})
	if err != nil && ctx.Err() != nil {
		// Interrupted by signal.
		return nil
	}
	return err
}

// windowDays picks the booking window: flag, then saved prefs, then config.
func windowDays(cfg config.Config, p prefs.Prefs, override *int) int {
	if override != nil {
		return *override
	}
	return p.WindowDays(cfg.Days)
}
