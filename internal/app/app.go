// Package app wires the habits components together: configuration,
// logging, storage, the engine, and reminder delivery.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"habits/internal/backup"
	"habits/internal/config"
	"habits/internal/engine"
	"habits/internal/logging"
	"habits/internal/notify"
	"habits/internal/reminder"
	"habits/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// midnightSpec rebuilds the reminder window when the day rolls over.
const midnightSpec = "0 0 * * *"

// Options adjusts how New builds the application.
type Options struct {
	// Version is recorded in backup manifests.
	Version string

	// Stderr tees log output to stderr. Leave it off for the TUI.
	Stderr bool

	// Notifier overrides the platform notifier.
	Notifier notify.Notifier

	// Clock overrides time.Now for the engine and reminders.
	Clock func() time.Time
}

// App holds the wired components. Every field is ready after New.
type App struct {
	Config    *config.Config
	Log       *log.Logger
	Store     storage.Store
	Engine    *engine.Engine
	Center    *notify.Center
	Scheduler *reminder.Scheduler
	Backups   *backup.Manager

	logCloser io.Closer
}

// New builds the application from cfg and loads the persisted habits. The
// load syncs every reminder through the scheduler.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.LogPath(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Stderr:     opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	dataDir := cfg.GetDataDir()
	store, err := storage.Open(cfg.Storage.Backend, dataDir, logger)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	n := opts.Notifier
	if n == nil {
		n = notify.New()
	}
	center := notify.NewCenter(n, notify.CenterOptions{
		Enabled: cfg.Notifications.Enabled,
		Sound:   cfg.Notifications.Sound,
		Logger:  logger,
	})
	sched := reminder.NewScheduler(center,
		reminder.WithLogger(logger),
		reminder.WithText(cfg.Notifications.Title, cfg.Notifications.Body),
		reminder.WithClock(opts.Clock),
	)

	eng := engine.New(store, logger)
	if opts.Clock != nil {
		eng.SetNowFunc(opts.Clock)
		center.SetNowFunc(opts.Clock)
	}
	eng.Subscribe(sched.HandleEvent)

	a := &App{
		Config:    cfg,
		Log:       logger,
		Store:     store,
		Engine:    eng,
		Center:    center,
		Scheduler: sched,
		Backups:   backup.NewManager(dataDir, store, opts.Version),
		logCloser: logCloser,
	}

	logger.Debug("starting", "data_dir", dataDir, "backend", cfg.Storage.Backend, "store", store.Path())
	eng.Load(ctx)
	return a, nil
}

// Reload re-reads the store, picking up changes written by other
// processes, and re-syncs reminders. Reminders already due are delivered
// first: the re-sync cancels every slot and never plans one in the past.
func (a *App) Reload(ctx context.Context) {
	if sent := a.Center.Dispatch(ctx); sent > 0 {
		a.Log.Debug("delivered due reminders before reload", "sent", sent)
	}
	a.Engine.Load(ctx)
}

// RunDaemon delivers reminders until ctx is cancelled. Habits are reloaded
// on the configured resync interval and at midnight so the reminder window
// keeps rolling forward.
func (a *App) RunDaemon(ctx context.Context) error {
	if err := a.Center.Start(); err != nil {
		return err
	}
	defer a.Center.Stop()

	interval := a.Config.ResyncInterval()
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { a.Reload(ctx) }); err != nil {
		return fmt.Errorf("failed to add resync job: %w", err)
	}
	if _, err := c.AddFunc(midnightSpec, func() { a.Reload(ctx) }); err != nil {
		return fmt.Errorf("failed to add midnight job: %w", err)
	}
	c.Start()

	a.Log.Info("reminder daemon started", "resync", interval, "pending", len(a.Center.Pending()))
	<-ctx.Done()

	<-c.Stop().Done()
	a.Log.Info("reminder daemon stopped")
	return nil
}

// Close releases the store and the log file.
func (a *App) Close() error {
	a.Center.Stop()
	return errors.Join(a.Store.Close(), a.logCloser.Close())
}
