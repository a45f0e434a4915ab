// Package app opens the configured storage backend and notifiers and builds
// the progress and goal services on top of them. Both binaries start here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/codeclip/internal/config"
	"github.com/felixgeelhaar/codeclip/internal/goal"
	"github.com/felixgeelhaar/codeclip/internal/notify"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/queue"
	"github.com/felixgeelhaar/codeclip/internal/storage"
	"github.com/felixgeelhaar/codeclip/internal/storage/local"
	"github.com/felixgeelhaar/codeclip/internal/storage/postgres"
	"github.com/felixgeelhaar/codeclip/internal/storage/redis"
	"github.com/felixgeelhaar/codeclip/internal/storage/sqlite"
)

// App holds the services shared by the CLI, daemon and MCP server
type App struct {
	Config   *config.LocalConfig
	Slots    storage.Slots
	Progress *progress.Service
	Goals    *goal.Service

	closers []func() error
}

// Options tweak how an App is built
type Options struct {
	// Dir is the codeclip home directory; defaults to config.EnsureDir()
	Dir string

	// Notify enables the configured notifiers. The CLI leaves queue
	// publishing to the daemon unless asked.
	Notify bool

	// Notifiers are appended to the configured ones
	Notifiers []progress.Notifier
}

// New opens storage and notifiers for cfg
func New(ctx context.Context, cfg *config.LocalConfig, opts Options) (*App, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = config.EnsureDir(); err != nil {
			return nil, err
		}
	}

	a := &App{Config: cfg}

	slots, closeSlots, err := OpenSlots(ctx, cfg, dir)
	if err != nil {
		return nil, err
	}
	a.Slots = slots
	a.closers = append(a.closers, closeSlots)

	notifiers := append([]progress.Notifier(nil), opts.Notifiers...)
	if opts.Notify {
		configured, closeNotifiers, err := openNotifiers(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		notifiers = append(configured, notifiers...)
		a.closers = append(a.closers, closeNotifiers)
	}

	loc := cfg.Location()
	svcOpts := []progress.ServiceOption{progress.WithLocation(loc)}
	if len(notifiers) > 0 {
		svcOpts = append(svcOpts, progress.WithNotifier(notify.Multi(notifiers)))
	}

	a.Progress = progress.NewService(progress.NewStore(slots), svcOpts...)
	a.Goals = goal.NewService(slots, goal.WithLocation(loc))

	return a, nil
}

// Close releases storage and broker connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenSlots opens the storage backend named in cfg. File and SQLite data
// live under dir unless cfg sets a path.
func OpenSlots(ctx context.Context, cfg *config.LocalConfig, dir string) (storage.Slots, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendFile, "":
		s, err := local.NewStore(cfg.DataPath(dir))
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, noop, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.DataPath(dir))
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewSlotStore(db), db.Close, nil

	case config.BackendRedis:
		s, err := redis.Open(ctx, redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { s.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openNotifiers builds the log and queue notifiers enabled in cfg. The queue
// notifier is wrapped in notify.Resilient.
func openNotifiers(cfg *config.LocalConfig) ([]progress.Notifier, func() error, error) {
	var out []progress.Notifier
	closeFn := func() error { return nil }

	if cfg.Notifications.Log {
		out = append(out, notify.NewLogNotifier(nil))
	}

	if cfg.Notifications.Queue {
		conn, err := queue.NewConnection(cfg.Notifications.RabbitMQURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect notification queue: %w", err)
		}
		qn := notify.NewQueueNotifier(queue.NewProducer(conn))
		out = append(out, notify.NewResilient(qn, notify.ResilientConfig{Logger: slog.Default()}))
		closeFn = conn.Close
	}

	return out, closeFn, nil
}
