package ruleset

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

// Reloader keeps a validator's rule set in sync with a definition file.
// A failed reload leaves the validator's current rule set untouched.
type Reloader struct {
	Path      string
	Validator *validator.Validator
	// Loader defaults to a new Loader on first use.
	Loader *Loader
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// Interval is the polling period Run uses when called with a non-positive one.
	Interval time.Duration

	once    sync.Once
	mu      sync.Mutex
	modTime time.Time
}

// NewReloader returns a Reloader for cfg.File that polls every cfg.ReloadInterval.
func NewReloader(cfg Config, v *validator.Validator, log *slog.Logger) *Reloader {
	return &Reloader{Path: cfg.File, Validator: v, Logger: log, Interval: cfg.ReloadInterval}
}

func (r *Reloader) init() {
	r.once.Do(func() {
		if r.Loader == nil {
			r.Loader = NewLoader()
		}
		if r.Logger == nil {
			r.Logger = logger.Discard()
		}
		r.Logger = r.Logger.With(logger.Component("ruleset"))
	})
}

// Reload reads Path and installs the resulting rule set.
func (r *Reloader) Reload(ctx context.Context) error {
	r.init()
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.Path)
	if err != nil {
		r.Logger.ErrorContext(ctx, "rule set reload failed", slog.String("path", r.Path), logger.Error(err))
		return err
	}
	return r.load(ctx, info.ModTime())
}

func (r *Reloader) load(ctx context.Context, modTime time.Time) error {
	r.modTime = modTime
	rs, err := r.Loader.LoadFile(r.Path)
	if err != nil {
		r.Logger.ErrorContext(ctx, "rule set reload failed, keeping previous rules",
			slog.String("path", r.Path), logger.Error(err))
		return err
	}
	r.Validator.Reload(rs)
	return nil
}

// Run reloads on every tick in which the file's modification time changed,
// until ctx is done. Reload errors are logged and do not stop the loop; a
// broken file is retried only after it changes again. A non-positive interval
// falls back to r.Interval; if that is not positive either, Run returns
// ErrNoReloadInterval.
func (r *Reloader) Run(ctx context.Context, interval time.Duration) error {
	r.init()
	if interval <= 0 {
		interval = r.Interval
	}
	if interval <= 0 {
		return ErrNoReloadInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.reloadIfChanged(ctx)
		}
	}
}

func (r *Reloader) reloadIfChanged(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.Path)
	if err != nil {
		r.Logger.WarnContext(ctx, "rule set file unavailable", slog.String("path", r.Path), logger.Error(err))
		return
	}
	if info.ModTime().Equal(r.modTime) {
		return
	}
	_ = r.load(ctx, info.ModTime())
}
