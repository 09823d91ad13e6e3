package refresher

import (
	"context"
	"time"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
)

// Target is reloaded on every tick.
type Target interface {
	Refresh(ctx context.Context) error
}

// Refresher keeps the cached reservations export warm so visitors rarely
// wait on the spreadsheet.
type Refresher struct {
	Target   Target
	Interval time.Duration
	Timeout  time.Duration
	Logger   *logging.Logger
}

func (r *Refresher) Run(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = logging.Default()
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// kick immediately
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = r.Interval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := r.Target.Refresh(ctx); err != nil {
		r.Logger.Warn("refresher: reservations refresh failed", "error", err)
		return
	}
	r.Logger.Debug("refresher: reservations refreshed", "duration_ms", time.Since(start).Milliseconds())
}
