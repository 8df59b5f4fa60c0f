// Package poll runs the periodic producer loops. Each loop performs one unit
// of work, then sleeps the full interval regardless of how long the work
// took, so a slow tick delays the next one by its own duration only and
// never accumulates catch-up ticks.
package poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
)

// Tick is one unit of loop work. A returned error is logged and the loop
// continues on the next tick; recovery is cadence-driven, not retry-driven.
type Tick func(ctx context.Context) error

// Run drives tick at the fixed interval until ctx is cancelled. Cancellation
// is observed both at the top of every iteration and during the sleep.
// Blocks until the loop stops.
func Run(ctx context.Context, name string, interval time.Duration, logger *slog.Logger, tick Tick) {
	logger.Info("loop started", "loop", name, "interval_seconds", interval.Seconds())

	for {
		if ctx.Err() != nil {
			logger.Info("loop stopped", "loop", name)
			return
		}

		if err := tick(ctx); err != nil {
			metrics.IncTickErrors(name)
			logger.Warn("tick failed", "loop", name, "error", err)
		}
		metrics.IncTick(name)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("loop stopped", "loop", name)
			return
		case <-timer.C:
		}
	}
}
