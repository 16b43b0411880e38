package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/tablesync/internal/state"
)

const maxBackoff = 30 * time.Second

type reloader interface {
	Reload() bool
	Snapshot() state.Snapshot
}

// Refresh reloads target every interval until ctx is cancelled, backing off
// exponentially while terminal failures accumulate. A non-positive interval
// disables refreshing and returns immediately.
func Refresh(ctx context.Context, target reloader, interval time.Duration, log *zap.Logger) error {
	if interval <= 0 {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		target.Reload()
		failures := target.Snapshot().ConsecutiveFailures
		wait := calculateBackoff(failures, interval)
		if failures > 0 {
			log.Debug("refresh backing off", zap.Int("failures", failures), zap.Duration("wait", wait))
		}
		timer.Reset(wait)
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
