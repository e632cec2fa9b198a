package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/errs"
)

// RunPoller refreshes the tour mirror immediately and then on a fixed
// interval until ctx is cancelled. The loop is tied to the caller's
// lifetime, so no refresh outlives the screen or command that wanted it.
// Refresh failures are logged and the loop keeps going; the next tick is
// the retry.
func (s *Service) RunPoller(ctx context.Context, interval time.Duration) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "sync.poller"),
		slog.Duration("interval", interval))
	logging.Info(logCtx, "tour poller started")

	refresh := func() {
		if _, err := s.RefreshTours(ctx); err != nil {
			logging.Warn(logCtx, "periodic tour refresh failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info(logCtx, "tour poller stopped")
			return nil
		case <-ticker.C:
			refresh()
		}
	}
}
