package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Relay is a long-running loop that returns when its context ends or its connection drops.
type Relay interface {
	Run(ctx context.Context) error
}

const (
	minRestartDelay = 500 * time.Millisecond
	maxRestartDelay = 30 * time.Second
)

// StartRealtimeRelay runs relay in the background, restarting it with exponential backoff
// until ctx is cancelled. The returned channel closes once the worker has stopped.
func StartRealtimeRelay(ctx context.Context, relay Relay, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if relay == nil {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		delay := minRestartDelay
		for {
			started := time.Now()
			err := relay.Run(ctx)
			if ctx.Err() != nil {
				logger.Info("realtime relay stopped")
				return
			}
			if time.Since(started) > maxRestartDelay {
				delay = minRestartDelay
			}
			logger.Warn("realtime relay exited; restarting", zap.Error(err), zap.Duration("backoff", delay))

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxRestartDelay {
				delay = maxRestartDelay
			}
		}
	}()
	return done
}
