package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
)

// ErrSinkQueueFull is returned by SinkQueue.SendChange when the buffer has no room.
var ErrSinkQueueFull = errors.New("change sink queue full")

// Sink is a downstream consumer of change events, such as the Kafka producer.
type Sink interface {
	SendChange(ctx context.Context, event events.ChangeEvent) error
}

// SinkQueue moves sink writes off the request path. SendChange only enqueues; a single
// goroutine started by Start writes each event with its own timeout.
type SinkQueue struct {
	sink         Sink
	queue        chan events.ChangeEvent
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewSinkQueue buffers up to size events in front of sink.
func NewSinkQueue(sink Sink, size int, writeTimeout time.Duration, logger *zap.Logger) *SinkQueue {
	if size <= 0 {
		size = 1
	}
	return &SinkQueue{
		sink:         sink,
		queue:        make(chan events.ChangeEvent, size),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// SendChange enqueues event without blocking. The caller's context is not used for the write.
func (q *SinkQueue) SendChange(_ context.Context, event events.ChangeEvent) error {
	select {
	case q.queue <- event:
		return nil
	default:
		return ErrSinkQueueFull
	}
}

// Start drains the queue until ctx is cancelled, then flushes what is already buffered.
// The returned channel closes once the worker has stopped.
func (q *SinkQueue) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event := <-q.queue:
				q.write(event)
			case <-ctx.Done():
				q.flush()
				return
			}
		}
	}()
	return done
}

func (q *SinkQueue) flush() {
	for {
		select {
		case event := <-q.queue:
			q.write(event)
		default:
			return
		}
	}
}

func (q *SinkQueue) write(event events.ChangeEvent) {
	ctx := context.Background()
	if q.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.writeTimeout)
		defer cancel()
	}
	if err := q.sink.SendChange(ctx, event); err != nil {
		q.logger.Warn("change sink write failed",
			zap.String("event_id", event.ID),
			zap.String("table", string(event.Table)),
			zap.String("key", event.Key),
			zap.Error(err))
	}
}
