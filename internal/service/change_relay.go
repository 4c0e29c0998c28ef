package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/observability"
)

// ChangeSink receives every change event written by this instance, e.g. a Kafka producer.
type ChangeSink interface {
	SendChange(ctx context.Context, event events.ChangeEvent) error
}

// ChangeRelay is the publisher handed to the services. It forwards each change to the feed,
// mirrors it to the optional sink and records it. Failures are logged, never returned, since
// the row change has already been committed.
type ChangeRelay struct {
	feed    events.Publisher
	sink    ChangeSink
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewChangeRelay creates the relay. sink and metrics may be nil.
func NewChangeRelay(feed events.Publisher, sink ChangeSink, metrics *observability.Metrics, logger *zap.Logger) *ChangeRelay {
	return &ChangeRelay{feed: feed, sink: sink, metrics: metrics, logger: logger}
}

// Publish implements events.Publisher.
func (r *ChangeRelay) Publish(ctx context.Context, event events.ChangeEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("table", string(event.Table)),
		zap.String("type", string(event.Type)),
		zap.String("key", event.Key),
	}
	r.logger.Info("change", fields...)
	r.metrics.RecordChange(string(event.Table), string(event.Type))

	if r.feed != nil {
		if err := r.feed.Publish(ctx, event); err != nil {
			r.logger.Error("change feed publish failed", append(fields, zap.Error(err))...)
		}
	}
	if r.sink != nil {
		if err := r.sink.SendChange(ctx, event); err != nil {
			r.logger.Warn("change sink write failed", append(fields, zap.Error(err))...)
		}
	}
	return nil
}
