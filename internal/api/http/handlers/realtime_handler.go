package handlers

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/observability"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// streamBuffer is how many events may queue for a slow client before its stream is closed.
const streamBuffer = 64

// Subscriber registers filtered change handlers.
type Subscriber interface {
	Subscribe(filter events.Filter, handler events.Handler) (unsubscribe func())
}

// RealtimeHandler streams change events as Server-Sent Events.
type RealtimeHandler struct {
	feed      Subscriber
	heartbeat time.Duration
	done      <-chan struct{}
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewRealtimeHandler constructs handler. Open streams end when done is closed.
func NewRealtimeHandler(feed Subscriber, heartbeat time.Duration, done <-chan struct{}, metrics *observability.Metrics, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{feed: feed, heartbeat: heartbeat, done: done, metrics: metrics, logger: logger}
}

// ParseSubscription builds a filter from the table, event and filter query values.
func ParseSubscription(table, event, filter string) (events.Filter, error) {
	f := events.Filter{Table: events.Table(table), Event: events.ChangeType(event)}
	if f.Table != "" && !f.Table.Valid() {
		return events.Filter{}, apperrors.NewValidationError("unknown table", map[string]any{"table": table})
	}
	if f.Event == "" {
		f.Event = events.ChangeAny
	}
	if !f.Event.Valid() {
		return events.Filter{}, apperrors.NewValidationError("unknown event", map[string]any{"event": event})
	}
	column, value, err := events.ParseFilter(filter)
	if err != nil {
		return events.Filter{}, apperrors.NewValidationError(err.Error(), map[string]any{"filter": filter})
	}
	f.Column, f.Value = column, value
	return f, nil
}

// Stream GET /realtime?table=&event=&filter=.
func (h *RealtimeHandler) Stream(c *fiber.Ctx) error {
	filter, err := ParseSubscription(c.Query("table"), c.Query("event"), c.Query("filter"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	requestID, _ := c.Locals("request_id").(string)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		h.serve(w, filter, requestID)
	}))
	return nil
}

func (h *RealtimeHandler) serve(w *bufio.Writer, filter events.Filter, requestID string) {
	queue := make(chan events.ChangeEvent, streamBuffer)
	overflow := make(chan struct{})
	var overflowOnce sync.Once

	unsubscribe := h.feed.Subscribe(filter, func(_ context.Context, event events.ChangeEvent) {
		select {
		case queue <- event:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	})
	defer unsubscribe()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	logger := h.logger.With(zap.String("request_id", requestID), zap.String("table", string(filter.Table)), zap.String("filter", filter.String()))
	logger.Debug("realtime stream opened")
	defer logger.Debug("realtime stream closed")

	if _, err := fmt.Fprintf(w, "retry: 3000\n: subscribed\n\n"); err != nil {
		return
	}
	if err := w.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event := <-queue:
			if err := writeEvent(w, event); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		case <-overflow:
			logger.Warn("realtime client too slow; closing stream")
			return
		case <-h.done:
			for {
				select {
				case event := <-queue:
					if err := writeEvent(w, event); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func writeEvent(w *bufio.Writer, event events.ChangeEvent) error {
	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", event.ID, data); err != nil {
		return err
	}
	return w.Flush()
}
