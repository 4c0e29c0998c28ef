package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/observability"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// replaySubscriber hands its events to every new subscriber that matches them.
type replaySubscriber struct {
	events       []events.ChangeEvent
	filters      []events.Filter
	unsubscribed int
}

func (r *replaySubscriber) Subscribe(filter events.Filter, handler events.Handler) func() {
	r.filters = append(r.filters, filter)
	for _, event := range r.events {
		if filter.Matches(event) {
			handler(context.Background(), event)
		}
	}
	return func() { r.unsubscribed++ }
}

func TestParseSubscription(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		event   string
		filter  string
		want    events.Filter
		wantErr bool
	}{
		{name: "defaults to every event", table: "support_tickets", want: events.Filter{Table: events.TableTickets, Event: events.ChangeAny}},
		{name: "equality filter", table: "ticket_messages", event: "INSERT", filter: "ticket_id=eq.t-1",
			want: events.Filter{Table: events.TableMessages, Event: events.ChangeInsert, Column: "ticket_id", Value: "t-1"}},
		{name: "all tables", want: events.Filter{Event: events.ChangeAny}},
		{name: "unknown table", table: "users", wantErr: true},
		{name: "unknown event", table: "support_tickets", event: "TRUNCATE", wantErr: true},
		{name: "unsupported operator", table: "ticket_messages", filter: "ticket_id=gt.5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSubscription(tt.table, tt.event, tt.filter)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("filter = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func mustEvent(t *testing.T, table events.Table, key string, columns map[string]string) events.ChangeEvent {
	t.Helper()
	event, err := events.NewChangeEvent(table, events.ChangeInsert, key, map[string]string{"id": key}, columns)
	if err != nil {
		t.Fatal(err)
	}
	return event
}

func TestStreamWritesMatchingEventsUntilShutdown(t *testing.T) {
	feed := &replaySubscriber{events: []events.ChangeEvent{
		mustEvent(t, events.TableMessages, "m-1", map[string]string{"ticket_id": "t-1"}),
		mustEvent(t, events.TableMessages, "m-2", map[string]string{"ticket_id": "t-2"}),
		mustEvent(t, events.TableTickets, "t-1", nil),
	}}
	done := make(chan struct{})
	close(done)
	metrics := observability.NewMetrics()

	app := fiber.New()
	h := NewRealtimeHandler(feed, time.Hour, done, metrics, zap.NewNop())
	app.Get("/realtime", h.Stream)

	req := httptest.NewRequest("GET", "/realtime?table=ticket_messages&filter=ticket_id%3Deq.t-1", nil)
	resp, err := app.Test(req, 2000)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)

	if !strings.HasPrefix(body, "retry: 3000\n: subscribed\n\n") {
		t.Fatalf("missing preamble: %q", body)
	}
	if !strings.Contains(body, "event: change\n") || !strings.Contains(body, `"key":"m-1"`) {
		t.Fatalf("missing matching event: %q", body)
	}
	if strings.Contains(body, `"key":"m-2"`) || strings.Contains(body, `"key":"t-1"`) {
		t.Fatalf("stream leaked filtered events: %q", body)
	}
	if feed.unsubscribed != 1 {
		t.Fatalf("unsubscribed = %d", feed.unsubscribed)
	}
	if got := metrics.Snapshot().ActiveStreams; got != 0 {
		t.Fatalf("active streams = %d", got)
	}
}

func TestStreamRejectsBadSubscription(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	h := NewRealtimeHandler(&replaySubscriber{}, time.Hour, make(chan struct{}), observability.NewMetrics(), zap.NewNop())
	app.Get("/realtime", h.Stream)

	resp, err := app.Test(httptest.NewRequest("GET", "/realtime?table=users", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
