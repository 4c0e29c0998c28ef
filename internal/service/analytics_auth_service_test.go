package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/auth"
	"github.com/supporthub/support-dashboard/internal/config"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/observability"
	"github.com/supporthub/support-dashboard/internal/worker"
)

func TestAnalyticsReport(t *testing.T) {
	f := newTicketFixture()
	a := f.create(t, "a", domain.TicketPriorityUrgent)
	f.create(t, "b", domain.TicketPriorityLow)
	if _, err := f.svc.UpdateStatus(context.Background(), nil, a.ID, domain.TicketStatusResolved); err != nil {
		t.Fatal(err)
	}

	report, err := NewAnalyticsService(f.store.Tickets()).Report(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Total != 2 || report.Summary.Resolved != 1 || report.Summary.Urgent != 1 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	if report.Status.Total() != 2 || report.Priority.Count("urgent") != 1 {
		t.Fatalf("histograms = %+v / %+v", report.Status, report.Priority)
	}
	if report.AverageResolutionSec == nil || report.AverageResolution == "n/a" {
		t.Fatalf("expected a resolution average, got %q", report.AverageResolution)
	}
}

func TestAuthLogin(t *testing.T) {
	st := newStore()
	tokens := auth.NewTokenManager("secret", 5)
	svc := NewAuthService(config.AuthConfig{BcryptCost: 4}, st.Agents(), tokens, nil)
	ctx := context.Background()

	agent, created, err := svc.EnsureAgent(ctx, "Grace", "grace@support.test", "pw")
	if err != nil || !created {
		t.Fatalf("ensure = %v, %v", created, err)
	}
	if _, again, _ := svc.EnsureAgent(ctx, "Grace", "grace@support.test", "other"); again {
		t.Fatal("second ensure must not create")
	}

	result, err := svc.Login(ctx, "grace@support.test", "pw")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.ParseToken(result.Token)
	if err != nil || claims.AgentID() != agent.ID {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	tests := []struct {
		name, email, password string
		want                  int
	}{
		{"wrong password", "grace@support.test", "nope", http.StatusUnauthorized},
		{"unknown email", "who@support.test", "pw", http.StatusUnauthorized},
		{"blank", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.email, tt.password); statusOf(err) != tt.want {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

type failingSink struct{ calls int }

func (s *failingSink) SendChange(context.Context, events.ChangeEvent) error {
	s.calls++
	return context.DeadlineExceeded
}

func TestChangeRelayFansOut(t *testing.T) {
	feed := events.NewInMemoryDispatcher()
	var received []events.ChangeEvent
	feed.Subscribe(events.Filter{Table: events.TableTickets}, func(_ context.Context, e events.ChangeEvent) {
		received = append(received, e)
	})
	sink := &failingSink{}
	metrics := observability.NewMetrics()
	relay := NewChangeRelay(feed, sink, metrics, zap.NewNop())

	event, _ := events.NewChangeEvent(events.TableTickets, events.ChangeUpdate, "t-1", nil, nil)
	if err := relay.Publish(context.Background(), event); err != nil {
		t.Fatalf("relay must swallow sink errors: %v", err)
	}
	if len(received) != 1 || sink.calls != 1 {
		t.Fatalf("received=%d sink=%d", len(received), sink.calls)
	}
	if metrics.Snapshot().Changes["support_tickets|UPDATE"] != 1 {
		t.Fatalf("changes = %v", metrics.Snapshot().Changes)
	}
}

// stalledSink never completes a write until its context ends.
type stalledSink struct{}

func (stalledSink) SendChange(ctx context.Context, _ events.ChangeEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestChangeRelayDoesNotWaitForSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := worker.NewSinkQueue(stalledSink{}, 8, 50*time.Millisecond, zap.NewNop())
	done := queue.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-done
	})

	relay := NewChangeRelay(events.NewInMemoryDispatcher(), queue, nil, zap.NewNop())
	event, _ := events.NewChangeEvent(events.TableMessages, events.ChangeInsert, "m-1", nil, map[string]string{"ticket_id": "t-1"})

	start := time.Now()
	if err := relay.Publish(context.Background(), event); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Publish took %v with a stalled sink", elapsed)
	}
}
