package memory

import (
	"context"
	"testing"
	"time"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/repository"
)

func TestTimestampsStrictlyIncrease(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	a := s.AddCustomer(domain.Customer{Name: "a"})
	b := s.AddCustomer(domain.Customer{Name: "b"})
	if !b.CreatedAt.After(a.CreatedAt) {
		t.Fatalf("timestamps %v, %v", a.CreatedAt, b.CreatedAt)
	}
}

func TestMissingRowsReportNotFound(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, errTicket := s.Tickets().GetView(ctx, "x")
	_, errCustomer := s.Customers().GetByID(ctx, "x")
	_, errArticle := s.Articles().GetByID(ctx, "x")
	_, errAgent := s.Agents().GetByEmail(ctx, "x@y")
	_, errStatus := s.Tickets().UpdateStatus(ctx, "x", domain.TicketStatusClosed, nil)
	for i, err := range []error{errTicket, errCustomer, errArticle, errAgent, errStatus} {
		if !repository.IsNotFound(err) {
			t.Errorf("case %d: err = %v", i, err)
		}
	}
}

func TestSeed(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := Seed(ctx, s); err != nil {
		t.Fatal(err)
	}

	views, err := s.Tickets().ListViews(ctx, repository.TicketFilter{})
	if err != nil || len(views) != 3 {
		t.Fatalf("views = %d, %v", len(views), err)
	}
	if views[0].Title != "Dark mode please" {
		t.Fatalf("newest first expected, got %q", views[0].Title)
	}
	for _, v := range views {
		if v.Customer.ID != v.CustomerID {
			t.Fatalf("customer not joined for %s", v.ID)
		}
	}

	status := domain.TicketStatusInProgress
	inProgress, _ := s.Tickets().ListViews(ctx, repository.TicketFilter{Status: &status})
	if len(inProgress) != 1 {
		t.Fatalf("in progress = %d", len(inProgress))
	}

	articles, _ := s.Articles().List(ctx)
	if len(articles) != 2 || articles[0].Title != "Understanding your invoice" {
		t.Fatalf("articles = %v", articles)
	}
}
