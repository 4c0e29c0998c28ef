package livestore

import (
	"testing"
	"time"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
)

var base = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func ticket(id string, minutes int, status domain.TicketStatus) domain.TicketView {
	view := domain.TicketView{Customer: domain.Customer{ID: "c-1", Name: "Ada"}}
	view.ID = id
	view.Status = status
	view.CreatedAt = base.Add(time.Duration(minutes) * time.Minute)
	return view
}

func change(t *testing.T, changeType events.ChangeType, key string, record any) events.ChangeEvent {
	t.Helper()
	event, err := events.NewChangeEvent(events.TableTickets, changeType, key, record, nil)
	if err != nil {
		t.Fatal(err)
	}
	return event
}

func keys(items []domain.TicketView) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestTicketsMergeByKey(t *testing.T) {
	tickets := NewTickets()
	tickets.Reset([]domain.TicketView{ticket("a", 0, domain.TicketStatusOpen), ticket("b", 10, domain.TicketStatusOpen)})

	if got := keys(tickets.Items()); got[0] != "b" || got[1] != "a" {
		t.Fatalf("initial order = %v", got)
	}

	if err := tickets.Apply(change(t, events.ChangeUpdate, "a", ticket("a", 0, domain.TicketStatusResolved))); err != nil {
		t.Fatal(err)
	}
	updated, ok := tickets.Get("a")
	if !ok || updated.Status != domain.TicketStatusResolved || updated.Customer.Name != "Ada" {
		t.Fatalf("update not merged: %+v", updated)
	}
	if tickets.Len() != 2 {
		t.Fatalf("update must not duplicate rows, len = %d", tickets.Len())
	}

	if err := tickets.Apply(change(t, events.ChangeInsert, "c", ticket("c", 5, domain.TicketStatusOpen))); err != nil {
		t.Fatal(err)
	}
	if got := keys(tickets.Items()); len(got) != 3 || got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("order after insert = %v", got)
	}

	if err := tickets.Apply(change(t, events.ChangeDelete, "b", nil)); err != nil {
		t.Fatal(err)
	}
	if _, ok := tickets.Get("b"); ok {
		t.Fatal("deleted row still present")
	}
}

func TestApplyRejectsUnknownType(t *testing.T) {
	tickets := NewTickets()
	if err := tickets.Apply(events.ChangeEvent{Type: "TRUNCATE"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestMessagesOldestFirst(t *testing.T) {
	messages := NewMessages()
	messages.Upsert(domain.TicketMessage{ID: "2", CreatedAt: base.Add(time.Minute)})
	messages.Upsert(domain.TicketMessage{ID: "1", CreatedAt: base})
	items := messages.Items()
	if items[0].ID != "1" || items[1].ID != "2" {
		t.Fatalf("order = %v", items)
	}
	if messages.Remove("missing") {
		t.Fatal("remove of unknown key reported true")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	articles := NewArticles()
	articles.Reset([]domain.Article{{ID: "x", Title: "Original"}})
	items := articles.Items()
	items[0].Title = "Mutated"
	if got, _ := articles.Get("x"); got.Title != "Original" {
		t.Fatal("Items must not expose internal storage")
	}
}
