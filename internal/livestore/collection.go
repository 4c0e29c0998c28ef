// Package livestore keeps in-memory collections in sync with the change feed by merging
// pushed events by key instead of refetching whole collections.
package livestore

import (
	"fmt"
	"slices"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
)

// Collection is an ordered, keyed set of rows. It is not safe for concurrent use; the
// dashboard owns each collection from its single update loop.
type Collection[T any] struct {
	key   func(T) string
	less  func(a, b T) bool
	items []T
}

// New returns an empty collection ordered by less.
func New[T any](key func(T) string, less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{key: key, less: less}
}

// Reset replaces the contents, typically with the result of a full fetch.
func (c *Collection[T]) Reset(items []T) {
	c.items = append(c.items[:0:0], items...)
	c.sort()
}

// Items returns a copy of the ordered rows.
func (c *Collection[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len returns the number of rows.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Get looks a row up by key.
func (c *Collection[T]) Get(key string) (T, bool) {
	if i := c.index(key); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Upsert inserts item or replaces the row with the same key.
func (c *Collection[T]) Upsert(item T) {
	if i := c.index(c.key(item)); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
	}
	c.sort()
}

// Remove deletes the row with key and reports whether it existed.
func (c *Collection[T]) Remove(key string) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// Apply merges a change event: inserts and updates upsert the decoded record, deletes
// remove by key.
func (c *Collection[T]) Apply(event events.ChangeEvent) error {
	switch event.Type {
	case events.ChangeInsert, events.ChangeUpdate:
		var item T
		if err := event.Decode(&item); err != nil {
			return fmt.Errorf("decode %s %s: %w", event.Table, event.Key, err)
		}
		c.Upsert(item)
	case events.ChangeDelete:
		c.Remove(event.Key)
	default:
		return fmt.Errorf("unsupported change type %q", event.Type)
	}
	return nil
}

func (c *Collection[T]) index(key string) int {
	return slices.IndexFunc(c.items, func(item T) bool { return c.key(item) == key })
}

func (c *Collection[T]) sort() {
	if c.less == nil {
		return
	}
	slices.SortStableFunc(c.items, func(a, b T) int {
		switch {
		case c.less(a, b):
			return -1
		case c.less(b, a):
			return 1
		}
		return 0
	})
}

// NewTickets returns a ticket collection ordered newest first.
func NewTickets() *Collection[domain.TicketView] {
	return New(
		func(t domain.TicketView) string { return t.ID },
		func(a, b domain.TicketView) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
}

// NewMessages returns a thread collection ordered oldest first.
func NewMessages() *Collection[domain.TicketMessage] {
	return New(
		func(m domain.TicketMessage) string { return m.ID },
		func(a, b domain.TicketMessage) bool { return a.CreatedAt.Before(b.CreatedAt) },
	)
}

// NewArticles returns a knowledge base collection ordered newest first.
func NewArticles() *Collection[domain.Article] {
	return New(
		func(a domain.Article) string { return a.ID },
		func(a, b domain.Article) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
}
