// Package memory implements the repository interfaces in process memory. The API uses it
// when no Postgres DSN is configured, and tests use it in place of a database.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/repository"
)

// Store holds every table. Lookups that miss return pgx.ErrNoRows like the Postgres
// repositories do.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	last      time.Time
	customers map[string]domain.Customer
	tickets   map[string]domain.Ticket
	messages  []domain.TicketMessage
	history   []domain.TicketHistory
	articles  []domain.Article
	agents    map[string]domain.Agent
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		customers: map[string]domain.Customer{},
		tickets:   map[string]domain.Ticket{},
		agents:    map[string]domain.Agent{},
	}
}

// SetClock replaces the time source. Timestamps stay strictly increasing regardless.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddCustomer inserts or replaces a customer, assigning an id when empty.
func (s *Store) AddCustomer(c domain.Customer) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.stamp()
	}
	s.customers[c.ID] = c
	return c
}

// AddMessage inserts a message as-is, e.g. a customer message for seed data.
func (s *Store) AddMessage(m domain.TicketMessage) domain.TicketMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.stamp()
	}
	s.messages = append(s.messages, m)
	return m
}

func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Messages returns the message repository view of the store.
func (s *Store) Messages() repository.TicketMessageRepository { return messageRepo{s} }

// History returns the history repository view of the store.
func (s *Store) History() repository.TicketHistoryRepository { return historyRepo{s} }

// Customers returns the customer repository view of the store.
func (s *Store) Customers() repository.CustomerRepository { return customerRepo{s} }

// Articles returns the article repository view of the store.
func (s *Store) Articles() repository.ArticleRepository { return articleRepo{s} }

// Agents returns the agent repository view of the store.
func (s *Store) Agents() repository.AgentRepository { return agentRepo{s} }

type ticketRepo struct{ *Store }

func (r ticketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = r.stamp()
	t.UpdatedAt = t.CreatedAt
	r.tickets[t.ID] = *t
	return nil
}

func (r ticketRepo) view(t domain.Ticket) domain.TicketView {
	return domain.TicketView{Ticket: t, Customer: r.customers[t.CustomerID]}
}

func (r ticketRepo) GetView(_ context.Context, id string) (*domain.TicketView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	v := r.view(t)
	return &v, nil
}

func (r ticketRepo) ListViews(_ context.Context, f repository.TicketFilter) ([]domain.TicketView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TicketView{}
	for _, t := range r.tickets {
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Category != nil && t.Category != *f.Category {
			continue
		}
		out = append(out, r.view(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r ticketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, changedBy *string) (*domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	h := domain.TicketHistory{
		ID:          uuid.NewString(),
		TicketID:    id,
		ChangedByID: changedBy,
		OldStatus:   t.Status,
		NewStatus:   status,
		CreatedAt:   r.stamp(),
	}
	t.Status = status
	t.UpdatedAt = h.CreatedAt
	r.tickets[id] = t
	r.history = append(r.history, h)
	return &h, nil
}

func (r ticketRepo) ResolutionSamples(_ context.Context) ([]domain.ResolutionSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	first := map[string]time.Time{}
	for _, h := range r.history {
		if h.NewStatus != domain.TicketStatusResolved {
			continue
		}
		if at, ok := first[h.TicketID]; !ok || h.CreatedAt.Before(at) {
			first[h.TicketID] = h.CreatedAt
		}
	}
	out := make([]domain.ResolutionSample, 0, len(first))
	for id, at := range first {
		out = append(out, domain.ResolutionSample{TicketID: id, CreatedAt: r.tickets[id].CreatedAt, ResolvedAt: at})
	}
	return out, nil
}

type messageRepo struct{ *Store }

func (r messageRepo) Create(_ context.Context, m *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = uuid.NewString()
	m.CreatedAt = r.stamp()
	r.messages = append(r.messages, *m)
	return nil
}

func (r messageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TicketMessage{}
	for _, m := range r.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TicketMessage) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

type historyRepo struct{ *Store }

func (r historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TicketHistory{}
	for _, h := range r.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

type customerRepo struct{ *Store }

func (r customerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

type articleRepo struct{ *Store }

func (r articleRepo) Create(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = r.stamp()
	if a.Tags == nil {
		a.Tags = []string{}
	}
	r.articles = append(r.articles, *a)
	return nil
}

func (r articleRepo) GetByID(_ context.Context, id string) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r articleRepo) List(_ context.Context) ([]domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.articles)
	if out == nil {
		out = []domain.Article{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type agentRepo struct{ *Store }

func (r agentRepo) Create(_ context.Context, a *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.Email = strings.ToLower(a.Email)
	a.CreatedAt = r.stamp()
	a.UpdatedAt = a.CreatedAt
	r.agents[a.ID] = *a
	return nil
}

func (r agentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r agentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, a := range r.agents {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}
