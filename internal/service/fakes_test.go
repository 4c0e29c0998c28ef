package service

import (
	"context"
	"sync"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/repository/memory"
)

func newStore() *memory.Store {
	st := memory.NewStore()
	st.AddCustomer(domain.Customer{ID: "c-1", Name: "Ada", Company: "Acme", Email: "ada@acme.test"})
	return st
}

type countingArticles struct {
	*memory.Store
	creates int
}

func (r *countingArticles) Create(ctx context.Context, a *domain.Article) error {
	r.creates++
	return r.Store.Articles().Create(ctx, a)
}

func (r *countingArticles) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return r.Store.Articles().GetByID(ctx, id)
}

func (r *countingArticles) List(ctx context.Context) ([]domain.Article, error) {
	return r.Store.Articles().List(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordingPublisher) last() events.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type stubSuggester struct {
	reply    string
	err      error
	ticket   domain.TicketView
	messages []domain.TicketMessage
}

func (s *stubSuggester) Suggest(_ context.Context, t domain.TicketView, msgs []domain.TicketMessage) (string, error) {
	s.ticket = t
	s.messages = msgs
	return s.reply, s.err
}
