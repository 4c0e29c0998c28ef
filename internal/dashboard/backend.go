// Package dashboard is the terminal support dashboard: a landing page and a dashboard with
// ticket, knowledge base and analytics views, kept current by the API's realtime stream.
package dashboard

import (
	"context"

	"github.com/supporthub/support-dashboard/internal/analytics"
	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/client"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
)

// Backend is the remote data the dashboard reads and writes.
type Backend interface {
	ListTickets(ctx context.Context, q client.TicketQuery) ([]domain.TicketView, error)
	ListMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	SendMessage(ctx context.Context, ticketID, message string, aiSuggested bool) (*domain.TicketMessage, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.TicketView, error)
	SuggestReply(ctx context.Context, ticketID string) (string, error)
	ListArticles(ctx context.Context, search, category string) ([]domain.Article, error)
	CreateArticle(ctx context.Context, req dto.CreateArticleRequest) (*domain.Article, error)
	Analytics(ctx context.Context) (*analytics.Report, error)
	Subscribe(ctx context.Context, filter events.Filter) (ChangeStream, error)
}

// ChangeStream delivers pushed change events until closed.
type ChangeStream interface {
	Next() (events.ChangeEvent, error)
	Close() error
}

type clientBackend struct {
	*client.Client
}

// FromClient adapts an API client to Backend.
func FromClient(c *client.Client) Backend {
	return clientBackend{Client: c}
}

func (b clientBackend) Subscribe(ctx context.Context, filter events.Filter) (ChangeStream, error) {
	stream, err := b.Client.Subscribe(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
