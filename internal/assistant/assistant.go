package assistant

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// Assistant produces reply suggestions for a ticket, caching them when a cache is configured.
type Assistant struct {
	invoker  Invoker
	cache    Cache
	function string
	ttl      time.Duration
	logger   *zap.Logger
}

// Options configures an Assistant. Cache may be nil.
type Options struct {
	Invoker  Invoker
	Cache    Cache
	Function string
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// New builds an Assistant.
func New(opts Options) *Assistant {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	function := opts.Function
	if function == "" {
		function = "ai"
	}
	return &Assistant{invoker: opts.Invoker, cache: opts.Cache, function: function, ttl: opts.CacheTTL, logger: logger}
}

// Invoke forwards a raw message to the configured function.
func (a *Assistant) Invoke(ctx context.Context, name, message string) (string, error) {
	return a.invoker.Invoke(ctx, name, message)
}

// Suggest returns a reply suggestion for ticket given its thread (oldest first).
func (a *Assistant) Suggest(ctx context.Context, ticket domain.TicketView, messages []domain.TicketMessage) (string, error) {
	key := ""
	if a.cache != nil && a.ttl > 0 {
		lastID := ""
		if len(messages) > 0 {
			lastID = messages[len(messages)-1].ID
		}
		key = CacheKey(ticket.ID, lastID)
		if cached, ok, err := a.cache.Get(ctx, key); err != nil {
			a.logger.Warn("suggestion cache read failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	suggestion, err := a.invoker.Invoke(ctx, a.function, Prompt(BuildContext(ticket, messages)))
	if err != nil {
		return "", err
	}

	if key != "" && suggestion != "" {
		if err := a.cache.Set(ctx, key, suggestion, a.ttl); err != nil {
			a.logger.Warn("suggestion cache write failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	return suggestion, nil
}
