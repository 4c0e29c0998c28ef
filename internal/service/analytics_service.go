package service

import (
	"context"

	"github.com/supporthub/support-dashboard/internal/analytics"
	"github.com/supporthub/support-dashboard/internal/repository"
)

// AnalyticsService derives dashboard metrics from the ticket collection.
type AnalyticsService struct {
	tickets repository.TicketRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository) *AnalyticsService {
	return &AnalyticsService{tickets: tickets}
}

// Report computes the analytics report over every ticket.
func (s *AnalyticsService) Report(ctx context.Context) (analytics.Report, error) {
	tickets, err := s.tickets.ListViews(ctx, repository.TicketFilter{})
	if err != nil {
		return analytics.Report{}, err
	}
	samples, err := s.tickets.ResolutionSamples(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Build(tickets, samples), nil
}
