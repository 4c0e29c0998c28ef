package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/repository"
	apperrors "github.com/supporthub/support-dashboard/pkg/util/errorutil"
)

// Suggester produces a reply suggestion from a ticket and its thread.
type Suggester interface {
	Suggest(ctx context.Context, ticket domain.TicketView, messages []domain.TicketMessage) (string, error)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets   repository.TicketRepository
	messages  repository.TicketMessageRepository
	history   repository.TicketHistoryRepository
	customers repository.CustomerRepository
	publisher events.Publisher
	suggester Suggester
	logger    *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	MessageRepo  repository.TicketMessageRepository
	HistoryRepo  repository.TicketHistoryRepository
	CustomerRepo repository.CustomerRepository
	Publisher    events.Publisher
	Suggester    Suggester
	Logger       *zap.Logger
}

// TicketListFilter holds the raw optional list filters. Empty values mean no filter.
type TicketListFilter struct {
	Status   string
	Priority string
	Category string
}

// TicketCreateInput describes ticket intake.
type TicketCreateInput struct {
	CustomerID  string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// MessageInput is an agent reply.
type MessageInput struct {
	Message     string
	AISuggested bool
}

// TicketDetail is a ticket with its thread and status timeline.
type TicketDetail struct {
	Ticket   domain.TicketView
	Messages []domain.TicketMessage
	History  []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:   deps.TicketRepo,
		messages:  deps.MessageRepo,
		history:   deps.HistoryRepo,
		customers: deps.CustomerRepo,
		publisher: deps.Publisher,
		suggester: deps.Suggester,
		logger:    logger,
	}
}

// ListTickets returns tickets with their customers, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.TicketView, error) {
	repoFilter := repository.TicketFilter{}
	if filter.Status != "" {
		status := domain.TicketStatus(filter.Status)
		if !status.Valid() {
			return nil, invalidEnum("status", filter.Status, domain.TicketStatuses())
		}
		repoFilter.Status = &status
	}
	if filter.Priority != "" {
		priority := domain.TicketPriority(filter.Priority)
		if !priority.Valid() {
			return nil, invalidEnum("priority", filter.Priority, domain.TicketPriorities())
		}
		repoFilter.Priority = &priority
	}
	if filter.Category != "" {
		category := domain.TicketCategory(filter.Category)
		if !category.Valid() {
			return nil, invalidEnum("category", filter.Category, domain.TicketCategories())
		}
		repoFilter.Category = &category
	}
	return s.tickets.ListViews(ctx, repoFilter)
}

// GetTicket loads a ticket with its messages and history.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error) {
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: *view, Messages: msgs, History: history}, nil
}

// CreateTicket opens a ticket for an existing customer.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.TicketView, error) {
	ticket := &domain.Ticket{
		CustomerID:  strings.TrimSpace(input.CustomerID),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Category:    input.Category,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Category == "" {
		ticket.Category = domain.TicketCategoryGeneral
	}
	if ticket.CustomerID == "" || ticket.Title == "" {
		return nil, apperrors.NewValidationError("customer_id and title are required", nil)
	}
	if !ticket.Priority.Valid() {
		return nil, invalidEnum("priority", string(ticket.Priority), domain.TicketPriorities())
	}
	if !ticket.Category.Valid() {
		return nil, invalidEnum("category", string(ticket.Category), domain.TicketCategories())
	}

	customer, err := s.customers.GetByID(ctx, ticket.CustomerID)
	if err != nil {
		return nil, notFoundAs(err, "customer", ticket.CustomerID)
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	view := &domain.TicketView{Ticket: *ticket, Customer: *customer}
	s.publish(ctx, events.TableTickets, events.ChangeInsert, view.ID, view, nil)
	return view, nil
}

// UpdateStatus moves a ticket to status, records who did it and returns the updated ticket.
func (s *TicketService) UpdateStatus(ctx context.Context, agentID *string, ticketID string, status domain.TicketStatus) (*domain.TicketView, error) {
	if !status.Valid() {
		return nil, invalidEnum("status", string(status), domain.TicketStatuses())
	}
	entry, err := s.tickets.UpdateStatus(ctx, ticketID, status, agentID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}

	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticketID),
		zap.String("from", string(entry.OldStatus)),
		zap.String("to", string(entry.NewStatus)),
	)
	s.publish(ctx, events.TableTickets, events.ChangeUpdate, view.ID, view, nil)
	return view, nil
}

// ListMessages returns a ticket's thread oldest first.
func (s *TicketService) ListMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.tickets.GetView(ctx, ticketID); err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}
	return s.messages.ListByTicket(ctx, ticketID)
}

// AddMessage appends an agent reply. Blank messages are rejected.
func (s *TicketService) AddMessage(ctx context.Context, agent *domain.Agent, ticketID string, input MessageInput) (*domain.TicketMessage, error) {
	body := strings.TrimSpace(input.Message)
	if body == "" {
		return nil, apperrors.NewValidationError("message must not be empty", map[string]any{"field": "message"})
	}
	if _, err := s.tickets.GetView(ctx, ticketID); err != nil {
		return nil, notFoundAs(err, "ticket", ticketID)
	}

	msg := &domain.TicketMessage{
		TicketID:    ticketID,
		SenderType:  domain.SenderAgent,
		SenderName:  agent.DisplayName(),
		Message:     body,
		AISuggested: input.AISuggested,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TableMessages, events.ChangeInsert, msg.ID, msg, map[string]string{"ticket_id": ticketID})
	return msg, nil
}

// SuggestReply asks the assistant for a reply to the ticket's latest state.
func (s *TicketService) SuggestReply(ctx context.Context, ticketID string) (string, error) {
	if s.suggester == nil {
		return "", apperrors.NewUpstreamError("ai assistant not configured", nil)
	}
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return "", notFoundAs(err, "ticket", ticketID)
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	suggestion, err := s.suggester.Suggest(ctx, *view, msgs)
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to get ai suggestion", err)
	}
	return suggestion, nil
}

func (s *TicketService) publish(ctx context.Context, table events.Table, changeType events.ChangeType, key string, record any, columns map[string]string) {
	if s.publisher == nil {
		return
	}
	event, err := events.NewChangeEvent(table, changeType, key, record, columns)
	if err != nil {
		s.logger.Error("encode change event", zap.String("table", string(table)), zap.Error(err))
		return
	}
	_ = s.publisher.Publish(ctx, event)
}

func invalidEnum[T ~string](field, value string, allowed []T) error {
	values := make([]string, len(allowed))
	for i, v := range allowed {
		values[i] = string(v)
	}
	return apperrors.NewValidationError("invalid "+field, map[string]any{
		"field":   field,
		"value":   value,
		"allowed": values,
	})
}
