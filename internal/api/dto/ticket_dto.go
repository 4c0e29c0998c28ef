package dto

import (
	"github.com/supporthub/support-dashboard/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  string                `json:"customer_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// CreateMessageRequest is an agent reply.
type CreateMessageRequest struct {
	Message     string `json:"message"`
	AISuggested bool   `json:"ai_suggested"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	domain.TicketView
	Messages []domain.TicketMessage `json:"messages"`
	History  []domain.TicketHistory `json:"history"`
}

// FunctionRequest invokes a remote function.
type FunctionRequest struct {
	Message string `json:"message"`
}

// FunctionResponse is the text produced by a remote function, also used for suggestions.
type FunctionResponse struct {
	Response string `json:"response"`
}
