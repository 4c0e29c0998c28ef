package domain

import "time"

// SenderType indicates who authored a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAgent    SenderType = "agent"
	SenderAI       SenderType = "ai"
)

func (s SenderType) Valid() bool {
	switch s {
	case SenderCustomer, SenderAgent, SenderAI:
		return true
	}
	return false
}

// DefaultAgentName is used when an agent reply has no authenticated name.
const DefaultAgentName = "Support Agent"

// TicketMessage is one entry of a ticket conversation. Messages are append-only.
type TicketMessage struct {
	ID          string     `json:"id"`
	TicketID    string     `json:"ticket_id"`
	SenderType  SenderType `json:"sender_type"`
	SenderName  string     `json:"sender_name"`
	Message     string     `json:"message"`
	AISuggested bool       `json:"ai_suggested"`
	CreatedAt   time.Time  `json:"created_at"`
}
