package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses returns the fixed status set in display order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}
}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses() {
		if s == candidate {
			return true
		}
	}
	return false
}

// Label renders the status for humans ("in_progress" -> "In Progress").
func (s TicketStatus) Label() string {
	return humanize(string(s))
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities returns priorities from lowest to highest.
func TicketPriorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent}
}

func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities() {
		if p == candidate {
			return true
		}
	}
	return false
}

func (p TicketPriority) Label() string {
	return humanize(string(p))
}

// TicketCategory classifies what the ticket is about.
type TicketCategory string

const (
	TicketCategoryTechnical      TicketCategory = "technical"
	TicketCategoryBilling        TicketCategory = "billing"
	TicketCategoryGeneral        TicketCategory = "general"
	TicketCategoryFeatureRequest TicketCategory = "feature_request"
	TicketCategoryBugReport      TicketCategory = "bug_report"
)

// TicketCategories returns the fixed category set in display order.
func TicketCategories() []TicketCategory {
	return []TicketCategory{
		TicketCategoryTechnical,
		TicketCategoryBilling,
		TicketCategoryGeneral,
		TicketCategoryFeatureRequest,
		TicketCategoryBugReport,
	}
}

func (c TicketCategory) Valid() bool {
	for _, candidate := range TicketCategories() {
		if c == candidate {
			return true
		}
	}
	return false
}

func (c TicketCategory) Label() string {
	return humanize(string(c))
}

// Ticket is a customer-reported support issue.
type Ticket struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Category    TicketCategory `json:"category"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TicketView is a ticket joined with its customer.
type TicketView struct {
	Ticket
	Customer Customer `json:"customer"`
}
