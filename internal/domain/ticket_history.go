package domain

import "time"

// TicketHistory is an immutable status-change audit entry.
type TicketHistory struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticket_id"`
	ChangedByID *string      `json:"changed_by_id,omitempty"`
	OldStatus   TicketStatus `json:"old_status"`
	NewStatus   TicketStatus `json:"new_status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ResolutionSample pairs a ticket's creation time with the first time it was resolved.
type ResolutionSample struct {
	TicketID   string
	CreatedAt  time.Time
	ResolvedAt time.Time
}
