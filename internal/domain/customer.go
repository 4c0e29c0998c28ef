package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// Customer is the requester of a ticket. Read-only from the dashboard.
type Customer struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Company   string      `json:"company"`
	Email     string      `json:"email"`
	Phone     null.String `json:"phone"`
	CreatedAt time.Time   `json:"created_at"`
}
