// Package assistant builds reply suggestions for tickets by calling the external AI function.
package assistant

import (
	"fmt"
	"strings"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// RecentMessageCount is how many trailing thread messages are included in the context.
const RecentMessageCount = 3

const promptPrefix = "Based on this customer support ticket, suggest a helpful response:\n\n"

// BuildContext renders the ticket, its customer and the last few messages as plain text.
func BuildContext(ticket domain.TicketView, messages []domain.TicketMessage) string {
	recent := messages
	if len(recent) > RecentMessageCount {
		recent = recent[len(recent)-RecentMessageCount:]
	}
	lines := make([]string, len(recent))
	for i, msg := range recent {
		lines[i] = fmt.Sprintf("%s: %s", msg.SenderType, msg.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket: %s\n", ticket.Title)
	fmt.Fprintf(&b, "Description: %s\n", ticket.Description)
	fmt.Fprintf(&b, "Category: %s\n", ticket.Category)
	fmt.Fprintf(&b, "Priority: %s\n", ticket.Priority)
	fmt.Fprintf(&b, "Customer: %s from %s\n", ticket.Customer.Name, ticket.Customer.Company)
	fmt.Fprintf(&b, "Recent messages: %s", strings.Join(lines, "\n"))
	return b.String()
}

// Prompt wraps a ticket context in the suggestion instruction.
func Prompt(context string) string {
	return promptPrefix + context
}
