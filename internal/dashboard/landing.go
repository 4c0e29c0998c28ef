package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type feature struct {
	title string
	text  string
}

var features = []feature{
	{"Smart Ticket Management", "Prioritize, categorize and track every customer request in one place."},
	{"GenAI Integration", "Draft replies with AI suggestions grounded in the ticket conversation."},
	{"Knowledge Base", "Searchable articles that agents and the assistant can both draw on."},
	{"Real-time Analytics", "Status, priority and category trends that update as tickets change."},
	{"Live Chat", "Conversations stream in as customers and agents reply."},
	{"Automation", "Status changes and assistant calls without leaving the terminal."},
}

func (model Model) renderLanding() string {
	title := model.theme.Title.Render("AI Support Hub")
	subtitle := model.theme.Muted.Render("A customer support dashboard backed by Go, PostgreSQL and Redis, with AI-assisted replies.")

	cardWidth := max((model.width-8)/3, 24)
	cards := make([]string, len(features))
	for i, f := range features {
		cards[i] = model.theme.Border.Width(cardWidth).Render(
			model.theme.Title.Render(f.title) + "\n" + model.theme.Muted.Render(f.text))
	}
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
	}

	stack := model.theme.Muted.Render(strings.Join([]string{"Go", "Fiber", "PostgreSQL", "Redis", "Kafka", "Bubble Tea"}, " · "))
	prompt := model.theme.TabOn.Render("Press Enter to launch the dashboard")

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		title,
		subtitle,
		"",
		rows[0],
		rows[1],
		"",
		stack,
		"",
		prompt,
		model.theme.Muted.Render("q quit"),
	)
}
