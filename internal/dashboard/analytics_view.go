package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/supporthub/support-dashboard/internal/analytics"
)

const barWidth = 30

func (model Model) renderAnalytics() string {
	if model.ticketsLoading {
		return model.spinner.View() + " Loading analytics..."
	}
	report := analytics.Build(model.tickets.Items(), nil)

	cards := []string{
		model.card("Total Tickets", fmt.Sprint(report.Summary.Total)),
		model.card("Open Tickets", fmt.Sprint(report.Summary.Open)),
		model.card("Resolved", fmt.Sprint(report.Summary.Resolved)),
		model.card("Avg Resolution", model.avgResolution),
	}

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		model.histogram("Ticket Status Distribution", report.Status.NonZero()),
		"  ",
		model.histogram("Priority Distribution", report.Priority),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
		charts,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			model.histogram("Category Breakdown", report.Category.NonZero()),
			"  ",
			model.renderRecent(report),
		),
	)
}

func (model Model) card(title, value string) string {
	return model.theme.Border.Width(20).Render(model.theme.Muted.Render(title) + "\n" + model.theme.Title.Render(value))
}

// histogram draws one horizontal bar per bucket, scaled to the largest count.
func (model Model) histogram(title string, h analytics.Histogram) string {
	var b strings.Builder
	b.WriteString(model.theme.Title.Render(title) + "\n")
	if len(h) == 0 {
		b.WriteString(model.theme.Muted.Render("No data"))
		return model.theme.Border.Render(b.String())
	}

	peak, labelWidth := 0, 0
	for _, bucket := range h {
		peak = max(peak, bucket.Count)
		labelWidth = max(labelWidth, len(bucket.Label))
	}
	for _, bucket := range h {
		n := 0
		if peak > 0 {
			n = bucket.Count * barWidth / peak
		}
		if bucket.Count > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%-*s %s %d\n", labelWidth, bucket.Label, model.theme.Bar.Render(strings.Repeat("█", n)), bucket.Count)
	}
	return model.theme.Border.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (model Model) renderRecent(report analytics.Report) string {
	var b strings.Builder
	b.WriteString(model.theme.Title.Render("Recent Activity") + "\n")
	if len(report.Recent) == 0 {
		b.WriteString(model.theme.Muted.Render("No tickets found"))
		return model.theme.Border.Render(b.String())
	}
	for _, ticket := range report.Recent {
		fmt.Fprintf(&b, "%s %s\n  %s\n",
			model.theme.status(string(ticket.Status)).Render("●"),
			truncate(ticket.Title, 40),
			model.theme.Muted.Render(ticket.Customer.Name+" · "+ticket.CreatedAt.Local().Format(timeLayout)))
	}
	return model.theme.Border.Render(strings.TrimSuffix(b.String(), "\n"))
}
