package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/livestore"
)

const (
	skeletonRows = 5
	timeLayout   = "Jan 2, 2006 15:04"
)

// detailPane is the state of the selected ticket: its thread, the compose box and the AI
// suggestion.
type detailPane struct {
	ticketID string
	messages *livestore.Collection[domain.TicketMessage]

	compose   textarea.Model
	composing bool
	sending   bool

	suggestion string
	suggesting bool
	// promoted marks compose text that came from the AI suggestion.
	promoted bool
}

func newDetailPane() detailPane {
	compose := textarea.New()
	compose.Placeholder = "Type your response..."
	compose.ShowLineNumbers = false
	compose.SetHeight(3)
	compose.CharLimit = 0
	return detailPane{messages: livestore.NewMessages(), compose: compose}
}

// canSend reports whether the compose box holds a sendable reply.
func (d detailPane) canSend() bool {
	return !d.sending && strings.TrimSpace(d.compose.Value()) != ""
}

// nextStatus steps through the fixed status set, wrapping at both ends.
func nextStatus(current domain.TicketStatus, step int) domain.TicketStatus {
	statuses := domain.TicketStatuses()
	i := slices.Index(statuses, current)
	if i < 0 {
		return statuses[0]
	}
	n := len(statuses)
	return statuses[((i+step)%n+n)%n]
}

func (model *Model) selectedTicket() (domain.TicketView, bool) {
	if model.detail.ticketID == "" {
		return domain.TicketView{}, false
	}
	return model.tickets.Get(model.detail.ticketID)
}

func (model *Model) clampTicketCursor() {
	if n := model.tickets.Len(); model.cursor >= n {
		model.cursor = max(n-1, 0)
	}
}

// openDetail shows ticketID and subscribes to its new messages.
func (model *Model) openDetail(ticketID string) tea.Cmd {
	compose := model.detail.compose
	compose.Reset()
	compose.Blur()
	model.detail = detailPane{ticketID: ticketID, messages: livestore.NewMessages(), compose: compose}
	return tea.Batch(
		fetchMessages(model.ctx, model.backend, ticketID),
		model.subscribe(topicMessages, events.Filter{
			Table:  events.TableMessages,
			Event:  events.ChangeAny,
			Column: "ticket_id",
			Value:  ticketID,
		}),
	)
}

func (model *Model) closeDetail() {
	model.unsubscribe(topicMessages)
	compose := model.detail.compose
	compose.Reset()
	compose.Blur()
	model.detail = detailPane{messages: livestore.NewMessages(), compose: compose}
}

func (model Model) handleTicketKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
	case key.Matches(message, model.keys.Down):
		if model.cursor < model.tickets.Len()-1 {
			model.cursor++
		}
	case key.Matches(message, model.keys.Select):
		items := model.tickets.Items()
		if model.cursor < len(items) {
			cmd := model.openDetail(items[model.cursor].ID)
			return model, cmd
		}
	case key.Matches(message, model.keys.Reply):
		if model.detail.ticketID != "" {
			model.detail.composing = true
			cmd := model.detail.compose.Focus()
			return model, cmd
		}
	case key.Matches(message, model.keys.NextStatus), key.Matches(message, model.keys.PrevStatus):
		ticket, ok := model.selectedTicket()
		if !ok {
			return model, nil
		}
		step := 1
		if key.Matches(message, model.keys.PrevStatus) {
			step = -1
		}
		return model, updateStatus(model.ctx, model.backend, ticket.ID, nextStatus(ticket.Status, step))
	case key.Matches(message, model.keys.Suggest):
		if model.detail.ticketID == "" || model.detail.suggesting {
			return model, nil
		}
		model.detail.suggesting = true
		return model, requestSuggestion(model.ctx, model.backend, model.detail.ticketID)
	case key.Matches(message, model.keys.UseSuggested):
		if model.detail.suggestion == "" {
			return model, nil
		}
		model.detail.compose.SetValue(model.detail.suggestion)
		model.detail.suggestion = ""
		model.detail.promoted = true
		model.detail.composing = true
		cmd := model.detail.compose.Focus()
		return model, cmd
	case key.Matches(message, model.keys.Back):
		if model.detail.ticketID != "" {
			model.closeDetail()
			return model, nil
		}
		return model.leaveDashboard()
	}
	return model, nil
}

func (model Model) handleComposeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Back):
		model.detail.composing = false
		model.detail.compose.Blur()
		return model, nil
	case key.Matches(message, model.keys.Send):
		if !model.detail.canSend() {
			return model, nil
		}
		model.detail.sending = true
		body := strings.TrimSpace(model.detail.compose.Value())
		return model, sendMessage(model.ctx, model.backend, model.detail.ticketID, body, model.detail.promoted)
	}

	var cmd tea.Cmd
	model.detail.compose, cmd = model.detail.compose.Update(message)
	if model.detail.compose.Value() == "" {
		model.detail.promoted = false
	}
	return model, cmd
}

func (model Model) handleTicketsLoaded(msg ticketsLoadedMsg) (tea.Model, tea.Cmd) {
	model.ticketsLoading = false
	if msg.err != nil {
		cmd := model.fail("fetch tickets", msg.err)
		return model, cmd
	}
	model.ticketsLoaded = true
	model.tickets.Reset(msg.tickets)
	model.clampTicketCursor()
	return model, nil
}

func (model Model) handleMessagesLoaded(msg messagesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.ticketID != model.detail.ticketID {
		return model, nil
	}
	if msg.err != nil {
		model.logger.Error("fetch messages", zap.String("ticket_id", msg.ticketID), zap.Error(msg.err))
		return model, nil
	}
	model.detail.messages.Reset(msg.messages)
	return model, nil
}

func (model Model) handleMessageSent(msg messageSentMsg) (tea.Model, tea.Cmd) {
	if msg.ticketID == model.detail.ticketID {
		model.detail.sending = false
	}
	if msg.err != nil {
		cmd := model.fail("send message", msg.err)
		return model, cmd
	}
	if msg.ticketID == model.detail.ticketID {
		model.detail.messages.Upsert(*msg.message)
		model.detail.compose.Reset()
		model.detail.promoted = false
	}
	cmd := model.notify("Message sent", "Your message has been sent to the customer.", false)
	return model, cmd
}

func (model Model) handleStatusUpdated(msg statusUpdatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := model.fail("update ticket status", msg.err)
		return model, cmd
	}
	model.tickets.Upsert(*msg.ticket)
	label := strings.Replace(string(msg.status), "_", " ", 1)
	cmd := model.notify("Status updated", "Ticket status changed to "+label, false)
	return model, cmd
}

func (model Model) handleSuggestion(msg suggestionMsg) (tea.Model, tea.Cmd) {
	if msg.ticketID != model.detail.ticketID {
		return model, nil
	}
	model.detail.suggesting = false
	if msg.err != nil {
		cmd := model.fail("get AI suggestion", msg.err)
		return model, cmd
	}
	model.detail.suggestion = msg.text
	return model, nil
}

func (model Model) renderTickets() string {
	listWidth, detailWidth := model.paneWidths()
	list := lipgloss.NewStyle().Width(listWidth).Render(model.renderTicketList(listWidth))
	detail := lipgloss.NewStyle().Width(detailWidth).Render(model.renderDetail(detailWidth))
	divider := model.theme.Muted.Render(strings.Repeat("│\n", max(lipgloss.Height(list), lipgloss.Height(detail))-1) + "│")
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", divider, " ", detail)
}

func (model Model) renderTicketList(width int) string {
	var b strings.Builder
	b.WriteString(model.theme.Title.Render(fmt.Sprintf("Support Tickets (%d)", model.tickets.Len())))
	b.WriteString("\n\n")

	if model.ticketsLoading {
		b.WriteString(model.spinner.View() + " Loading tickets...\n\n")
		for i := 0; i < skeletonRows; i++ {
			b.WriteString(model.theme.Skeleton.Render(strings.Repeat("█", width*3/4)) + "\n")
			b.WriteString(model.theme.Skeleton.Render(strings.Repeat("█", width/2)) + "\n\n")
		}
		return b.String()
	}
	if model.tickets.Len() == 0 {
		b.WriteString(model.theme.Muted.Render("No tickets found"))
		return b.String()
	}

	for i, ticket := range model.tickets.Items() {
		marker := "  "
		if i == model.cursor {
			marker = "› "
		}
		title := truncate(ticket.Title, width-4)
		if ticket.ID == model.detail.ticketID {
			title = model.theme.Selected.Render(title)
		} else {
			title = model.theme.Title.Render(title)
		}
		if ticket.Priority == domain.TicketPriorityUrgent {
			title += " " + model.theme.Urgent.Render("!")
		}
		b.WriteString(marker + title + "\n")
		b.WriteString("  " + model.theme.Muted.Render(truncate(ticket.Customer.Name+" · "+ticket.Customer.Company, width-2)) + "\n")
		b.WriteString("  " + model.theme.priority(string(ticket.Priority)).Render(ticket.Priority.Label()) +
			" " + model.theme.status(string(ticket.Status)).Render(ticket.Status.Label()) +
			" " + model.theme.Muted.Render(ticket.CreatedAt.Local().Format(timeLayout)) + "\n\n")
	}
	return b.String()
}

func (model Model) renderDetail(width int) string {
	ticket, ok := model.selectedTicket()
	if !ok {
		return model.theme.Muted.Render("\n\nSelect a ticket to view details")
	}

	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder

	b.WriteString(model.theme.Title.Render(ticket.Title) + "  " +
		model.theme.status(string(ticket.Status)).Render("● "+ticket.Status.Label()) + "\n")
	contact := fmt.Sprintf("%s (%s) · %s", ticket.Customer.Name, ticket.Customer.Company, ticket.Customer.Email)
	if ticket.Customer.Phone.Valid {
		contact += " · " + ticket.Customer.Phone.String
	}
	b.WriteString(model.theme.Muted.Render(contact) + "\n")
	b.WriteString(model.theme.priority(string(ticket.Priority)).Render(ticket.Priority.Label()) + " " +
		model.theme.Badge.Render(ticket.Category.Label()) + " " +
		model.theme.Muted.Render("Created "+ticket.CreatedAt.Local().Format(timeLayout)) + "\n\n")
	b.WriteString(wrap.Render(ticket.Description) + "\n\n")

	b.WriteString(model.theme.Title.Render("Conversation") + "\n")
	msgs := model.detail.messages.Items()
	if len(msgs) == 0 {
		b.WriteString(model.theme.Muted.Render("No messages yet") + "\n")
	}
	for _, msg := range msgs {
		b.WriteString(model.renderMessage(msg, width) + "\n")
	}
	b.WriteString("\n")

	switch {
	case model.detail.suggesting:
		b.WriteString(model.theme.AI.Render("Generating AI suggestion...") + "\n\n")
	case model.detail.suggestion != "":
		box := model.theme.Border.Width(width - 4).Render(
			model.theme.AI.Render("AI Suggestion") + "\n" + model.detail.suggestion + "\n" +
				model.theme.Muted.Render("u to use this suggestion"))
		b.WriteString(box + "\n")
	}

	b.WriteString(model.detail.compose.View() + "\n")
	switch {
	case model.detail.sending:
		b.WriteString(model.theme.Muted.Render("Sending..."))
	case model.detail.canSend():
		b.WriteString("C-s send")
	default:
		b.WriteString(model.theme.Muted.Render("C-s send"))
	}
	return b.String()
}

func (model Model) renderMessage(msg domain.TicketMessage, width int) string {
	style := model.theme.Customer
	switch msg.SenderType {
	case domain.SenderAgent:
		style = model.theme.Agent
	case domain.SenderAI:
		style = model.theme.AI
	}
	header := style.Render(msg.SenderName) + " " + model.theme.Muted.Render(msg.CreatedAt.Local().Format(timeLayout))
	if msg.AISuggested {
		header += " " + model.theme.AI.Render("[AI suggested]")
	}
	body := lipgloss.NewStyle().Width(width - 2).PaddingLeft(2).Render(msg.Message)
	return header + "\n" + body
}
