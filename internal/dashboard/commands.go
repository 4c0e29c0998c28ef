package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/supporthub/support-dashboard/internal/analytics"
	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/client"
	"github.com/supporthub/support-dashboard/internal/domain"
)

// noticeDuration is how long a notification stays in the status bar.
const noticeDuration = 4 * time.Second

type ticketsLoadedMsg struct {
	tickets []domain.TicketView
	err     error
}

type messagesLoadedMsg struct {
	ticketID string
	messages []domain.TicketMessage
	err      error
}

type messageSentMsg struct {
	ticketID string
	message  *domain.TicketMessage
	err      error
}

type statusUpdatedMsg struct {
	ticket *domain.TicketView
	status domain.TicketStatus
	err    error
}

type suggestionMsg struct {
	ticketID string
	text     string
	err      error
}

type articlesLoadedMsg struct {
	articles []domain.Article
	err      error
}

type articleCreatedMsg struct {
	article *domain.Article
	err     error
}

type reportLoadedMsg struct {
	report *analytics.Report
	err    error
}

type noticeExpiredMsg struct {
	id int
}

func fetchTickets(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		tickets, err := backend.ListTickets(ctx, client.TicketQuery{})
		return ticketsLoadedMsg{tickets: tickets, err: err}
	}
}

func fetchMessages(ctx context.Context, backend Backend, ticketID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := backend.ListMessages(ctx, ticketID)
		return messagesLoadedMsg{ticketID: ticketID, messages: msgs, err: err}
	}
}

func sendMessage(ctx context.Context, backend Backend, ticketID, body string, aiSuggested bool) tea.Cmd {
	return func() tea.Msg {
		msg, err := backend.SendMessage(ctx, ticketID, body, aiSuggested)
		return messageSentMsg{ticketID: ticketID, message: msg, err: err}
	}
}

func updateStatus(ctx context.Context, backend Backend, ticketID string, status domain.TicketStatus) tea.Cmd {
	return func() tea.Msg {
		view, err := backend.UpdateStatus(ctx, ticketID, status)
		return statusUpdatedMsg{ticket: view, status: status, err: err}
	}
}

func requestSuggestion(ctx context.Context, backend Backend, ticketID string) tea.Cmd {
	return func() tea.Msg {
		text, err := backend.SuggestReply(ctx, ticketID)
		return suggestionMsg{ticketID: ticketID, text: text, err: err}
	}
}

func fetchArticles(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		articles, err := backend.ListArticles(ctx, "", "")
		return articlesLoadedMsg{articles: articles, err: err}
	}
}

func createArticle(ctx context.Context, backend Backend, req dto.CreateArticleRequest) tea.Cmd {
	return func() tea.Msg {
		article, err := backend.CreateArticle(ctx, req)
		return articleCreatedMsg{article: article, err: err}
	}
}

func fetchReport(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		report, err := backend.Analytics(ctx)
		return reportLoadedMsg{report: report, err: err}
	}
}

func expireNotice(id int) tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}
