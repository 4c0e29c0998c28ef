package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/events"
	"github.com/supporthub/support-dashboard/internal/livestore"
)

// Page is one of the two top-level routes.
type Page int

const (
	PageLanding Page = iota
	PageDashboard
)

// View is the active dashboard view.
type View int

const (
	ViewTickets View = iota
	ViewKnowledge
	ViewAnalytics
)

var views = []View{ViewTickets, ViewKnowledge, ViewAnalytics}

// Label is the sidebar name of the view.
func (v View) Label() string {
	switch v {
	case ViewTickets:
		return "Support Tickets"
	case ViewKnowledge:
		return "Knowledge Base"
	case ViewAnalytics:
		return "Analytics"
	}
	return ""
}

type notice struct {
	id      int
	title   string
	text    string
	isError bool
}

// Options configures New.
type Options struct {
	Backend   Backend
	Logger    *zap.Logger
	AgentName string
	// Context bounds every remote call and stream. Defaults to context.Background.
	Context context.Context
}

// Model is the top-level bubbletea model of the dashboard.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	backend Backend
	logger  *zap.Logger
	keys    KeyMap
	theme   Theme
	agent   string

	width  int
	height int

	page Page
	view View

	tickets        *livestore.Collection[domain.TicketView]
	ticketsLoading bool
	ticketsLoaded  bool
	cursor         int
	spinner        spinner.Model
	detail         detailPane

	knowledge knowledgePane

	avgResolution string

	notice    notice
	noticeSeq int

	subs map[topic]*subscription
	gen  int
}

// New builds the model. It starts on the landing page.
func New(opts Options) Model {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		ctx:           ctx,
		cancel:        cancel,
		backend:       opts.Backend,
		logger:        logger,
		keys:          DefaultKeyMap,
		theme:         DefaultTheme,
		agent:         opts.AgentName,
		width:         100,
		height:        30,
		tickets:       livestore.NewTickets(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		detail:        newDetailPane(),
		knowledge:     newKnowledgePane(),
		avgResolution: "n/a",
		subs:          make(map[topic]*subscription),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.SetWindowTitle("AI Support Hub")
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width, model.height = message.Width, message.Height
		model.resize()
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)

	case spinner.TickMsg:
		if !model.ticketsLoading {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case ticketsLoadedMsg:
		return model.handleTicketsLoaded(message)
	case messagesLoadedMsg:
		return model.handleMessagesLoaded(message)
	case messageSentMsg:
		return model.handleMessageSent(message)
	case statusUpdatedMsg:
		return model.handleStatusUpdated(message)
	case suggestionMsg:
		return model.handleSuggestion(message)
	case articlesLoadedMsg:
		return model.handleArticlesLoaded(message)
	case articleCreatedMsg:
		return model.handleArticleCreated(message)
	case reportLoadedMsg:
		if message.err != nil {
			model.logger.Error("fetch analytics", zap.Error(message.err))
			return model, nil
		}
		model.avgResolution = message.report.AverageResolution
		return model, nil

	case streamOpenedMsg:
		return model.handleStreamOpened(message)
	case changeMsg:
		return model.handleChange(message)
	case streamEndedMsg:
		return model.handleStreamEnded(message)
	case reconnectMsg:
		return model.handleReconnect(message)

	case noticeExpiredMsg:
		if message.id == model.notice.id {
			model.notice = notice{}
		}
		return model, nil
	}

	return model.forwardToInput(message)
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.String() == "ctrl+c" {
		return model.quit()
	}

	if model.page == PageLanding {
		switch {
		case key.Matches(message, model.keys.Select):
			return model.enterDashboard()
		case key.Matches(message, model.keys.Quit):
			return model.quit()
		}
		return model, nil
	}

	// Text inputs take every key while focused.
	switch {
	case model.view == ViewTickets && model.detail.composing:
		return model.handleComposeKeys(message)
	case model.view == ViewKnowledge && model.knowledge.formOpen:
		return model.handleFormKeys(message)
	case model.view == ViewKnowledge && model.knowledge.searching:
		return model.handleSearchKeys(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model.quit()
	case key.Matches(message, model.keys.ViewTickets):
		return model.switchView(ViewTickets)
	case key.Matches(message, model.keys.ViewKnowledge):
		return model.switchView(ViewKnowledge)
	case key.Matches(message, model.keys.ViewAnalytics):
		return model.switchView(ViewAnalytics)
	case key.Matches(message, model.keys.NextView):
		return model.switchView(views[(int(model.view)+1)%len(views)])
	}

	switch model.view {
	case ViewTickets:
		return model.handleTicketKeys(message)
	case ViewKnowledge:
		return model.handleKnowledgeKeys(message)
	}
	if key.Matches(message, model.keys.Back) {
		return model.leaveDashboard()
	}
	return model, nil
}

func (model Model) forwardToInput(message tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case model.detail.composing:
		model.detail.compose, cmd = model.detail.compose.Update(message)
	case model.knowledge.formOpen:
		cmd = model.knowledge.form.update(message)
	case model.knowledge.searching:
		model.knowledge.search, cmd = model.knowledge.search.Update(message)
	}
	return model, cmd
}

func (model Model) enterDashboard() (tea.Model, tea.Cmd) {
	model.page = PageDashboard
	return model.switchView(ViewTickets)
}

func (model Model) leaveDashboard() (tea.Model, tea.Cmd) {
	model.unsubscribeAll()
	model.page = PageLanding
	return model, nil
}

// switchView mounts v: its collections are fetched once and then kept current by its
// realtime subscriptions. Subscriptions of the previous view are torn down.
func (model Model) switchView(v View) (tea.Model, tea.Cmd) {
	model.unsubscribeAll()
	model.view = v

	var cmds []tea.Cmd
	switch v {
	case ViewTickets:
		if !model.ticketsLoaded {
			model.ticketsLoading = true
			cmds = append(cmds, model.spinner.Tick)
		}
		cmds = append(cmds,
			fetchTickets(model.ctx, model.backend),
			model.subscribe(topicTickets, events.Filter{Table: events.TableTickets, Event: events.ChangeAny}),
		)
		if model.detail.ticketID != "" {
			cmds = append(cmds, model.openDetail(model.detail.ticketID))
		}
	case ViewKnowledge:
		cmds = append(cmds,
			fetchArticles(model.ctx, model.backend),
			model.subscribe(topicArticles, events.Filter{Table: events.TableArticles, Event: events.ChangeAny}),
		)
	case ViewAnalytics:
		cmds = append(cmds,
			fetchTickets(model.ctx, model.backend),
			fetchReport(model.ctx, model.backend),
			model.subscribe(topicTickets, events.Filter{Table: events.TableTickets, Event: events.ChangeAny}),
		)
	}
	return model, tea.Batch(cmds...)
}

func (model Model) quit() (tea.Model, tea.Cmd) {
	model.unsubscribeAll()
	model.cancel()
	return model, tea.Quit
}

func (model *Model) resize() {
	_, detailWidth := model.paneWidths()
	model.detail.compose.SetWidth(max(detailWidth-4, 20))
	model.knowledge.resize(model.width)
}

func (model *Model) paneWidths() (list, detail int) {
	list = model.width / 3
	if list < 28 {
		list = 28
	}
	detail = model.width - list - 3
	if detail < 30 {
		detail = 30
	}
	return list, detail
}

func (model *Model) notify(title, text string, isError bool) tea.Cmd {
	model.noticeSeq++
	model.notice = notice{id: model.noticeSeq, title: title, text: text, isError: isError}
	return expireNotice(model.noticeSeq)
}

// fail logs err and shows the generic notification for action.
func (model *Model) fail(action string, err error) tea.Cmd {
	model.logger.Error("failed to "+action, zap.Error(err))
	return model.notify("Error", "Failed to "+action, true)
}

// View implements tea.Model.
func (model Model) View() string {
	if model.page == PageLanding {
		return model.renderLanding()
	}

	var body string
	switch model.view {
	case ViewTickets:
		body = model.renderTickets()
	case ViewKnowledge:
		body = model.renderKnowledge()
	case ViewAnalytics:
		body = model.renderAnalytics()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		model.renderHeader(),
		"",
		body,
		"",
		model.renderStatusBar(),
	)
}

func (model Model) renderHeader() string {
	tabs := []string{model.theme.Title.Render("AI Support Hub"), " "}
	for i, v := range views {
		label := fmt.Sprintf("%d %s", i+1, v.Label())
		if v == model.view {
			tabs = append(tabs, model.theme.TabOn.Render(label))
		} else {
			tabs = append(tabs, model.theme.Tab.Render(label))
		}
	}

	status := model.theme.Muted.Render("○ offline")
	if model.live() {
		status = model.theme.Success.Render("● live")
	}
	right := status
	if model.agent != "" {
		right = model.theme.Muted.Render(model.agent) + "  " + status
	}

	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	gap := model.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (model Model) renderStatusBar() string {
	var line string
	if model.notice.id != 0 {
		style := model.theme.Success
		if model.notice.isError {
			style = model.theme.Error
		}
		line = style.Render(model.notice.title+": ") + model.notice.text
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, model.theme.Muted.Render(model.helpLine()))
}

func (model Model) helpLine() string {
	var bindings []key.Binding
	switch {
	case model.view == ViewTickets && model.detail.composing:
		bindings = []key.Binding{model.keys.Send, model.keys.Back}
	case model.view == ViewKnowledge && model.knowledge.formOpen:
		bindings = []key.Binding{model.keys.NextField, model.keys.Send, model.keys.Back}
	case model.view == ViewKnowledge && model.knowledge.searching:
		bindings = []key.Binding{model.keys.Back}
	default:
		bindings = []key.Binding{model.keys.ViewTickets, model.keys.ViewKnowledge, model.keys.ViewAnalytics}
		switch model.view {
		case ViewTickets:
			bindings = append(bindings, model.keys.Up, model.keys.Down, model.keys.Select)
			if model.detail.ticketID != "" {
				bindings = append(bindings, model.keys.Reply, model.keys.NextStatus, model.keys.Suggest)
				if model.detail.suggestion != "" {
					bindings = append(bindings, model.keys.UseSuggested)
				}
			}
		case ViewKnowledge:
			bindings = append(bindings, model.keys.Search, model.keys.NextCategory, model.keys.NewArticle)
		}
		bindings = append(bindings, model.keys.Back, model.keys.Quit)
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if help := b.Help(); help.Key != "" {
			parts = append(parts, help.Key+" "+help.Desc)
		}
	}
	return strings.Join(parts, " · ")
}

// truncate shortens s to at most width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
