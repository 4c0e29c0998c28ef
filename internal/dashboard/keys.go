package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// View switching.
	ViewTickets   key.Binding
	ViewKnowledge key.Binding
	ViewAnalytics key.Binding
	NextView      key.Binding

	// Ticket detail.
	Select       key.Binding
	Reply        key.Binding
	Send         key.Binding
	NextStatus   key.Binding
	PrevStatus   key.Binding
	Suggest      key.Binding
	UseSuggested key.Binding

	// Knowledge base.
	Search       key.Binding
	NextCategory key.Binding
	NewArticle   key.Binding
	NextField    key.Binding

	Back key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	ViewTickets: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "tickets"),
	),
	ViewKnowledge: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "knowledge"),
	),
	ViewAnalytics: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "analytics"),
	),
	NextView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next view"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Reply: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reply"),
	),
	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "send"),
	),
	NextStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s/S", "status"),
	),
	PrevStatus: key.NewBinding(
		key.WithKeys("S"),
	),
	Suggest: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "ai suggestion"),
	),
	UseSuggested: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "use suggestion"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	NextCategory: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "category"),
	),
	NewArticle: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new article"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next field"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
