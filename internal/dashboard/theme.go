package dashboard

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles the dashboard renders with.
type Theme struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Urgent   lipgloss.Style
	Badge    lipgloss.Style
	Bar      lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Skeleton lipgloss.Style

	Customer lipgloss.Style
	Agent    lipgloss.Style
	AI       lipgloss.Style

	Priority map[string]lipgloss.Style
	Status   map[string]lipgloss.Style
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5E7EB")),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3730A3")),
	Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151")).Padding(0, 1),
	Tab:      lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#9CA3AF")),
	TabOn:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4F46E5")),
	Urgent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
	Badge:    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#D1D5DB")).Background(lipgloss.Color("#374151")),
	Bar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6366F1")),
	Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F87171")),
	Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34D399")),
	Skeleton: lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),

	Customer: lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD")),
	Agent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A7F3D0")),
	AI:       lipgloss.NewStyle().Foreground(lipgloss.Color("#C4B5FD")),

	Priority: map[string]lipgloss.Style{
		"low":    lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#1F2937")).Background(lipgloss.Color("#9CA3AF")),
		"medium": lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#1F2937")).Background(lipgloss.Color("#FCD34D")),
		"high":   lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#1F2937")).Background(lipgloss.Color("#FB923C")),
		"urgent": lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#DC2626")),
	},
	Status: map[string]lipgloss.Style{
		"open":        lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")),
		"in_progress": lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		"resolved":    lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
		"closed":      lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
	},
}

func (t Theme) priority(value string) lipgloss.Style {
	if style, ok := t.Priority[value]; ok {
		return style
	}
	return t.Badge
}

func (t Theme) status(value string) lipgloss.Style {
	if style, ok := t.Status[value]; ok {
		return style
	}
	return t.Muted
}
