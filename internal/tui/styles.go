package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
)

// Base styles
var (
	// Title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Label style for stat names
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true).
			Width(10)

	// Value style for stat values
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Status styles
	LatencyGoodStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	LatencyWarnStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	LatencyBadStyle  = lipgloss.NewStyle().Foreground(ColorDanger)
	SuccessStyle     = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Box style around the stats block
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
)

// LatencyStyle returns the style matching a latency in microseconds
func LatencyStyle(us float64) lipgloss.Style {
	switch {
	case us < 100:
		return LatencyGoodStyle
	case us < 1000:
		return LatencyWarnStyle
	default:
		return LatencyBadStyle
	}
}
