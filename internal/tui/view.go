package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the live run view
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")

	if !m.quitting {
		b.WriteString(HelpStyle.Render("q: stop run"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderHeader() string {
	title := TitleStyle.Render("udprtt")
	sub := SubtitleStyle.Render(fmt.Sprintf("%s  %s", m.latest.Peer, m.latest.Strategy))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, sub)
}

func (m Model) renderProgress() string {
	counts := fmt.Sprintf(" %d/%d  %.0f/s", m.latest.Completed, m.latest.Total, m.rate())
	return m.bar.ViewAs(m.fraction()) + counts
}

func (m Model) renderStats() string {
	s := m.latest.Stats
	if s.Count == 0 {
		return BoxStyle.Render(ValueStyle.Render("waiting for first reply..."))
	}

	row := func(label string, us float64, unit string) string {
		return LabelStyle.Render(label) + LatencyStyle(us).Render(fmt.Sprintf("%10.3f %s", us, unit))
	}

	lines := []string{
		row("Last", m.latest.LastUs, "us"),
		row("Mean", s.Mean, "us"),
		row("Min", s.Min, "us"),
		row("Max", s.Max, "us"),
		LabelStyle.Render("Variance") + ValueStyle.Render(fmt.Sprintf("%10.3f us^2", s.Variance)),
	}
	if m.latest.Done {
		lines = append(lines, SuccessStyle.Render("done"))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}
