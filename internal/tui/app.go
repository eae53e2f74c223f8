package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wellsgz/udprtt/internal/monitor"
)

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	if m.latest.Done {
		return tea.Quit
	}
	return waitForStatus(m.updates)
}

// Run shows the live view until the run completes or the user quits.
// It reports whether the user aborted the run.
func Run(hub *monitor.Hub, cancel func()) (bool, error) {
	updates := hub.Subscribe()
	defer hub.Unsubscribe(updates)

	model := NewModel(updates, hub.Latest(), cancel)

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := final.(Model); ok {
		return m.Aborted(), nil
	}
	return false, nil
}
