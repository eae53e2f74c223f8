package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wellsgz/udprtt/internal/monitor"
)

// Message types
type (
	// StatusMsg is sent when the hub publishes a new status
	StatusMsg monitor.Status

	// ClosedMsg is sent when the status channel is closed
	ClosedMsg struct{}
)

// waitForStatus returns a command that waits for the next status
func waitForStatus(ch <-chan monitor.Status) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return ClosedMsg{}
		}
		return StatusMsg(status)
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if !m.latest.Done {
				m.aborted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(msg.Width-20, 10)
		m.ready = true
		return m, nil

	case StatusMsg:
		m.latest = monitor.Status(msg)
		if m.latest.Done {
			m.quitting = true
			return m, tea.Quit
		}
		return m, waitForStatus(m.updates)

	case ClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}
