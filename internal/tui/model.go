package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/wellsgz/udprtt/internal/monitor"
)

// Model holds the live view state for one client run
type Model struct {
	updates <-chan monitor.Status
	latest  monitor.Status
	started time.Time

	bar progress.Model

	// cancel aborts the probe run when the user quits early
	cancel func()

	width    int
	ready    bool
	quitting bool
	aborted  bool
}

// NewModel creates a model fed by updates; cancel is called if the user
// quits before the run finishes
func NewModel(updates <-chan monitor.Status, initial monitor.Status, cancel func()) Model {
	return Model{
		updates: updates,
		latest:  initial,
		started: time.Now(),
		bar:     progress.New(progress.WithDefaultGradient()),
		cancel:  cancel,
	}
}

// fraction returns run completion in [0, 1]
func (m Model) fraction() float64 {
	if m.latest.Total == 0 {
		return 0
	}
	f := float64(m.latest.Completed) / float64(m.latest.Total)
	if f > 1 {
		return 1
	}
	return f
}

// rate returns completed round trips per second since the view started
func (m Model) rate() float64 {
	elapsed := time.Since(m.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.latest.Completed) / elapsed
}

// Aborted reports whether the user quit before the run finished
func (m Model) Aborted() bool {
	return m.aborted
}
