// Package monitor fans probe-loop progress out to observers that live
// outside the probe goroutine, such as the HTTP status surface and the
// live terminal view.
package monitor

import (
	"sync"
	"time"

	"github.com/wellsgz/udprtt/internal/probe"
	"github.com/wellsgz/udprtt/internal/stats"
)

// Status is a point-in-time view of a run, with latencies in microseconds.
type Status struct {
	Role      string              `json:"role"`
	Peer      string              `json:"peer,omitempty"`
	Strategy  string              `json:"strategy"`
	Completed uint64              `json:"completed"`
	Total     uint64              `json:"total,omitempty"`
	LastUs    float64             `json:"last_us"`
	Stats     stats.Snapshot      `json:"stats_us"`
	Echo      *probe.EchoCounters `json:"echo,omitempty"`
	Done      bool                `json:"done"`
	Updated   time.Time           `json:"updated"`
}

// Hub keeps the latest Status and broadcasts updates to subscribers
type Hub struct {
	mu     sync.RWMutex
	latest Status
	echo   func() probe.EchoCounters

	// Event broadcasting
	subscribers map[chan Status]struct{}
	subMu       sync.RWMutex
	closed      bool
}

// NewHub creates a hub describing a run in the given role
func NewHub(role, peer string, strategy probe.Strategy, total uint64) *Hub {
	return &Hub{
		latest: Status{
			Role:     role,
			Peer:     peer,
			Strategy: strategy.String(),
			Total:    total,
			Updated:  time.Now(),
		},
		subscribers: make(map[chan Status]struct{}),
	}
}

// SetEchoSource registers the server's counter accessor; Latest then
// reports live echo counters.
func (h *Hub) SetEchoSource(src func() probe.EchoCounters) {
	h.mu.Lock()
	h.echo = src
	h.mu.Unlock()
}

// Observe implements probe.Observer
func (h *Hub) Observe(p probe.Progress) {
	h.mu.Lock()
	h.latest.Completed = p.Seq
	h.latest.Total = p.Total
	h.latest.LastUs = float64(p.RTT.Nanoseconds()) / 1000
	h.latest.Stats = p.Stats.Scaled(1000).JSONSafe()
	h.latest.Done = p.Seq == p.Total
	h.latest.Updated = time.Now()
	status := h.latest
	h.mu.Unlock()

	h.broadcast(status)
}

// Finish marks the run as done and notifies subscribers
func (h *Hub) Finish() {
	h.mu.Lock()
	h.latest.Done = true
	h.latest.Updated = time.Now()
	h.mu.Unlock()

	h.broadcast(h.Latest())
}

// Latest returns the most recent status
func (h *Hub) Latest() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := h.latest
	if h.echo != nil {
		c := h.echo()
		status.Echo = &c
		status.Completed = c.Datagrams
	}
	return status
}

// Subscribe returns a channel that receives status updates
func (h *Hub) Subscribe() <-chan Status {
	ch := make(chan Status, 16) // Buffered to prevent blocking

	h.subMu.Lock()
	if h.closed {
		close(ch)
	} else {
		h.subscribers[ch] = struct{}{}
	}
	h.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber
func (h *Hub) Unsubscribe(ch <-chan Status) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			close(subCh)
			delete(h.subscribers, subCh)
			return
		}
	}
}

// Close closes all subscriber channels
func (h *Hub) Close() {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
	h.closed = true
}

// broadcast sends a status to all subscribers
func (h *Hub) broadcast(status Status) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- status:
		default:
			// Channel buffer full, skip to keep the probe loop moving
		}
	}
}
