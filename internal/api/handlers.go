package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellsgz/udprtt/internal/monitor"
	"github.com/wellsgz/udprtt/internal/version"
)

// Handler holds dependencies for API handlers
type Handler struct {
	hub       *monitor.Hub
	startTime time.Time
}

// NewHandler creates a new Handler reporting from hub
func NewHandler(hub *monitor.Hub) *Handler {
	return &Handler{
		hub:       hub,
		startTime: time.Now(),
	}
}

// StatusResponse represents the response for the status endpoint
type StatusResponse struct {
	Status     string  `json:"status"`
	Role       string  `json:"role"`
	Strategy   string  `json:"strategy"`
	Uptime     string  `json:"uptime"`
	UptimeSecs float64 `json:"uptime_secs"`
	Completed  uint64  `json:"completed"`
	Total      uint64  `json:"total,omitempty"`
	Done       bool    `json:"done"`
	Version    string  `json:"version"`
}

// GetStatus returns the run status
func (h *Handler) GetStatus(c *gin.Context) {
	uptime := time.Since(h.startTime)
	latest := h.hub.Latest()

	c.JSON(http.StatusOK, StatusResponse{
		Status:     "ok",
		Role:       latest.Role,
		Strategy:   latest.Strategy,
		Uptime:     uptime.Round(time.Second).String(),
		UptimeSecs: uptime.Seconds(),
		Completed:  latest.Completed,
		Total:      latest.Total,
		Done:       latest.Done,
		Version:    version.Version,
	})
}

// GetStats returns the latest full status including aggregates
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Latest())
}
