package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/monitor"
)

// Server represents the status API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	handler    *Handler

	// closed on Shutdown so websocket writers exit
	done     chan struct{}
	doneOnce sync.Once
}

// NewServer creates a status server reporting from hub
func NewServer(hub *monitor.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(Recovery())
	router.Use(RequestLogger())
	router.Use(CORS())

	s := &Server{
		router:  router,
		handler: NewHandler(hub),
		done:    make(chan struct{}),
	}

	SetupRoutes(router, s.handler, s.done)

	return s
}

// StartAsync binds address and serves in a goroutine. Bind errors are
// returned immediately.
func (s *Server) StartAsync(address string) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("status server listen on %s: %w", address, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Info("API", "status server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("API", "server error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before StartAsync
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server with a timeout
func (s *Server) Shutdown(timeout time.Duration) error {
	s.doneOnce.Do(func() { close(s.done) })

	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logging.Info("API", "status server stopped")
	return nil
}

// Router returns the underlying Gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
