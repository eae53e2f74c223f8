package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/wellsgz/udprtt/internal/logging"
)

// EchoCounters reports how much traffic a server has reflected.
type EchoCounters struct {
	Datagrams uint64 `json:"datagrams"`
	Bytes     uint64 `json:"bytes"`
}

// Server reflects every datagram back to its sender, byte for byte.
// It performs no timing and keeps no statistics beyond echo counters.
type Server struct {
	cfg  Config
	conn *net.UDPConn
	recv receiver

	datagrams atomic.Uint64
	bytes     atomic.Uint64
}

// NewServer validates cfg for the server role.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	return &Server{cfg: cfg}, nil
}

// Listen binds the configured port on the wildcard address. A port already
// in use fails here with ErrResource.
func (s *Server) Listen() error {
	if s.conn != nil {
		return errors.New("server already listening")
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: s.cfg.Port})
	if err != nil {
		return fmt.Errorf("%w: bind port %d: %w", ErrResource, s.cfg.Port, err)
	}

	recv, err := newReceiver(conn, s.cfg.Strategy)
	if err != nil {
		conn.Close()
		return err
	}

	s.conn = conn
	s.recv = recv
	warnSingleProc("Server", s.cfg.Strategy)
	logging.Info("Server", "listening", "addr", conn.LocalAddr().String(), "strategy", s.cfg.Strategy.String())
	return nil
}

// LocalAddr returns the bound address, or nil before Listen.
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve echoes datagrams until ctx is cancelled or a transport error
// occurs. Cancellation closes the endpoint, which unblocks either receive
// strategy, and Serve then returns nil. The endpoint is released on every
// return path.
func (s *Server) Serve(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("server not listening")
	}
	defer s.conn.Close()

	stop := context.AfterFunc(ctx, func() { s.conn.Close() })
	defer stop()

	buffer := make([]byte, s.cfg.MessageLength)
	for {
		n, from, err := s.recv.receive(buffer)
		if err != nil {
			return s.fail(ctx, "receive", err)
		}

		// echo exactly what arrived, not the buffer capacity
		if _, err := s.conn.WriteToUDPAddrPort(buffer[:n], from); err != nil {
			return s.fail(ctx, "send", err)
		}

		s.datagrams.Add(1)
		s.bytes.Add(uint64(n))
		echoedDatagramsTotal.Inc()
		echoedBytesTotal.Add(float64(n))
	}
}

// ListenAndServe binds and then serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Close releases an endpoint that was bound but never served.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Server) fail(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		logging.Debug("Server", "stopped", "echoed", s.datagrams.Load())
		return nil
	}
	transportErrorsTotal.WithLabelValues("server", op).Inc()
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

// Counters returns the echo counters. Safe for concurrent use.
func (s *Server) Counters() EchoCounters {
	return EchoCounters{
		Datagrams: s.datagrams.Load(),
		Bytes:     s.bytes.Load(),
	}
}
