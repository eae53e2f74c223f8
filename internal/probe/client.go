package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/stats"
	"github.com/wellsgz/udprtt/internal/timer"
)

// notifyInterval bounds how often the observer is called during a run.
const notifyInterval = 100 * time.Millisecond

// Client times round trips against an echo server.
type Client struct {
	cfg      Config
	peer     netip.AddrPort
	acc      *stats.Accumulator
	pct      *stats.Percentiles
	observer Observer
}

// NewClient validates cfg and resolves the peer address. It performs no
// network I/O; an invalid peer fails here with ErrConfiguration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	peer, err := cfg.peerAddrPort()
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		peer: peer,
		acc:  stats.NewAccumulator(),
		pct:  stats.NewPercentiles(),
	}, nil
}

// SetObserver registers o to receive throttled progress updates and the
// final one. It must be called before Run.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// Peer returns the resolved peer address.
func (c *Client) Peer() netip.AddrPort {
	return c.peer
}

// Run sends MessageCount probes and returns the summary. Any send or
// receive failure aborts the run with ErrTransport. When ctx is cancelled
// the endpoint is closed, unblocking a pending receive, and Run returns the
// partial report together with ctx.Err(). The endpoint is released on every
// return path.
func (c *Client) Run(ctx context.Context) (Report, error) {
	network := "udp4"
	if c.peer.Addr().Is6() {
		network = "udp6"
	}

	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return Report{}, fmt.Errorf("%w: open endpoint: %w", ErrResource, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	recv, err := newReceiver(conn, c.cfg.Strategy)
	if err != nil {
		return Report{}, err
	}
	warnSingleProc("Client", c.cfg.Strategy)

	logging.Info("Client", "probing", "peer", c.peer.String(), "count", c.cfg.MessageCount,
		"length", c.cfg.MessageLength, "strategy", c.cfg.Strategy.String())

	message := make([]byte, c.cfg.MessageLength)
	buffer := make([]byte, c.cfg.MessageLength)
	var (
		tm         timer.Timer
		lastNotify time.Time
	)

	for i := uint64(0); i < c.cfg.MessageCount; i++ {
		tm.Start()

		if _, err := conn.WriteToUDPAddrPort(message, c.peer); err != nil {
			return c.fail(ctx, "send", err)
		}
		if _, _, err := recv.receive(buffer); err != nil {
			return c.fail(ctx, "receive", err)
		}

		rtt := tm.Stop()
		c.record(rtt)

		if c.observer != nil && (time.Since(lastNotify) >= notifyInterval || i+1 == c.cfg.MessageCount) {
			lastNotify = time.Now()
			c.observer.Observe(Progress{
				Seq:   i + 1,
				Total: c.cfg.MessageCount,
				RTT:   time.Duration(rtt),
				Stats: c.acc.Snapshot(),
			})
		}
	}

	return c.Report(), nil
}

// record feeds one round trip into the aggregates.
func (c *Client) record(rttNs uint64) {
	c.acc.Update(float64(rttNs))
	c.pct.Record(rttNs)
	roundTripsTotal.Inc()
	roundTripDuration.Observe(float64(rttNs) / nsPerMicro)
}

// fail maps a loop error to the caller-facing error.
func (c *Client) fail(ctx context.Context, op string, err error) (Report, error) {
	if ctx.Err() != nil {
		return c.Report(), ctx.Err()
	}
	transportErrorsTotal.WithLabelValues("client", op).Inc()
	return Report{}, fmt.Errorf("%w: %s to %s: %w", ErrTransport, op, c.peer, err)
}

// Report summarises the round trips recorded so far.
func (c *Client) Report() Report {
	q := c.pct.Quantiles()
	return NewReport(c.acc.Snapshot(), &q)
}

// RoundTrips returns the number of round trips recorded so far.
func (c *Client) RoundTrips() uint64 {
	return c.acc.Count()
}
