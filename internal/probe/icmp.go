package probe

import (
	"context"
	"fmt"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/wellsgz/udprtt/internal/logging"
	"github.com/wellsgz/udprtt/internal/stats"
)

// BaselineConfig configures an ICMP echo run against the same peer, used to
// compare kernel-level ping latency with the UDP round trip.
type BaselineConfig struct {
	Peer     string
	Count    int
	Interval time.Duration
	Timeout  time.Duration
}

// Baseline runs ICMP echo requests through pro-bing and aggregates the
// replies with the same accumulator as the UDP client.
type Baseline struct {
	cfg        BaselineConfig
	privileged bool
	acc        *stats.Accumulator
	pct        *stats.Percentiles
}

// NewBaseline validates cfg. The peer must be an IP literal.
func NewBaseline(cfg BaselineConfig) (*Baseline, error) {
	probeCfg := Config{Peer: cfg.Peer, Port: 1}
	if _, err := probeCfg.peerAddrPort(); err != nil {
		return nil, err
	}
	if cfg.Count < 1 {
		return nil, fmt.Errorf("%w: ping count must be at least 1", ErrConfiguration)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 50 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		// allow 250ms per ping for reply collection, at least 5s
		cfg.Timeout = time.Duration(cfg.Count) * (cfg.Interval + 250*time.Millisecond)
		if cfg.Timeout < 5*time.Second {
			cfg.Timeout = 5 * time.Second
		}
	}
	return &Baseline{
		cfg:        cfg,
		privileged: true, // try raw sockets first
		acc:        stats.NewAccumulator(),
		pct:        stats.NewPercentiles(),
	}, nil
}

// Run sends the pings and returns the summary. Lost replies are not
// counted in the aggregates; the loss ratio is logged. A run where every
// reply is lost fails with ErrTransport.
func (b *Baseline) Run(ctx context.Context) (Report, error) {
	pinger, err := b.newPinger()
	if err != nil {
		return Report{}, err
	}

	err = pinger.RunWithContext(ctx)
	if err != nil && b.privileged && ctx.Err() == nil {
		// raw ICMP needs privileges; fall back to datagram ICMP sockets
		logging.Debug("Baseline", "privileged ICMP failed, retrying unprivileged", "error", err)
		b.privileged = false
		b.acc = stats.NewAccumulator()
		b.pct.Reset()
		if pinger, err = b.newPinger(); err != nil {
			return Report{}, err
		}
		err = pinger.RunWithContext(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return b.report(), ctx.Err()
		}
		return Report{}, fmt.Errorf("%w: icmp echo to %s: %w", ErrResource, b.cfg.Peer, err)
	}

	st := pinger.Statistics()
	logging.Info("Baseline", "icmp echo finished", "sent", st.PacketsSent, "received", st.PacketsRecv,
		"loss_pct", st.PacketLoss)
	return b.result()
}

// result returns the summary, or ErrTransport when no reply arrived and
// the aggregates hold nothing to report.
func (b *Baseline) result() (Report, error) {
	if b.acc.Count() == 0 {
		return Report{}, fmt.Errorf("%w: no icmp echo replies received from %s", ErrTransport, b.cfg.Peer)
	}
	return b.report(), nil
}

func (b *Baseline) newPinger() (*probing.Pinger, error) {
	pinger, err := probing.NewPinger(b.cfg.Peer)
	if err != nil {
		return nil, fmt.Errorf("%w: create pinger: %w", ErrConfiguration, err)
	}
	pinger.Count = b.cfg.Count
	pinger.Interval = b.cfg.Interval
	pinger.Timeout = b.cfg.Timeout
	pinger.SetPrivileged(b.privileged)
	pinger.OnRecv = func(pkt *probing.Packet) {
		ns := uint64(pkt.Rtt.Nanoseconds())
		b.acc.Update(float64(ns))
		b.pct.Record(ns)
	}
	return pinger, nil
}

func (b *Baseline) report() Report {
	q := b.pct.Quantiles()
	return NewReport(b.acc.Snapshot(), &q)
}
