// Package probe implements the round-trip latency engine: a client that
// times request/reply cycles against a peer and a server that reflects
// every datagram back to its sender.
package probe

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/wellsgz/udprtt/internal/stats"
)

// Defaults for a probe run.
const (
	DefaultPeer          = "127.0.0.1"
	DefaultPort          = 3030
	DefaultMessageLength = 512
	DefaultMessageCount  = 100000

	// MaxMessageLength is the largest UDP payload over IPv4.
	MaxMessageLength = 65507
)

// Config describes one probe run. It is not modified once a run starts.
type Config struct {
	Peer          string   // client only; IP literal
	Port          int      // peer port for the client, bind port for the server (0 = ephemeral)
	MessageLength int      // payload size in bytes for the client, buffer size for the server
	MessageCount  uint64   // client only
	Strategy      Strategy // receive strategy
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Peer:          DefaultPeer,
		Port:          DefaultPort,
		MessageLength: DefaultMessageLength,
		MessageCount:  DefaultMessageCount,
		Strategy:      Blocking,
	}
}

// validateCommon checks the settings shared by both roles.
func (c Config) validateCommon() error {
	if c.MessageLength < 1 || c.MessageLength > MaxMessageLength {
		return fmt.Errorf("%w: message length must be between 1 and %d, got %d", ErrConfiguration, MaxMessageLength, c.MessageLength)
	}
	if !c.Strategy.valid() {
		return fmt.Errorf("%w: unsupported receive strategy %d", ErrConfiguration, int(c.Strategy))
	}
	return nil
}

// ValidateClient checks the configuration for the client role.
func (c Config) ValidateClient() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.MessageCount < 1 {
		return fmt.Errorf("%w: message count must be at least 1", ErrConfiguration)
	}
	_, err := c.peerAddrPort()
	return err
}

// ValidateServer checks the configuration for the server role.
func (c Config) ValidateServer() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 0 and 65535, got %d", ErrConfiguration, c.Port)
	}
	return nil
}

// peerAddrPort parses the peer as a network address literal. Host names
// are rejected so no resolver traffic happens before the run.
func (c Config) peerAddrPort() (netip.AddrPort, error) {
	addr, err := netip.ParseAddr(c.Peer)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: invalid peer address %q: %w", ErrConfiguration, c.Peer, err)
	}
	if c.Port < 1 || c.Port > 65535 {
		return netip.AddrPort{}, fmt.Errorf("%w: peer port must be between 1 and 65535, got %d", ErrConfiguration, c.Port)
	}
	return netip.AddrPortFrom(addr.Unmap(), uint16(c.Port)), nil
}

// Progress is handed to an Observer after a round trip has been recorded.
type Progress struct {
	Seq   uint64         // completed round trips
	Total uint64         // configured round trips
	RTT   time.Duration  // latest round trip
	Stats stats.Snapshot // aggregates in nanoseconds
}

// Observer receives progress from the client loop. It is called outside
// the timed window on the probe goroutine and must not block.
type Observer interface {
	Observe(Progress)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Progress)

// Observe calls f(p).
func (f ObserverFunc) Observe(p Progress) {
	f(p)
}

// MultiObserver fans progress out to every non-nil observer.
func MultiObserver(observers ...Observer) Observer {
	var list []Observer
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return ObserverFunc(func(p Progress) {
		for _, o := range list {
			o.Observe(p)
		}
	})
}
