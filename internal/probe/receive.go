package probe

import (
	"net"
	"net/netip"
	"runtime"

	"github.com/wellsgz/udprtt/internal/logging"
)

// receiver reads one datagram into buf, reporting its length and sender.
type receiver interface {
	receive(buf []byte) (int, netip.AddrPort, error)
}

// newReceiver returns the receiver for the given strategy on conn.
func newReceiver(conn *net.UDPConn, s Strategy) (receiver, error) {
	switch s {
	case BusyPoll:
		return newPollingReceiver(conn)
	default:
		return blockingReceiver{conn: conn}, nil
	}
}

// blockingReceiver parks the goroutine in the runtime poller until a
// datagram arrives.
type blockingReceiver struct {
	conn *net.UDPConn
}

func (r blockingReceiver) receive(buf []byte) (int, netip.AddrPort, error) {
	return r.conn.ReadFromUDPAddrPort(buf)
}

// warnSingleProc logs when busy-poll is selected but the process has a
// single P. The spinning receive then holds it and other goroutines in the
// process only run when the scheduler preempts it. Reports whether it warned.
func warnSingleProc(component string, s Strategy) bool {
	if s != BusyPoll || runtime.GOMAXPROCS(0) > 1 {
		return false
	}
	logging.Warn(component, "busy-poll with GOMAXPROCS=1 stalls other goroutines in this process",
		"gomaxprocs", runtime.GOMAXPROCS(0))
	return true
}
