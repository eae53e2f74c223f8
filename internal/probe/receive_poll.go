//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package probe

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// pollingReceiver spins on recvfrom(MSG_DONTWAIT) through the raw socket
// instead of waiting on the runtime poller.
type pollingReceiver struct {
	raw syscall.RawConn
}

func newPollingReceiver(conn *net.UDPConn) (receiver, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("%w: raw socket access: %w", ErrResource, err)
	}
	return &pollingReceiver{raw: raw}, nil
}

func (r *pollingReceiver) receive(buf []byte) (int, netip.AddrPort, error) {
	var (
		n    int
		from unix.Sockaddr
		rerr error
	)
	for {
		// the callback always reports done so the runtime never parks us
		err := r.raw.Read(func(fd uintptr) bool {
			n, from, rerr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
			return true
		})
		if err != nil {
			// socket closed underneath us
			return 0, netip.AddrPort{}, err
		}
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK || rerr == unix.EINTR {
			continue
		}
		if rerr != nil {
			return 0, netip.AddrPort{}, os.NewSyscallError("recvfrom", rerr)
		}
		return n, sockaddrToAddrPort(from), nil
	}
}

func sockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port))
	case *unix.SockaddrInet6:
		addr := netip.AddrFrom16(sa.Addr)
		if sa.ZoneId != 0 {
			addr = addr.WithZone(strconv.FormatUint(uint64(sa.ZoneId), 10))
		}
		return netip.AddrPortFrom(addr, uint16(sa.Port))
	default:
		return netip.AddrPort{}
	}
}
