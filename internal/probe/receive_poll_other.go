//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package probe

import (
	"fmt"
	"net"
	"runtime"
)

func newPollingReceiver(*net.UDPConn) (receiver, error) {
	return nil, fmt.Errorf("%w: busy-poll receive is not supported on %s", ErrConfiguration, runtime.GOOS)
}
