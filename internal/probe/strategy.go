package probe

import "fmt"

// Strategy selects how a reply is awaited.
//
// The numeric values are the historical selector codes. Code 1 is reserved
// and has no strategy behind it.
type Strategy int

const (
	// Blocking parks the caller in the receive call until a datagram arrives.
	Blocking Strategy = 0

	// BusyPoll issues non-blocking receives in a tight loop, retrying on
	// would-block. It trades CPU for lower wake-up latency.
	BusyPoll Strategy = 2
)

// ParseStrategy maps a selector code to a Strategy.
func ParseStrategy(code int) (Strategy, error) {
	switch Strategy(code) {
	case Blocking, BusyPoll:
		return Strategy(code), nil
	case 1:
		return 0, fmt.Errorf("%w: receive strategy %d is reserved", ErrConfiguration, code)
	default:
		return 0, fmt.Errorf("%w: unknown receive strategy %d (use 0=blocking or 2=busy-poll)", ErrConfiguration, code)
	}
}

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Blocking:
		return "blocking"
	case BusyPoll:
		return "busy-poll"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

func (s Strategy) valid() bool {
	return s == Blocking || s == BusyPoll
}
