package probe

import "errors"

// Error classes returned by the probe engine. Concrete errors wrap one of
// these together with the underlying cause; match them with errors.Is.
var (
	// ErrConfiguration reports an invalid address, port, length or strategy.
	ErrConfiguration = errors.New("configuration error")

	// ErrResource reports that the transport endpoint could not be created
	// or bound.
	ErrResource = errors.New("resource error")

	// ErrTransport reports a send or receive failure other than would-block.
	ErrTransport = errors.New("transport error")
)
