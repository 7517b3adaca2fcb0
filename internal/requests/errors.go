package requests

import "errors"

// ErrTransport is returned when a request fails at the transport level and
// no cached copy could stand in for it.
var ErrTransport = errors.New("transport failure")
