package connection

import (
	"errors"
	"fmt"
)

// Errors returned by the connection package.
var (
	// ErrNoPacketSize is returned by PacketSize before the
	// size-negotiation datagram has been sent or received.
	ErrNoPacketSize = errors.New("connection: packet size not yet negotiated")

	// ErrClosed is returned for operations on a connection that has
	// already closed its socket.
	ErrClosed = errors.New("connection: connection is closed")

	// ErrStreamNotFound is returned when referencing a stream id that
	// has no registered Stream.
	ErrStreamNotFound = errors.New("connection: stream not found")
)

// errStreamNotFound wraps ErrStreamNotFound with the offending id.
func errStreamNotFound(id uint64) error {
	return fmt.Errorf("%w: %d", ErrStreamNotFound, id)
}
