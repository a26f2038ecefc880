package packet

import "errors"

// Packet decoding errors.
var (
	// ErrPacketTooShort is returned when data is too short to contain a
	// well-formed packet header, connection id, and packet number.
	ErrPacketTooShort = errors.New("packet: data too short")

	// ErrTruncatedFrame is returned when a frame's declared length would
	// overshoot the remaining payload.
	ErrTruncatedFrame = errors.New("packet: truncated frame in payload")
)
