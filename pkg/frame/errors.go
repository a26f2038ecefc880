package frame

import "errors"

// Frame decoding errors.
var (
	// ErrFrameTooShort is returned when data is too short to contain a
	// well-formed frame header.
	ErrFrameTooShort = errors.New("frame: data too short")

	// ErrInvalidFrameType is returned when the type byte does not encode a
	// recognized frame type.
	ErrInvalidFrameType = errors.New("frame: invalid type byte")
)
