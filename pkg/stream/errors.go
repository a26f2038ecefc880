package stream

import "errors"

// Stream endpoint errors. These are state-sequencing violations (Spec
// Section 7): writing to a sender not in Ready, or reading from a
// receiver not in RecvDataRecvd. Under the reliable-channel assumption they
// never arise from peer input, only from caller misuse.
var (
	// ErrSenderNotReady is returned by AddData when the sender half has
	// left Ready (its buffer has already been partitioned into frames).
	ErrSenderNotReady = errors.New("stream: sender is not in Ready state")

	// ErrReceiverNotReady is returned by GetData before the receiver has
	// reassembled its buffer.
	ErrReceiverNotReady = errors.New("stream: receiver has no data ready")

	// ErrHalfUnusable is returned when an operation targets a sender or
	// receiver half that this stream's directionality does not allow at
	// the local endpoint.
	ErrHalfUnusable = errors.New("stream: half is not usable on this endpoint")
)
