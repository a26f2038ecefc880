package stream

import "github.com/backkem/qdt/pkg/frame"

// SenderState is the lifecycle state of a Sender half (Spec Section 4.3).
type SenderState int

const (
	// Ready accepts data via AddData; no frames have been emitted yet.
	Ready SenderState = iota
	// Send is entered by SendNextFrame's first pop from a sender still in
	// Ready. GenerateStreamFrames, which fills the pending queue, already
	// moves the sender to DataSent, so a sender whose frames it produced
	// goes from Ready to DataSent to DataRecvd without passing through Send.
	Send
	// DataSent has materialized the FIN frame but not yet handed it out.
	DataSent
	// DataRecvd is terminal: the FIN frame has been handed to the packet
	// builder. This implementation conflates "acknowledged" with "sent"
	// (Spec Section 9) since there is no acknowledgement machinery.
	DataRecvd
)

// Sender is the sending half of a stream: an append-only buffer, the
// current transmit offset, and a FIFO of frames awaiting emission.
type Sender struct {
	streamID uint64
	offset   uint64
	buffer   []byte
	pending  []frame.Stream
	state    SenderState

	// generated guards against re-partitioning the buffer: the connection
	// asks every active stream to "refill" its pending queue once per
	// packet, but a sender only has one buffer to partition, produced in
	// a single pass the first time it is asked.
	generated bool
}

// NewSender creates a Sender half for the given stream id.
func NewSender(streamID uint64) *Sender {
	return &Sender{streamID: streamID, state: Ready}
}

// State returns the current lifecycle state.
func (s *Sender) State() SenderState {
	return s.state
}

// IsTerminal reports whether the sender has reached DataRecvd.
func (s *Sender) IsTerminal() bool {
	return s.state == DataRecvd
}

// AddData appends bytes to the send buffer. Only valid in Ready.
func (s *Sender) AddData(data []byte) error {
	if s.state != Ready {
		return ErrSenderNotReady
	}
	s.buffer = append(s.buffer, data...)
	return nil
}

// GenerateStreamFrames partitions buffer[offset:] into consecutive
// non-FIN frames of exactly maxSize bytes, advancing offset by maxSize
// each, then appends one FIN frame carrying whatever remains (possibly
// empty). maxSize is the sender's share of a packet's payload budget,
// supplied by the connection. A second call is a no-op: the whole buffer
// is partitioned in one pass the first time it is asked.
func (s *Sender) GenerateStreamFrames(maxSize int) {
	if s.generated {
		return
	}
	s.generated = true

	if maxSize <= 0 {
		s.pending = append(s.pending, s.generateFinFrame())
		return
	}

	for len(s.buffer)-int(s.offset) >= maxSize {
		f := frame.Stream{
			StreamID: s.streamID,
			Offset:   s.offset,
			Length:   uint64(maxSize),
			Data:     s.buffer[s.offset : s.offset+uint64(maxSize)],
		}
		s.pending = append(s.pending, f)
		s.offset += uint64(maxSize)
	}

	s.pending = append(s.pending, s.generateFinFrame())
}

// generateFinFrame builds the terminal FIN frame from whatever remains in
// the buffer past offset, and advances state to DataSent.
func (s *Sender) generateFinFrame() frame.Stream {
	rest := s.buffer[s.offset:]
	f := frame.Stream{
		StreamID: s.streamID,
		Offset:   s.offset,
		Length:   uint64(len(rest)),
		Fin:      true,
		Data:     rest,
	}
	s.state = DataSent
	return f
}

// SendNextFrame pops the head of the pending queue, if any. A pop from a
// sender in Ready advances the state to Send; a popped frame carrying FIN
// advances it to DataRecvd (terminal). After GenerateStreamFrames the
// sender is already in DataSent, so its non-FIN pops leave the state
// unchanged.
func (s *Sender) SendNextFrame() (frame.Stream, bool) {
	if len(s.pending) == 0 {
		return frame.Stream{}, false
	}

	f := s.pending[0]
	s.pending = s.pending[1:]

	if s.state == Ready {
		s.state = Send
	}
	if f.Fin {
		s.state = DataRecvd
	}

	return f, true
}

// HasPending reports whether there are frames queued for emission.
func (s *Sender) HasPending() bool {
	return len(s.pending) > 0
}
