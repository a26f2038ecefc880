package stream

// Stream binds one Sender half and one Receiver half under a single
// stream id. Usability of each half depends on the id's directionality
// and initiator bits together with which endpoint role is local:
//
//   - Bidirectional: both halves usable at both peers.
//   - Unidirectional, initiator-side (local endpoint created the stream):
//     sender usable, receiver unused.
//   - Unidirectional, peer-side: receiver usable, sender unused.
type Stream struct {
	ID       uint64
	Sender   *Sender
	Receiver *Receiver

	senderUsable   bool
	receiverUsable bool
}

// New creates a Stream for id as seen by an endpoint whose connection
// role is localServer (true if this endpoint is the server / connection
// id 1). Usability of the two halves is derived from the id's
// directionality bit and whether the local role matches the id's
// initiator bit.
func New(id uint64, localServer bool) *Stream {
	uni := IsUnidirectional(id)
	localIsInitiator := IsServerInitiated(id) == localServer

	s := &Stream{
		ID:       id,
		Sender:   NewSender(id),
		Receiver: NewReceiver(id),
	}

	if uni {
		s.senderUsable = localIsInitiator
		s.receiverUsable = !localIsInitiator
	} else {
		s.senderUsable = true
		s.receiverUsable = true
	}

	return s
}

// SenderUsable reports whether this endpoint may write to the stream.
func (s *Stream) SenderUsable() bool {
	return s.senderUsable
}

// ReceiverUsable reports whether this endpoint may read from the stream.
func (s *Stream) ReceiverUsable() bool {
	return s.receiverUsable
}

// AddData writes to the stream's sender half. Returns ErrHalfUnusable if
// this endpoint's directionality makes the sender half permanently
// terminal (Spec Section 4.4).
func (s *Stream) AddData(data []byte) error {
	if !s.senderUsable {
		return ErrHalfUnusable
	}
	return s.Sender.AddData(data)
}

// GetData reads the stream's receiver half. Returns ErrHalfUnusable if
// this endpoint's directionality makes the receiver half permanently
// terminal (Spec Section 4.4).
func (s *Stream) GetData() ([]byte, error) {
	if !s.receiverUsable {
		return nil, ErrHalfUnusable
	}
	return s.Receiver.GetData()
}

// IsFinished reports whether the stream has delivered everything it is
// going to, per usable-half policy (Spec Section 4.4): for a
// unidirectional stream, the single usable half must be terminal; for a
// bidirectional stream, either half reaching terminal state is
// sufficient (for a file transfer, one half suffices — this is a
// deliberate departure from QUIC, where both halves must close; see
// design notes).
func (s *Stream) IsFinished() bool {
	if s.senderUsable && !s.receiverUsable {
		return s.Sender.IsTerminal()
	}
	if s.receiverUsable && !s.senderUsable {
		return s.Receiver.IsTerminal()
	}
	return s.Sender.IsTerminal() || s.Receiver.IsTerminal()
}
