package frame

import "encoding/binary"

// Stub frame types gestured at by the protocol but never exercised on the
// wire end to end (Spec Section 9). Each round-trips its own encoding; none
// of them are dispatched by the packet parser, which only ever walks STREAM
// frames (type 0x08-0x0F).
const (
	TypeResetStream       uint8 = 0x04
	TypeStopSending       uint8 = 0x05
	TypeMaxData           uint8 = 0x10
	TypeMaxStreamData     uint8 = 0x11
	TypeMaxStreams        uint8 = 0x12
	TypeDataBlocked       uint8 = 0x14
	TypeStreamDataBlocked uint8 = 0x15
)

// ResetStream abandons sending on a stream (unused by this protocol).
type ResetStream struct {
	StreamID  uint64
	ErrorCode uint64
	FinalSize uint64
}

// Encode serializes a RESET_STREAM frame.
func (r *ResetStream) Encode() []byte {
	buf := make([]byte, 1+8+8+8)
	buf[0] = TypeResetStream
	binary.BigEndian.PutUint64(buf[1:], r.StreamID)
	binary.BigEndian.PutUint64(buf[9:], r.ErrorCode)
	binary.BigEndian.PutUint64(buf[17:], r.FinalSize)
	return buf
}

// DecodeResetStream parses a RESET_STREAM frame.
func DecodeResetStream(data []byte) (ResetStream, error) {
	if len(data) < 25 || data[0] != TypeResetStream {
		return ResetStream{}, ErrInvalidFrameType
	}
	return ResetStream{
		StreamID:  binary.BigEndian.Uint64(data[1:]),
		ErrorCode: binary.BigEndian.Uint64(data[9:]),
		FinalSize: binary.BigEndian.Uint64(data[17:]),
	}, nil
}

// StopSending requests that a peer abandon sending on a stream.
type StopSending struct {
	StreamID  uint64
	ErrorCode uint64
}

// Encode serializes a STOP_SENDING frame.
func (s *StopSending) Encode() []byte {
	buf := make([]byte, 1+8+8)
	buf[0] = TypeStopSending
	binary.BigEndian.PutUint64(buf[1:], s.StreamID)
	binary.BigEndian.PutUint64(buf[9:], s.ErrorCode)
	return buf
}

// DecodeStopSending parses a STOP_SENDING frame.
func DecodeStopSending(data []byte) (StopSending, error) {
	if len(data) < 17 || data[0] != TypeStopSending {
		return StopSending{}, ErrInvalidFrameType
	}
	return StopSending{
		StreamID:  binary.BigEndian.Uint64(data[1:]),
		ErrorCode: binary.BigEndian.Uint64(data[9:]),
	}, nil
}

// MaxData advertises a connection-wide flow-control budget (unenforced; no
// flow control is implemented, see Spec Section 1).
type MaxData struct {
	MaximumData uint64
}

// Encode serializes a MAX_DATA frame.
func (m *MaxData) Encode() []byte {
	buf := make([]byte, 1+8)
	buf[0] = TypeMaxData
	binary.BigEndian.PutUint64(buf[1:], m.MaximumData)
	return buf
}

// DecodeMaxData parses a MAX_DATA frame.
func DecodeMaxData(data []byte) (MaxData, error) {
	if len(data) < 9 || data[0] != TypeMaxData {
		return MaxData{}, ErrInvalidFrameType
	}
	return MaxData{MaximumData: binary.BigEndian.Uint64(data[1:])}, nil
}

// MaxStreamData advertises a per-stream flow-control budget (unenforced).
type MaxStreamData struct {
	StreamID          uint64
	MaximumStreamData uint64
}

// Encode serializes a MAX_STREAM_DATA frame.
func (m *MaxStreamData) Encode() []byte {
	buf := make([]byte, 1+8+8)
	buf[0] = TypeMaxStreamData
	binary.BigEndian.PutUint64(buf[1:], m.StreamID)
	binary.BigEndian.PutUint64(buf[9:], m.MaximumStreamData)
	return buf
}

// DecodeMaxStreamData parses a MAX_STREAM_DATA frame.
func DecodeMaxStreamData(data []byte) (MaxStreamData, error) {
	if len(data) < 17 || data[0] != TypeMaxStreamData {
		return MaxStreamData{}, ErrInvalidFrameType
	}
	return MaxStreamData{
		StreamID:          binary.BigEndian.Uint64(data[1:]),
		MaximumStreamData: binary.BigEndian.Uint64(data[9:]),
	}, nil
}

// MaxStreams advertises how many streams the peer may open (unenforced; the
// reference connection never rejects a stream creation request).
type MaxStreams struct {
	MaximumStreams uint64
}

// Encode serializes a MAX_STREAMS frame.
func (m *MaxStreams) Encode() []byte {
	buf := make([]byte, 1+8)
	buf[0] = TypeMaxStreams
	binary.BigEndian.PutUint64(buf[1:], m.MaximumStreams)
	return buf
}

// DecodeMaxStreams parses a MAX_STREAMS frame.
func DecodeMaxStreams(data []byte) (MaxStreams, error) {
	if len(data) < 9 || data[0] != TypeMaxStreams {
		return MaxStreams{}, ErrInvalidFrameType
	}
	return MaxStreams{MaximumStreams: binary.BigEndian.Uint64(data[1:])}, nil
}

// StreamDataBlocked signals that a sender is blocked on a per-stream flow
// control limit (unenforced; never emitted by this implementation).
type StreamDataBlocked struct {
	StreamID            uint64
	MaximumStreamData   uint64
}

// Encode serializes a STREAM_DATA_BLOCKED frame.
func (s *StreamDataBlocked) Encode() []byte {
	buf := make([]byte, 1+8+8)
	buf[0] = TypeStreamDataBlocked
	binary.BigEndian.PutUint64(buf[1:], s.StreamID)
	binary.BigEndian.PutUint64(buf[9:], s.MaximumStreamData)
	return buf
}

// DecodeStreamDataBlocked parses a STREAM_DATA_BLOCKED frame.
func DecodeStreamDataBlocked(data []byte) (StreamDataBlocked, error) {
	if len(data) < 17 || data[0] != TypeStreamDataBlocked {
		return StreamDataBlocked{}, ErrInvalidFrameType
	}
	return StreamDataBlocked{
		StreamID:          binary.BigEndian.Uint64(data[1:]),
		MaximumStreamData: binary.BigEndian.Uint64(data[9:]),
	}, nil
}
