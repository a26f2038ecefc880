package stream

import (
	"sort"

	"github.com/backkem/qdt/pkg/frame"
)

// ReceiverState is the lifecycle state of a Receiver half (Spec Section 4.3).
type ReceiverState int

const (
	// Recv is accumulating frames; FIN has not yet arrived.
	Recv ReceiverState = iota
	// SizeKnown has seen the FIN frame and knows the final size.
	SizeKnown
	// RecvDataRecvd has flushed the reassembly map into a contiguous buffer.
	RecvDataRecvd
	// DataRead is terminal: GetData has handed out the buffer.
	DataRead
)

// Receiver is the receiving half of a stream: a total-bytes-admitted
// counter, an offset-keyed reassembly map, and the contiguous buffer
// materialized once every byte up to the FIN-declared final size has
// arrived.
type Receiver struct {
	streamID  uint64
	offset    uint64
	recvMap   map[uint64][]byte
	buffer    []byte
	state     ReceiverState
	finalSize uint64
	haveFinal bool
}

// NewReceiver creates a Receiver half for the given stream id.
func NewReceiver(streamID uint64) *Receiver {
	return &Receiver{streamID: streamID, recvMap: make(map[uint64][]byte)}
}

// State returns the current lifecycle state.
func (r *Receiver) State() ReceiverState {
	return r.state
}

// IsTerminal reports whether the receiver has reached RecvDataRecvd or
// beyond. DataRead counts as terminal too: the stream has fully delivered once.
func (r *Receiver) IsTerminal() bool {
	return r.state == RecvDataRecvd || r.state == DataRead
}

// HandleFrame admits a frame into the reassembly map. If the frame carries
// FIN, the final size becomes known (the stream may still be missing
// frames that arrive later out of order) and state advances to SizeKnown.
// An offset key present twice is overwritten (duplicates are benign since
// data for a given offset is deterministic under the reliable-channel
// assumption). Once the final size is known and every byte up to it has
// been admitted, the map is sorted by offset and flushed into the
// contiguous buffer, and state advances to RecvDataRecvd.
func (r *Receiver) HandleFrame(f frame.Stream) {
	if f.Fin {
		r.state = SizeKnown
		r.finalSize = f.Offset + uint64(len(f.Data))
		r.haveFinal = true
	}

	r.recvMap[f.Offset] = f.Data
	r.offset += uint64(len(f.Data))

	if r.haveFinal && r.state != RecvDataRecvd && r.state != DataRead && r.receivedBytes() == r.finalSize {
		r.flush()
	}
}

// receivedBytes sums the length of every admitted frame payload.
func (r *Receiver) receivedBytes() uint64 {
	var total uint64
	for _, data := range r.recvMap {
		total += uint64(len(data))
	}
	return total
}

// flush sorts the reassembly map by ascending offset, concatenates the
// values into buffer, and advances state to RecvDataRecvd.
func (r *Receiver) flush() {
	offsets := make([]uint64, 0, len(r.recvMap))
	for off := range r.recvMap {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var buf []byte
	for _, off := range offsets {
		buf = append(buf, r.recvMap[off]...)
	}
	r.buffer = buf
	r.state = RecvDataRecvd
}

// GetData returns the reassembled buffer, if ready, and advances state to
// DataRead. A second call returns ErrReceiverNotReady.
func (r *Receiver) GetData() ([]byte, error) {
	if r.state != RecvDataRecvd {
		return nil, ErrReceiverNotReady
	}
	r.state = DataRead
	return r.buffer, nil
}
