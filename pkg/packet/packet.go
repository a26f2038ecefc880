package packet

import (
	"encoding/binary"

	"github.com/backkem/qdt/pkg/frame"
)

// DestConnIDSize is the fixed wire size of the destination connection id.
const DestConnIDSize = 8

// Packet is one UDP datagram payload (after the size-negotiation exchange):
// a header, a destination connection id, a packet number, and an ordered
// list of STREAM frames.
type Packet struct {
	Header     Header
	DestConnID uint64
	Number     uint64
	Frames     []frame.Stream
}

// pnLen returns the number of bytes needed to hold pn, minimum 1.
func pnLen(pn uint64) uint8 {
	n := uint8(1)
	for v := pn >> 8; v != 0; v >>= 8 {
		n++
	}
	return n
}

// HeaderOverhead returns the number of bytes a packet with the given
// packet number occupies before any frames: the 1-byte header, the 8-byte
// destination connection id, and the packet number field itself. Callers
// budgeting how many frame bytes fit in a datagram use this to size the
// remaining space.
func HeaderOverhead(number uint64) int {
	return 1 + DestConnIDSize + int(pnLen(number))
}

// Encode serializes the packet: header(1) || dest_conn_id(8BE) ||
// packet_number(pn_len BE) || frames in order.
func (p *Packet) Encode() []byte {
	pl := pnLen(p.Number)
	h := p.Header
	h.PNLen = pl

	size := 1 + DestConnIDSize + int(pl)
	for i := range p.Frames {
		size += p.Frames[i].Size()
	}

	buf := make([]byte, size)
	buf[0] = h.Encode()

	binary.BigEndian.PutUint64(buf[1:], p.DestConnID)
	idx := 1 + DestConnIDSize

	putUintBE(buf[idx:idx+int(pl)], p.Number, int(pl))
	idx += int(pl)

	for i := range p.Frames {
		idx += p.Frames[i].EncodeTo(buf[idx:])
	}

	return buf
}

// putUintBE writes the low n bytes of v into buf, big-endian.
func putUintBE(buf []byte, v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
}

// getUintBE reads n big-endian bytes from buf as a uint64.
func getUintBE(buf []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// Decode parses a packet from its wire form.
//
// The payload is walked frame by frame without a length prefix: each
// frame's own type byte is probed with frame.EndOfAttrs to learn its
// header size, then frame.LengthFromAttrs yields the data length, and the
// frame spans header+data. Malformed input (short buffer, a LEN field that
// would overshoot the payload, or an unrecognized frame type) is reported
// as an error with no partial frame produced.
func Decode(data []byte) (Packet, error) {
	if len(data) < 1+DestConnIDSize {
		return Packet{}, ErrPacketTooShort
	}

	h := DecodeHeader(data[0])
	pl := int(h.PNLen)
	if pl == 0 {
		pl = 1
	}

	idx := 1
	destConnID := binary.BigEndian.Uint64(data[idx:])
	idx += DestConnIDSize

	if len(data) < idx+pl {
		return Packet{}, ErrPacketTooShort
	}
	number := getUintBE(data[idx:idx+pl], pl)
	idx += pl

	p := Packet{Header: h, DestConnID: destConnID, Number: number}

	payload := data[idx:]
	cursor := 0
	for cursor < len(payload) {
		if cursor >= len(payload) {
			return Packet{}, ErrTruncatedFrame
		}
		end := frame.EndOfAttrs(payload[cursor])
		if cursor+end > len(payload) {
			return Packet{}, ErrTruncatedFrame
		}
		length := frame.LengthFromAttrs(payload[cursor:cursor+end], end)
		frameEnd := cursor + end + int(length)
		if frameEnd > len(payload) {
			return Packet{}, ErrTruncatedFrame
		}

		f, err := frame.Decode(payload[cursor:frameEnd])
		if err != nil {
			return Packet{}, err
		}
		p.Frames = append(p.Frames, f)
		cursor = frameEnd
	}

	return p, nil
}
