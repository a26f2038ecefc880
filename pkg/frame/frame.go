// Package frame implements the wire encoding for STREAM frames, the only
// frame type carried end to end on the connection (Spec Section 4.1).
//
// A STREAM frame carries an offset-addressed slice of one stream's byte
// sequence. The wire format uses a single type byte with presence flags
// for the optional offset and length fields, so a zero-valued offset or
// length is indistinguishable from an absent one — this is intentional:
// only the first frame of a stream ever has offset 0.
package frame

import (
	"encoding/binary"
)

// Type bit layout (Spec Section 3): 0000 1 OFF LEN FIN.
const (
	typeField uint8 = 0x08
	offBit    uint8 = 0x04
	lenBit    uint8 = 0x02
	finBit    uint8 = 0x01
)

// Field widths on the wire, in bytes.
const (
	typeSize     = 1
	streamIDSize = 8
	offsetSize   = 8
	lengthSize   = 8
)

// Stream is a STREAM frame: a slice of one stream's byte sequence, tagged
// with its absolute offset and, for the last frame of a stream, FIN.
type Stream struct {
	StreamID uint64
	Offset   uint64
	Length   uint64
	Fin      bool
	Data     []byte
}

// Size returns the encoded size of the frame in bytes.
func (f *Stream) Size() int {
	size := typeSize + streamIDSize
	if f.Offset != 0 {
		size += offsetSize
	}
	if f.Length != 0 {
		size += lengthSize
	}
	return size + len(f.Data)
}

// typeByte constructs the type byte for this frame.
func (f *Stream) typeByte() uint8 {
	t := typeField
	if f.Offset != 0 {
		t |= offBit
	}
	if f.Length != 0 {
		t |= lenBit
	}
	if f.Fin {
		t |= finBit
	}
	return t
}

// Encode serializes the frame to its wire form.
func (f *Stream) Encode() []byte {
	buf := make([]byte, f.Size())
	f.EncodeTo(buf)
	return buf
}

// EncodeTo serializes the frame into buf, which must be at least Size()
// bytes long. Returns the number of bytes written.
func (f *Stream) EncodeTo(buf []byte) int {
	offset := 0

	buf[offset] = f.typeByte()
	offset++

	binary.BigEndian.PutUint64(buf[offset:], f.StreamID)
	offset += streamIDSize

	if f.Offset != 0 {
		binary.BigEndian.PutUint64(buf[offset:], f.Offset)
		offset += offsetSize
	}

	if f.Length != 0 {
		binary.BigEndian.PutUint64(buf[offset:], f.Length)
		offset += lengthSize
	}

	offset += copy(buf[offset:], f.Data)

	return offset
}

// Decode parses a single STREAM frame from data. The caller is expected to
// pass exactly one frame's worth of bytes (the packet parser determines
// the boundary via EndOfAttrs/LengthFromAttrs); any trailing bytes become
// the frame's Data.
func Decode(data []byte) (Stream, error) {
	if len(data) < typeSize+streamIDSize {
		return Stream{}, ErrFrameTooShort
	}

	t := data[0]
	if t&0xF8 != typeField {
		return Stream{}, ErrInvalidFrameType
	}

	f := Stream{}
	idx := typeSize

	f.StreamID = binary.BigEndian.Uint64(data[idx:])
	idx += streamIDSize

	if t&offBit != 0 {
		if len(data) < idx+offsetSize {
			return Stream{}, ErrFrameTooShort
		}
		f.Offset = binary.BigEndian.Uint64(data[idx:])
		idx += offsetSize
	}

	if t&lenBit != 0 {
		if len(data) < idx+lengthSize {
			return Stream{}, ErrFrameTooShort
		}
		f.Length = binary.BigEndian.Uint64(data[idx:])
		idx += lengthSize
	}

	f.Fin = t&finBit != 0

	if idx < len(data) {
		f.Data = make([]byte, len(data)-idx)
		copy(f.Data, data[idx:])
	}

	return f, nil
}

// EndOfAttrs returns the byte index past the fixed and optional header
// fields of the frame whose type byte is first. The packet parser calls
// this on just the leading byte of a frame to learn where the header ends
// and the length-dependent payload begins.
func EndOfAttrs(first byte) int {
	end := typeSize + streamIDSize
	if first&offBit != 0 {
		end += offsetSize
	}
	if first&lenBit != 0 {
		end += lengthSize
	}
	return end
}

// LengthFromAttrs returns the value of the LEN field within header, given
// the EndOfAttrs already computed for it, or 0 if LEN is absent. header
// must contain at least endOfAttrs bytes (the frame's full header).
func LengthFromAttrs(header []byte, endOfAttrs int) uint64 {
	first := header[0]
	if first&lenBit == 0 {
		return 0
	}
	return binary.BigEndian.Uint64(header[endOfAttrs-lengthSize : endOfAttrs])
}
