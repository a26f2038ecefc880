// Package packet implements the packet codec: a 1-byte header, an 8-byte
// destination connection id, a variable-length packet number, and a
// concatenated payload of STREAM frames (Spec Section 4.2).
package packet

// Header is the 1-byte packet header. Bit layout, MSB first:
//
//	form(1) | fixed(1) | spin(1) | reserved(2) | key_phase(1) | pn_len(2)
//
// Only pn_len is operationally consulted; the other bits round-trip
// unexamined. pn_len carries the actual byte length of the packet number
// field, not RFC 9000's "length minus one" encoding, as the original
// source does (see design notes). Encode keeps only the low 2 bits of
// PNLen, so lengths 1-3 round-trip while a length of 4 is written as 0.
type Header struct {
	Form     bool
	Fixed    bool
	Spin     bool
	Reserved uint8 // 2 bits
	KeyPhase bool
	PNLen    uint8 // byte length of the packet number field, 1-4
}

const (
	formShift     = 7
	fixedShift    = 6
	spinShift     = 5
	reservedShift = 3
	keyPhaseShift = 2

	reservedMask = 0x3
	pnLenMask    = 0x3
)

// Encode serializes the header to its single wire byte.
func (h Header) Encode() byte {
	var b uint8
	if h.Form {
		b |= 1 << formShift
	}
	if h.Fixed {
		b |= 1 << fixedShift
	}
	if h.Spin {
		b |= 1 << spinShift
	}
	b |= (h.Reserved & reservedMask) << reservedShift
	if h.KeyPhase {
		b |= 1 << keyPhaseShift
	}
	b |= h.PNLen & pnLenMask
	return b
}

// DecodeHeader parses the header byte.
func DecodeHeader(b byte) Header {
	return Header{
		Form:     b&(1<<formShift) != 0,
		Fixed:    b&(1<<fixedShift) != 0,
		Spin:     b&(1<<spinShift) != 0,
		Reserved: (b >> reservedShift) & reservedMask,
		KeyPhase: b&(1<<keyPhaseShift) != 0,
		PNLen:    b & pnLenMask,
	}
}
