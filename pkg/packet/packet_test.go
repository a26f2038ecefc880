package packet

import (
	"bytes"
	"testing"

	"github.com/backkem/qdt/pkg/frame"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Header{
		{},
		{Form: true, Fixed: true, Spin: true, Reserved: 3, KeyPhase: true, PNLen: 2},
		{PNLen: 1},
		{Reserved: 2, PNLen: 3},
	}

	for _, h := range tests {
		b := h.Encode()
		got := DecodeHeader(b)
		if got != h {
			t.Fatalf("got %+v, want %+v (byte %#x)", got, h, b)
		}
	}
}

func TestPacketEncodeDecodeRoundTrip(t *testing.T) {
	p := Packet{
		DestConnID: 38,
		Number:     1,
		Frames: []frame.Stream{
			{StreamID: 10, Length: 7, Data: []byte("Frame 1")},
			{StreamID: 20, Length: 7, Fin: true, Data: []byte("Frame 2")},
		},
	}

	encoded := p.Encode()
	got, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.DestConnID != p.DestConnID || got.Number != p.Number {
		t.Fatalf("got dest=%d num=%d, want dest=%d num=%d", got.DestConnID, got.Number, p.DestConnID, p.Number)
	}
	if len(got.Frames) != len(p.Frames) {
		t.Fatalf("got %d frames, want %d", len(got.Frames), len(p.Frames))
	}
	for i := range p.Frames {
		if got.Frames[i].StreamID != p.Frames[i].StreamID {
			t.Fatalf("frame %d: stream id mismatch", i)
		}
		if got.Frames[i].Fin != p.Frames[i].Fin {
			t.Fatalf("frame %d: fin mismatch", i)
		}
		if !bytes.Equal(got.Frames[i].Data, p.Frames[i].Data) {
			t.Fatalf("frame %d: data mismatch", i)
		}
	}
}

func TestPacketNumberLengthGrowsWithMagnitude(t *testing.T) {
	tests := []struct {
		number   uint64
		wantSize int
	}{
		{number: 0, wantSize: 1},
		{number: 255, wantSize: 1},
		{number: 256, wantSize: 2},
		{number: 1 << 16, wantSize: 3},
	}

	for _, tt := range tests {
		p := Packet{DestConnID: 1, Number: tt.number}
		encoded := p.Encode()
		h := DecodeHeader(encoded[0])
		if int(h.PNLen) != tt.wantSize {
			t.Fatalf("number %d: pn_len = %d, want %d", tt.number, h.PNLen, tt.wantSize)
		}
		if len(encoded) != 1+DestConnIDSize+tt.wantSize {
			t.Fatalf("number %d: encoded len = %d, want %d", tt.number, len(encoded), 1+DestConnIDSize+tt.wantSize)
		}
	}
}

func TestDecodeTooShort(t *testing.T) {
	if _, err := Decode([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatal("expected error for short packet")
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	p := Packet{DestConnID: 1, Number: 1, Frames: []frame.Stream{{StreamID: 1, Length: 100, Data: []byte("short")}}}
	encoded := p.Encode()
	// Truncate the payload so the declared length overshoots.
	truncated := encoded[:len(encoded)-3]
	if _, err := Decode(truncated); err == nil {
		t.Fatal("expected error for truncated frame")
	}
}
