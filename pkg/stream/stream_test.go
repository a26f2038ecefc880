package stream

import (
	"errors"
	"testing"
)

func TestStreamIDAttributes(t *testing.T) {
	tests := []struct {
		uni  bool
		srv  bool
	}{
		{false, false},
		{false, true},
		{true, false},
		{true, true},
	}

	for _, tt := range tests {
		id := NewID(3, tt.uni, tt.srv)
		if IsUnidirectional(id) != tt.uni {
			t.Fatalf("IsUnidirectional(%d) = %v, want %v", id, IsUnidirectional(id), tt.uni)
		}
		if IsServerInitiated(id) != tt.srv {
			t.Fatalf("IsServerInitiated(%d) = %v, want %v", id, IsServerInitiated(id), tt.srv)
		}
	}
}

func TestStreamIDGenerationInjective(t *testing.T) {
	seen := map[uint64]bool{}
	for counter := uint64(0); counter < 100; counter++ {
		id := NewID(counter, true, false)
		if seen[id] {
			t.Fatalf("duplicate id %d at counter %d", id, counter)
		}
		seen[id] = true
	}
}

func TestBidirectionalUsableBothSides(t *testing.T) {
	id := NewID(0, false, false) // client-created, bidirectional

	client := New(id, false)
	if !client.SenderUsable() || !client.ReceiverUsable() {
		t.Fatal("client: both halves should be usable")
	}

	server := New(id, true)
	if !server.SenderUsable() || !server.ReceiverUsable() {
		t.Fatal("server: both halves should be usable")
	}
}

func TestUnidirectionalUsability(t *testing.T) {
	id := NewID(0, true, false) // client-initiated, unidirectional

	initiator := New(id, false) // local is the client that created it
	if !initiator.SenderUsable() || initiator.ReceiverUsable() {
		t.Fatalf("initiator side: sender=%v receiver=%v, want sender=true receiver=false",
			initiator.SenderUsable(), initiator.ReceiverUsable())
	}

	peer := New(id, true) // local is the server, the peer side
	if peer.SenderUsable() || !peer.ReceiverUsable() {
		t.Fatalf("peer side: sender=%v receiver=%v, want sender=false receiver=true",
			peer.SenderUsable(), peer.ReceiverUsable())
	}
}

func TestIsFinishedUnidirectional(t *testing.T) {
	id := NewID(0, true, false)
	s := New(id, false) // sender side only

	if s.IsFinished() {
		t.Fatal("fresh stream should not be finished")
	}

	if err := s.Sender.AddData([]byte("x")); err != nil {
		t.Fatal(err)
	}
	s.Sender.GenerateStreamFrames(10)
	for s.Sender.HasPending() {
		s.Sender.SendNextFrame()
	}

	if !s.IsFinished() {
		t.Fatal("stream should be finished once the usable half is terminal")
	}
}

func TestUnusableHalfRejectsAccess(t *testing.T) {
	id := NewID(0, true, false) // client-initiated, unidirectional

	initiator := New(id, false) // sender usable, receiver unusable
	if _, err := initiator.GetData(); !errors.Is(err, ErrHalfUnusable) {
		t.Fatalf("GetData on the unusable receiver half: got %v, want ErrHalfUnusable", err)
	}

	peer := New(id, true) // receiver usable, sender unusable
	if err := peer.AddData([]byte("x")); !errors.Is(err, ErrHalfUnusable) {
		t.Fatalf("AddData on the unusable sender half: got %v, want ErrHalfUnusable", err)
	}
}

func TestIsFinishedBidirectionalEitherHalf(t *testing.T) {
	id := NewID(0, false, false)
	s := New(id, false)

	if err := s.Sender.AddData(nil); err != nil {
		t.Fatal(err)
	}
	s.Sender.GenerateStreamFrames(10)
	for s.Sender.HasPending() {
		s.Sender.SendNextFrame()
	}

	if !s.IsFinished() {
		t.Fatal("bidirectional stream should be finished once either half is terminal")
	}
}
