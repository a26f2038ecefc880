package connection

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/backkem/qdt/pkg/netio"
)

func newTestPair(t *testing.T) (*Connection, *Connection, func()) {
	t.Helper()
	connA, connB, pipe := netio.NewPipe()

	sender := New(Config{
		LocalID:        0,
		Conn:           connA,
		FramesInPacket: 5,
		MinPacketSize:  128,
		MaxPacketSize:  128,
		Timeout:        2 * time.Second,
	})
	receiver := New(Config{
		LocalID:        1,
		Conn:           connB,
		FramesInPacket: 5,
		MinPacketSize:  128,
		MaxPacketSize:  128,
		Timeout:        2 * time.Second,
	})

	return sender, receiver, func() { pipe.Close() }
}

func TestSingleStreamRoundTrip(t *testing.T) {
	sender, receiver, cleanup := newTestPair(t)
	defer cleanup()

	payload := []byte("the quick brown fox jumps over the lazy dog, repeated for bulk: " +
		"the quick brown fox jumps over the lazy dog")

	s := sender.CreateStream(true)
	if err := sender.AddData(s.ID, payload); err != nil {
		t.Fatalf("AddData: %v", err)
	}

	received := make(map[uint64][]byte)
	var mu sync.Mutex
	receiver.StreamComplete = func(id uint64, data []byte) {
		mu.Lock()
		defer mu.Unlock()
		received[id] = append([]byte(nil), data...)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	go func() { defer wg.Done(); sendErr = sender.SendPackets() }()
	go func() { defer wg.Done(); recvErr = receiver.ReceivePackets() }()
	wg.Wait()

	if sendErr != nil {
		t.Fatalf("SendPackets: %v", sendErr)
	}
	if recvErr != nil {
		t.Fatalf("ReceivePackets: %v", recvErr)
	}

	mu.Lock()
	got, ok := received[s.ID]
	mu.Unlock()
	if !ok {
		t.Fatalf("stream %d never completed", s.ID)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestMultiStreamFairness(t *testing.T) {
	sender, receiver, cleanup := newTestPair(t)
	defer cleanup()

	const numStreams = 5
	payloads := make(map[uint64][]byte)

	for i := 0; i < numStreams; i++ {
		s := sender.CreateStream(true)
		data := bytes.Repeat([]byte{byte('A' + i)}, 50+i*10)
		payloads[s.ID] = data
		if err := sender.AddData(s.ID, data); err != nil {
			t.Fatalf("AddData: %v", err)
		}
	}

	received := make(map[uint64][]byte)
	var mu sync.Mutex
	receiver.StreamComplete = func(id uint64, data []byte) {
		mu.Lock()
		defer mu.Unlock()
		received[id] = append([]byte(nil), data...)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	go func() { defer wg.Done(); sendErr = sender.SendPackets() }()
	go func() { defer wg.Done(); recvErr = receiver.ReceivePackets() }()
	wg.Wait()

	if sendErr != nil {
		t.Fatalf("SendPackets: %v", sendErr)
	}
	if recvErr != nil {
		t.Fatalf("ReceivePackets: %v", recvErr)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != numStreams {
		t.Fatalf("got %d completed streams, want %d", len(received), numStreams)
	}
	for id, want := range payloads {
		got, ok := received[id]
		if !ok {
			t.Fatalf("stream %d never completed", id)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("stream %d: got %d bytes, want %d bytes", id, len(got), len(want))
		}
	}

	if sender.PacketsSent() < uint64(numStreams) {
		t.Fatalf("expected at least %d packets sent for %d streams, got %d",
			numStreams, numStreams, sender.PacketsSent())
	}
}

func TestOperationsAfterCloseReturnErrClosed(t *testing.T) {
	sender, _, cleanup := newTestPair(t)
	defer cleanup()

	s := sender.CreateStream(true)
	if err := sender.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := sender.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close: got %v, want ErrClosed", err)
	}
	if err := sender.AddData(s.ID, []byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("AddData after Close: got %v, want ErrClosed", err)
	}
	if err := sender.SendPackets(); !errors.Is(err, ErrClosed) {
		t.Fatalf("SendPackets after Close: got %v, want ErrClosed", err)
	}
}

func TestPacketSizeBeforeNegotiation(t *testing.T) {
	sender, _, cleanup := newTestPair(t)
	defer cleanup()

	if _, err := sender.PacketSize(); !errors.Is(err, ErrNoPacketSize) {
		t.Fatalf("PacketSize before negotiation: got %v, want ErrNoPacketSize", err)
	}
}

func TestReceiverTimesOutWithNoTraffic(t *testing.T) {
	_, conn1, pipe := netio.NewPipe()
	defer pipe.Close()

	receiver := New(Config{
		LocalID: 1,
		Conn:    conn1,
		Timeout: 30 * time.Millisecond,
	})

	start := time.Now()
	if err := receiver.ReceivePackets(); err != nil {
		t.Fatalf("ReceivePackets: %v", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatal("ReceivePackets returned before the configured timeout elapsed")
	}
}

func TestEmptyStreamSendsFinOnly(t *testing.T) {
	sender, receiver, cleanup := newTestPair(t)
	defer cleanup()

	s := sender.CreateStream(true)
	if err := sender.AddData(s.ID, nil); err != nil {
		t.Fatalf("AddData: %v", err)
	}

	var got []byte
	var gotOK bool
	receiver.StreamComplete = func(id uint64, data []byte) {
		if id == s.ID {
			got = data
			gotOK = true
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); sender.SendPackets() }()
	go func() { defer wg.Done(); receiver.ReceivePackets() }()
	wg.Wait()

	if !gotOK {
		t.Fatal("empty stream never completed")
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes, want 0", len(got))
	}
}
