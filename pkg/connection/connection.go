// Package connection implements the connection scheduler: stream
// lifecycle, packet assembly, the send and receive I/O loops, and
// per-stream statistics (Spec Section 4.5). A Connection owns exactly one
// net.PacketConn and one peer; it is not safe for concurrent use, matching
// the single-threaded cooperative model of Spec Section 5.
package connection

import (
	"math/rand"
	"net"
	"time"

	"github.com/pion/logging"

	"github.com/backkem/qdt/pkg/frame"
	"github.com/backkem/qdt/pkg/stream"
)

// Config configures a Connection.
type Config struct {
	// LocalID is this endpoint's connection id: 0 for the side that
	// dials first (the sender, by convention), 1 for the other side.
	LocalID uint64

	// Conn is the packet connection to send and receive on: a real UDP
	// socket in production, or an in-memory pkg/netio.Pipe endpoint in
	// tests.
	Conn net.PacketConn

	// RemoteAddr is the peer address to send to. Required for the
	// sender side; the receiver side learns it from the first received
	// datagram if left nil.
	RemoteAddr net.Addr

	// FramesInPacket divides the negotiated packet size to get each
	// active stream's per-packet frame budget. Default 5.
	FramesInPacket int

	// MinPacketSize and MaxPacketSize bound the packet size the sender
	// negotiates. Defaults 1000 and 2000.
	MinPacketSize int
	MaxPacketSize int

	// Timeout is the receive loop's read deadline (Spec Section 6); a
	// timeout is the normal termination signal, not an error.
	Timeout time.Duration

	// LoggerFactory builds the connection's logger. If nil, pion/logging's
	// default logger factory is used.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) setDefaults() {
	if c.FramesInPacket == 0 {
		c.FramesInPacket = 5
	}
	if c.MinPacketSize == 0 {
		c.MinPacketSize = 1000
	}
	if c.MaxPacketSize == 0 {
		c.MaxPacketSize = 2000
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Connection is a single peer-to-peer scheduler over one UDP socket: the
// stream table, the active-stream set, the connection-level overflow
// frame queue, and the packet/stream counters that feed per-stream
// statistics.
type Connection struct {
	localID    uint64
	conn       net.PacketConn
	remoteAddr net.Addr

	framesInPacket int
	minPacketSize  int
	maxPacketSize  int
	timeout        time.Duration

	log logging.LeveledLogger
	rng *rand.Rand

	streams  map[uint64]*stream.Stream
	active   map[uint64]struct{}
	order    []uint64 // active ids in round-robin rotation order
	cursor   int      // next position in order to serve
	overflow []frame.Stream

	streamCounter   uint64
	packetsSent     uint64
	packetsReceived uint64
	stats           map[uint64]*StreamStats

	negotiatedSize int
	sizeKnown      bool
	closed         bool

	// StreamComplete, if set, is called once per stream on the receive
	// side with its fully reassembled data (internal/fileio wires this
	// to write the stream out to a file).
	StreamComplete func(streamID uint64, data []byte)
}

// New creates a Connection ready to have streams created and data queued
// on it, followed by a single call to SendPackets or ReceivePackets.
func New(cfg Config) *Connection {
	cfg.setDefaults()

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("connection")
	} else {
		log = logging.NewDefaultLoggerFactory().NewLogger("connection")
	}

	return &Connection{
		localID:        cfg.LocalID,
		conn:           cfg.Conn,
		remoteAddr:     cfg.RemoteAddr,
		framesInPacket: cfg.FramesInPacket,
		minPacketSize:  cfg.MinPacketSize,
		maxPacketSize:  cfg.MaxPacketSize,
		timeout:        cfg.Timeout,
		log:            log,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		streams:        make(map[uint64]*stream.Stream),
		active:         make(map[uint64]struct{}),
		stats:          make(map[uint64]*StreamStats),
	}
}

// localIsServer reports whether this endpoint is the server (connection
// id 1) for the purpose of stream directionality (Spec Section 4.4).
func (c *Connection) localIsServer() bool {
	return c.localID == 1
}

// CreateStream allocates a new local stream id (Spec Section 4.5's id
// generation scheme) and registers its Stream. unidirectional selects a
// one-way stream; otherwise the stream is bidirectional.
func (c *Connection) CreateStream(unidirectional bool) *stream.Stream {
	id := stream.NewID(c.streamCounter, unidirectional, c.localIsServer())
	c.streamCounter++

	s := stream.New(id, c.localIsServer())
	c.streams[id] = s
	return s
}

// AddData appends data to streamID's sender buffer and marks the stream
// active. The stream must already exist (created via CreateStream).
func (c *Connection) AddData(streamID uint64, data []byte) error {
	if c.closed {
		return ErrClosed
	}
	s, ok := c.streams[streamID]
	if !ok {
		return errStreamNotFound(streamID)
	}
	if err := s.AddData(data); err != nil {
		return err
	}
	c.markActive(streamID)
	return nil
}

// PacketSize returns the connection's negotiated packet size. Returns
// ErrNoPacketSize if the size-negotiation datagram has not yet been sent
// or received.
func (c *Connection) PacketSize() (int, error) {
	if !c.sizeKnown {
		return 0, ErrNoPacketSize
	}
	return c.negotiatedSize, nil
}

// markActive adds id to the active-stream set if not already present.
func (c *Connection) markActive(id uint64) {
	if _, ok := c.active[id]; ok {
		return
	}
	c.active[id] = struct{}{}
	c.order = append(c.order, id)
	if _, ok := c.stats[id]; !ok {
		st := newStreamStats()
		st.StartTime = time.Now()
		c.stats[id] = st
	}
}

// removeActive drops id from the active-stream set.
func (c *Connection) removeActive(id uint64) {
	if _, ok := c.active[id]; !ok {
		return
	}
	delete(c.active, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// PacketsSent returns the number of packets emitted by this connection.
func (c *Connection) PacketsSent() uint64 { return c.packetsSent }

// PacketsReceived returns the number of packets decoded by this
// connection.
func (c *Connection) PacketsReceived() uint64 { return c.packetsReceived }

// Stats returns the accumulated statistics for streamID, if any.
func (c *Connection) Stats(streamID uint64) (*StreamStats, bool) {
	s, ok := c.stats[streamID]
	return s, ok
}
