package connection

import (
	"encoding/binary"
	"errors"
	"net"
	"time"

	"github.com/backkem/qdt/pkg/frame"
	"github.com/backkem/qdt/pkg/packet"
	"github.com/backkem/qdt/pkg/stream"
)

// pickActive returns the next active stream id in round-robin rotation
// (Spec Section 4.5 leaves the choice of round-robin vs. random to the
// implementer; round-robin is what makes the fairness bound in Spec
// Section 8 — every active stream contributes within a bounded window of
// packets — a guarantee rather than a probabilistic likelihood).
func (c *Connection) pickActive() (uint64, bool) {
	if len(c.order) == 0 {
		return 0, false
	}
	c.cursor %= len(c.order)
	id := c.order[c.cursor]
	c.cursor++
	return id, true
}

// refillActiveSenders asks every usable sender half in the active set to
// partition its buffer into frames, using the per-stream budget derived
// from the negotiated packet size.
func (c *Connection) refillActiveSenders() {
	budget := c.negotiatedSize / c.framesInPacket
	for _, id := range c.order {
		s := c.streams[id]
		if s.SenderUsable() {
			s.Sender.GenerateStreamFrames(budget)
		}
	}
}

// createPacket assembles one outbound packet from the overflow queue and
// the active-stream set (Spec Section 4.5, create_packet). It fills as
// many frames as fit in the negotiated packet size, not just one — the
// Python reference returns after placing a single frame, which this
// implementation treats as a bug (Spec Section 9) rather than intended
// behavior.
func (c *Connection) createPacket() packet.Packet {
	c.refillActiveSenders()

	destConnID := uint64(1) - c.localID
	pkt := packet.Packet{DestConnID: destConnID, Number: c.packetsSent}
	remaining := c.negotiatedSize - packet.HeaderOverhead(pkt.Number)

	for remaining > 0 {
		f, ok := c.nextFrame()
		if !ok {
			break
		}

		size := f.Size()
		if size > remaining {
			c.overflow = append(c.overflow, f)
			break
		}

		pkt.Frames = append(pkt.Frames, f)
		remaining -= size
		c.recordFrameStats(f, pkt.Number)
	}

	c.packetsSent++
	return pkt
}

// nextFrame returns the next frame to place in the packet under
// construction, preferring the connection-level overflow queue over
// picking a fresh stream.
func (c *Connection) nextFrame() (frame.Stream, bool) {
	if len(c.overflow) > 0 {
		f := c.overflow[0]
		c.overflow = c.overflow[1:]
		return f, true
	}

	for {
		id, ok := c.pickActive()
		if !ok {
			return frame.Stream{}, false
		}

		s := c.streams[id]
		f, ok := s.Sender.SendNextFrame()
		if !ok {
			// Nothing queued for this stream right now; it was refilled
			// above, so an empty queue means it has nothing usable left.
			c.removeActive(id)
			continue
		}

		if s.IsFinished() {
			c.removeActive(id)
		}
		return f, true
	}
}

// recordFrameStats updates the per-stream byte and packet-number counters
// for a frame, whether sent or received.
func (c *Connection) recordFrameStats(f frame.Stream, packetNumber uint64) {
	st, ok := c.stats[f.StreamID]
	if !ok {
		st = newStreamStats()
		c.stats[f.StreamID] = st
	}
	st.recordFrame(len(f.Data), packetNumber)
}

// negotiatePacketSize picks this connection's packet size uniformly at
// random in [MinPacketSize, MaxPacketSize] and sends it as the 2-byte
// size-negotiation datagram (Spec Section 6).
func (c *Connection) negotiatePacketSize() error {
	span := c.maxPacketSize - c.minPacketSize + 1
	size := c.minPacketSize
	if span > 0 {
		size += c.rng.Intn(span)
	}

	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(size))

	if _, err := c.conn.WriteTo(buf[:], c.remoteAddr); err != nil {
		return err
	}

	c.negotiatedSize = size
	c.sizeKnown = true
	c.log.Infof("negotiated packet size %d", size)
	return nil
}

// SendPackets runs the send loop to completion: negotiate the packet
// size, then build and send packets until the active-stream set and the
// overflow queue are both empty, then close the connection (Spec Section
// 4.5, send_packets).
func (c *Connection) SendPackets() error {
	if c.closed {
		return ErrClosed
	}
	if err := c.negotiatePacketSize(); err != nil {
		return err
	}

	buf := make([]byte, c.maxPacketSize+64)
	for len(c.active) > 0 || len(c.overflow) > 0 {
		pkt := c.createPacket()
		if len(pkt.Frames) == 0 {
			continue
		}

		encoded := pkt.Encode()
		n := copy(buf, encoded)
		if _, err := c.conn.WriteTo(buf[:n], c.remoteAddr); err != nil {
			c.log.Errorf("send failed: %v", err)
			return err
		}
	}

	return c.Close()
}

// ReceivePackets runs the receive loop to completion: read the
// size-negotiation datagram, then decode and dispatch data packets until
// the active set drains or the socket read times out (Spec Section 4.5,
// receive_packets).
func (c *Connection) ReceivePackets() error {
	if c.closed {
		return ErrClosed
	}
	buf := make([]byte, c.maxPacketSize+64)

	for {
		c.conn.SetReadDeadline(time.Now().Add(c.timeout))
		n, addr, err := c.conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.log.Info("receive timeout, closing connection")
				return c.Close()
			}
			return err
		}
		if c.remoteAddr == nil {
			c.remoteAddr = addr
		}

		if !c.sizeKnown {
			if n < 2 {
				c.log.Warnf("size-negotiation datagram too short (%d bytes), dropping", n)
				continue
			}
			c.negotiatedSize = int(binary.BigEndian.Uint16(buf[:2]))
			c.sizeKnown = true
			c.log.Infof("received negotiated packet size %d", c.negotiatedSize)
			continue
		}

		c.handleDatagram(buf[:n])

		if len(c.active) == 0 && len(c.streams) > 0 {
			return c.Close()
		}
	}
}

// handleDatagram decodes one data packet and dispatches each of its
// frames to its stream, lazily creating the stream on first sight of its
// id (Spec Section 7: unknown stream id never raises). Decode errors are
// logged and the datagram is dropped; per-frame dispatch never fails once
// decoded.
func (c *Connection) handleDatagram(data []byte) {
	pkt, err := packet.Decode(data)
	if err != nil {
		c.log.Warnf("dropping malformed packet: %v", err)
		return
	}
	c.packetsReceived++

	for _, f := range pkt.Frames {
		c.handleFrame(f, pkt.Number)
	}
}

// handleFrame delivers one STREAM frame to its stream, records receive
// statistics, and writes the stream's reassembled data out once it
// finishes.
func (c *Connection) handleFrame(f frame.Stream, packetNumber uint64) {
	s, ok := c.streams[f.StreamID]
	if !ok {
		s = stream.New(f.StreamID, c.localIsServer())
		c.streams[f.StreamID] = s
	}
	c.markActive(f.StreamID)

	if !s.ReceiverUsable() {
		return
	}

	s.Receiver.HandleFrame(f)
	c.recordFrameStats(f, packetNumber)

	if s.IsFinished() {
		c.removeActive(f.StreamID)
		if data, err := s.GetData(); err == nil {
			c.onStreamComplete(f.StreamID, data)
		}
	}
}

// onStreamComplete is called once per stream with its fully reassembled
// data. The default implementation is a no-op; callers that need to
// persist data (internal/fileio) set StreamComplete before running
// ReceivePackets.
func (c *Connection) onStreamComplete(streamID uint64, data []byte) {
	if c.StreamComplete != nil {
		c.StreamComplete(streamID, data)
	}
}

// Close closes the underlying socket and logs final per-stream
// statistics. A second call returns ErrClosed.
func (c *Connection) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true

	now := time.Now()
	for id, st := range c.stats {
		st.ElapsedTime = now.Sub(st.StartTime)
		c.log.Infof("stream %d: %d bytes in %d packets, elapsed %s",
			id, st.BytesTransferred, st.DistinctPackets(), st.ElapsedTime)
	}
	return c.conn.Close()
}
