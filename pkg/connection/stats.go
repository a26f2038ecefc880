package connection

import "time"

// StreamStats tracks per-stream transfer statistics, reported when a
// connection closes (Spec Section 4.5).
type StreamStats struct {
	BytesTransferred int
	PacketNumbers    map[uint64]struct{}
	StartTime        time.Time
	ElapsedTime      time.Duration
}

func newStreamStats() *StreamStats {
	return &StreamStats{PacketNumbers: make(map[uint64]struct{})}
}

func (s *StreamStats) recordFrame(bytes int, packetNumber uint64) {
	s.BytesTransferred += bytes
	s.PacketNumbers[packetNumber] = struct{}{}
}

// DistinctPackets returns the number of distinct packet numbers that
// carried a frame for this stream.
func (s *StreamStats) DistinctPackets() int {
	return len(s.PacketNumbers)
}
