// Package config provides shared CLI flag parsing for the sender and
// receiver entry points.
package config

import (
	"flag"
	"time"
)

// Options holds the runtime configuration constants from Spec Section 6,
// exposed as flags instead of compile-time constants so both binaries can
// be pointed at different addresses and budgets without a rebuild.
type Options struct {
	// MinPacketSize and MaxPacketSize bound the packet size the sender
	// negotiates.
	MinPacketSize int
	MaxPacketSize int

	// FramesInPacket divides the negotiated packet size to get each
	// active stream's per-packet frame budget.
	FramesInPacket int

	// Timeout is the receiver's socket read timeout.
	Timeout time.Duration

	// ListenAddr is the local address to bind to.
	ListenAddr string

	// RemoteAddr is the peer address (required by the sender, ignored by
	// the receiver, which learns it from the first datagram).
	RemoteAddr string

	// ConnectionID is this endpoint's local connection id: 0 or 1.
	ConnectionID uint64

	// MaxStreams is the number of streams the sender creates.
	MaxStreams int

	// FilePath is the file loaded into each stream created by the
	// sender.
	FilePath string

	// OutputDir is the directory the receiver writes completed streams
	// into.
	OutputDir string
}

// DefaultSenderOptions returns the defaults for the sender binary.
func DefaultSenderOptions() Options {
	return Options{
		MinPacketSize:  1000,
		MaxPacketSize:  2000,
		FramesInPacket: 5,
		Timeout:        30 * time.Second,
		ListenAddr:     "127.0.0.1:33336",
		RemoteAddr:     "127.0.0.1:3492",
		ConnectionID:   0,
		MaxStreams:     5,
	}
}

// DefaultReceiverOptions returns the defaults for the receiver binary.
func DefaultReceiverOptions() Options {
	return Options{
		MinPacketSize:  1000,
		MaxPacketSize:  2000,
		FramesInPacket: 5,
		Timeout:        30 * time.Second,
		ListenAddr:     "127.0.0.1:3492",
		ConnectionID:   1,
		OutputDir:      ".",
	}
}

// ParseSenderFlags parses the sender's CLI flags.
//
//	-listen    Local address to bind (default: 127.0.0.1:33336)
//	-remote    Receiver address (default: 127.0.0.1:3492)
//	-file      File loaded into every stream (required)
//	-streams   Number of streams to create (default: 5)
//	-min-size  Minimum negotiated packet size (default: 1000)
//	-max-size  Maximum negotiated packet size (default: 2000)
//	-frames    Per-packet frame budget divisor (default: 5)
func ParseSenderFlags() Options {
	defaults := DefaultSenderOptions()
	o := defaults

	flag.StringVar(&o.ListenAddr, "listen", defaults.ListenAddr, "local address to bind")
	flag.StringVar(&o.RemoteAddr, "remote", defaults.RemoteAddr, "receiver address")
	flag.StringVar(&o.FilePath, "file", "", "file loaded into every stream")
	flag.IntVar(&o.MaxStreams, "streams", defaults.MaxStreams, "number of streams to create")
	flag.IntVar(&o.MinPacketSize, "min-size", defaults.MinPacketSize, "minimum negotiated packet size")
	flag.IntVar(&o.MaxPacketSize, "max-size", defaults.MaxPacketSize, "maximum negotiated packet size")
	flag.IntVar(&o.FramesInPacket, "frames", defaults.FramesInPacket, "per-packet frame budget divisor")
	flag.Parse()

	o.ConnectionID = 0
	return o
}

// ParseReceiverFlags parses the receiver's CLI flags.
//
//	-listen    Local address to bind (default: 127.0.0.1:3492)
//	-out       Directory completed streams are written into (default: .)
//	-timeout   Receive socket read timeout (default: 30s)
func ParseReceiverFlags() Options {
	defaults := DefaultReceiverOptions()
	o := defaults

	flag.StringVar(&o.ListenAddr, "listen", defaults.ListenAddr, "local address to bind")
	flag.StringVar(&o.OutputDir, "out", defaults.OutputDir, "directory completed streams are written into")
	flag.DurationVar(&o.Timeout, "timeout", defaults.Timeout, "receive socket read timeout")
	flag.Parse()

	o.ConnectionID = 1
	return o
}
