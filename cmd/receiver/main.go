// receiver listens for incoming streams and writes each one, once
// complete, to its own file in the output directory.
//
// Usage:
//
//	receiver [options]
//
// Options:
//
//	-listen    Local address to bind (default: 127.0.0.1:3492)
//	-out       Directory completed streams are written into (default: .)
//	-timeout   Receive socket read timeout (default: 30s)
//
// Exit code is 0 on normal termination, including on receive timeout:
// a timed-out read is the loop's ordinary terminal signal, not a failure.
package main

import (
	"log"

	"github.com/pion/logging"

	"github.com/backkem/qdt/internal/config"
	"github.com/backkem/qdt/internal/fileio"
	"github.com/backkem/qdt/pkg/connection"
	"github.com/backkem/qdt/pkg/netio"
)

func main() {
	opts := config.ParseReceiverFlags()

	conn, err := netio.ListenUDP(opts.ListenAddr)
	if err != nil {
		log.Fatalf("receiver: listen: %v", err)
	}

	c := connection.New(connection.Config{
		LocalID:        opts.ConnectionID,
		Conn:           conn,
		FramesInPacket: opts.FramesInPacket,
		MinPacketSize:  opts.MinPacketSize,
		MaxPacketSize:  opts.MaxPacketSize,
		Timeout:        opts.Timeout,
		LoggerFactory:  logging.NewDefaultLoggerFactory(),
	})

	c.StreamComplete = func(streamID uint64, data []byte) {
		if err := fileio.WriteStream(opts.OutputDir, streamID, data); err != nil {
			log.Printf("receiver: %v", err)
		}
	}

	if err := c.ReceivePackets(); err != nil {
		log.Fatalf("receiver: %v", err)
	}
}
