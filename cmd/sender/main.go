// sender loads a file into a batch of streams and transmits them to a
// receiver over UDP.
//
// Usage:
//
//	sender [options]
//
// Options:
//
//	-listen    Local address to bind (default: 127.0.0.1:33336)
//	-remote    Receiver address (default: 127.0.0.1:3492)
//	-file      File loaded into every stream (required)
//	-streams   Number of streams to create (default: 5)
//	-min-size  Minimum negotiated packet size (default: 1000)
//	-max-size  Maximum negotiated packet size (default: 2000)
//	-frames    Per-packet frame budget divisor (default: 5)
//
// Example:
//
//	sender -file payload.bin -streams 8
package main

import (
	"log"
	"net"

	"github.com/pion/logging"

	"github.com/backkem/qdt/internal/config"
	"github.com/backkem/qdt/internal/fileio"
	"github.com/backkem/qdt/pkg/connection"
	"github.com/backkem/qdt/pkg/netio"
)

func main() {
	opts := config.ParseSenderFlags()
	if opts.FilePath == "" {
		log.Fatal("sender: -file is required")
	}

	data, err := fileio.LoadFile(opts.FilePath)
	if err != nil {
		log.Fatalf("sender: %v", err)
	}

	conn, err := netio.ListenUDP(opts.ListenAddr)
	if err != nil {
		log.Fatalf("sender: listen: %v", err)
	}

	remoteAddr, err := net.ResolveUDPAddr("udp", opts.RemoteAddr)
	if err != nil {
		log.Fatalf("sender: resolve remote address: %v", err)
	}

	c := connection.New(connection.Config{
		LocalID:        opts.ConnectionID,
		Conn:           conn,
		RemoteAddr:     remoteAddr,
		FramesInPacket: opts.FramesInPacket,
		MinPacketSize:  opts.MinPacketSize,
		MaxPacketSize:  opts.MaxPacketSize,
		LoggerFactory:  logging.NewDefaultLoggerFactory(),
	})

	for i := 0; i < opts.MaxStreams; i++ {
		s := c.CreateStream(true)
		if err := c.AddData(s.ID, data); err != nil {
			log.Fatalf("sender: add data to stream %d: %v", s.ID, err)
		}
	}

	if err := c.SendPackets(); err != nil {
		log.Fatalf("sender: %v", err)
	}
}
