package netio

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// PipeConfig configures a Pipe.
type PipeConfig struct {
	// AutoProcess enables automatic message delivery in a background
	// goroutine. Default: true.
	AutoProcess bool

	// ProcessInterval is how often the auto-processor checks for
	// messages. Default: 1ms.
	ProcessInterval time.Duration
}

// DefaultPipeConfig returns the default pipe configuration.
func DefaultPipeConfig() PipeConfig {
	return PipeConfig{
		AutoProcess:     true,
		ProcessInterval: 1 * time.Millisecond,
	}
}

// Pipe provides bidirectional in-memory packet communication between two
// endpoints, wrapping pion's test.Bridge behind two net.PacketConn views.
// Use it in place of a pair of UDP sockets so stream and connection tests
// are deterministic and don't depend on real network I/O.
//
// By default a Pipe automatically delivers messages in a background
// goroutine. Call SetAutoProcess(false) for manual, tick-by-tick control
// over delivery order, useful for asserting on interleaving.
type Pipe struct {
	bridge *test.Bridge

	mu              sync.Mutex
	closed          bool
	autoProcess     bool
	processInterval time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

// NewPipe creates a bidirectional pipe with auto-processing enabled and
// returns the two net.PacketConn endpoints.
func NewPipe() (net.PacketConn, net.PacketConn, *Pipe) {
	return NewPipeWithConfig(DefaultPipeConfig())
}

// NewPipeWithConfig creates a pipe with the given configuration and
// returns the two net.PacketConn endpoints.
func NewPipeWithConfig(config PipeConfig) (net.PacketConn, net.PacketConn, *Pipe) {
	if config.ProcessInterval == 0 {
		config.ProcessInterval = 1 * time.Millisecond
	}

	p := &Pipe{
		bridge:          test.NewBridge(),
		autoProcess:     config.AutoProcess,
		processInterval: config.ProcessInterval,
		stopCh:          make(chan struct{}),
	}

	if p.autoProcess {
		p.startAutoProcess()
	}

	conn0 := &PipePacketConn{conn: p.bridge.GetConn0(), localID: 0, peerAddr: PipeAddr{ID: 1}}
	conn1 := &PipePacketConn{conn: p.bridge.GetConn1(), localID: 1, peerAddr: PipeAddr{ID: 0}}

	return conn0, conn1, p
}

func (p *Pipe) startAutoProcess() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.processInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()
}

// SetAutoProcess enables or disables automatic message delivery. When
// disabled, Tick or Process must be called manually to move packets.
func (p *Pipe) SetAutoProcess(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.autoProcess == enabled {
		return
	}
	p.autoProcess = enabled

	if enabled {
		p.stopCh = make(chan struct{})
		p.startAutoProcess()
		return
	}
	close(p.stopCh)
	p.wg.Wait()
}

// Tick delivers one queued packet in each direction, if available.
// Returns the number of packets delivered (0, 1, or 2).
func (p *Pipe) Tick() int {
	return p.bridge.Tick()
}

// Process delivers all queued packets, draining the bridge.
func (p *Pipe) Process() int {
	count := 0
	for {
		n := p.Tick()
		if n == 0 {
			return count
		}
		count += n
	}
}

// Close stops auto-processing and closes both endpoints.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.autoProcess {
		close(p.stopCh)
	}
	p.mu.Unlock()

	p.wg.Wait()

	err0 := p.bridge.GetConn0().Close()
	err1 := p.bridge.GetConn1().Close()
	if err0 != nil {
		return err0
	}
	return err1
}

// PipeAddr implements net.Addr for pipe endpoints.
type PipeAddr struct {
	ID int // 0 or 1
}

func (a PipeAddr) Network() string { return "pipe" }
func (a PipeAddr) String() string  { return fmt.Sprintf("pipe:%d", a.ID) }

// PipePacketConn adapts one Pipe endpoint to net.PacketConn, the shape
// Connection expects whether it is talking to a real socket or a pipe.
type PipePacketConn struct {
	conn     net.Conn
	localID  int
	peerAddr net.Addr
}

func (c *PipePacketConn) ReadFrom(b []byte) (n int, addr net.Addr, err error) {
	n, err = c.conn.Read(b)
	return n, c.peerAddr, err
}

func (c *PipePacketConn) WriteTo(b []byte, _ net.Addr) (n int, err error) {
	return c.conn.Write(b)
}

func (c *PipePacketConn) Close() error                       { return c.conn.Close() }
func (c *PipePacketConn) LocalAddr() net.Addr                { return PipeAddr{ID: c.localID} }
func (c *PipePacketConn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *PipePacketConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *PipePacketConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

var _ net.PacketConn = (*PipePacketConn)(nil)
