package app

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// scriptedConn feeds a fixed sequence of read results to a listener. Only
// ReadFrom and Close are used; the rest of net.PacketConn is inert.
type scriptedConn struct {
	reads []scriptedRead
}

type scriptedRead struct {
	data []byte
	err  error
}

func (c *scriptedConn) ReadFrom(p []byte) (int, net.Addr, error) {
	if len(c.reads) == 0 {
		return 0, nil, net.ErrClosed
	}
	r := c.reads[0]
	c.reads = c.reads[1:]
	if r.err != nil {
		return 0, nil, r.err
	}
	return copy(p, r.data), nil, nil
}

func (c *scriptedConn) WriteTo(p []byte, addr net.Addr) (int, error) { return len(p), nil }
func (c *scriptedConn) Close() error                                 { return nil }
func (c *scriptedConn) LocalAddr() net.Addr                          { return nil }
func (c *scriptedConn) SetDeadline(t time.Time) error                { return nil }
func (c *scriptedConn) SetReadDeadline(t time.Time) error            { return nil }
func (c *scriptedConn) SetWriteDeadline(t time.Time) error           { return nil }

// A transient socket error must not kill the command listener: commands
// arriving after the error are still delivered.
func TestCommandListenerSurvivesReadError(t *testing.T) {
	conn := &scriptedConn{reads: []scriptedRead{
		{err: errors.New("recvfrom: resource temporarily unavailable")},
		{data: []byte(`{"action":"take_picture"}`)},
	}}

	l := &commandListener{
		conn:   conn,
		logger: discardLogger(),
		queue:  make(chan *Command, 16),
	}

	done := make(chan struct{})
	go func() {
		l.Run(context.Background())
		close(done)
	}()

	select {
	case cmd := <-l.Commands():
		if cmd.Action != ActionTakePicture {
			t.Errorf("Action = %q, want %q", cmd.Action, ActionTakePicture)
		}
	case <-time.After(time.Second):
		t.Fatal("no command received after transient read error")
	}

	// The scripted conn reports closed once drained, ending the loop.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop on closed connection")
	}
}
