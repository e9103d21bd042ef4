package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/camera"
)

// commandListener receives command datagrams and queues the decoded
// commands for the control loop. The queue is bounded; commands arriving
// faster than the loop drains them are dropped with a warning.
type commandListener struct {
	conn   net.PacketConn
	logger *slog.Logger
	queue  chan *Command
}

func newCommandListener(addr string, logger *slog.Logger) (*commandListener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for commands on %s: %w", addr, err)
	}

	return &commandListener{
		conn:   conn,
		logger: logger,
		queue:  make(chan *Command, 16),
	}, nil
}

// Commands returns the queue of decoded commands.
func (l *commandListener) Commands() <-chan *Command {
	return l.queue
}

// Run receives datagrams until the context is canceled. Transient read
// errors are logged and skipped; the listener keeps serving.
func (l *commandListener) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Warn("reading command datagram", slog.Any("error", err))
			continue
		}

		cmd, err := DecodeCommand(buf[:n])
		if err != nil {
			l.logger.Warn("discarding malformed command", slog.Any("error", err))
			continue
		}

		select {
		case l.queue <- cmd:
		default:
			l.logger.Warn("command queue full, dropping command", slog.String("action", cmd.Action))
		}
	}
}

// scheduler drives the controller: it ticks Update at the configured rate
// and applies queued commands between ticks, so every controller method
// runs on this one goroutine.
type scheduler struct {
	ctrl     *camera.Controller
	commands *commandListener
	logger   *slog.Logger
	interval time.Duration
}

func newScheduler(ctrl *camera.Controller, commands *commandListener, logger *slog.Logger, rateHz int) *scheduler {
	return &scheduler{
		ctrl:     ctrl,
		commands: commands,
		logger:   logger,
		interval: time.Second / time.Duration(rateHz),
	}
}

// Run loops until the context is canceled.
func (s *scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case cmd := <-s.commands.Commands():
			dispatch(s.ctrl, cmd, s.logger)

		case <-ticker.C:
			s.ctrl.Update()
		}
	}
}
