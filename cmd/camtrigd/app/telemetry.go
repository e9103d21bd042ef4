package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// vehicleState is the wire format of one inbound vehicle-state datagram.
// The autoMode flag is optional: a datagram that omits it leaves the
// controller's auto-mode state untouched, so navigation-layer commands are
// not overwritten by telemetry that does not know the mode.
type vehicleState struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"alt"`
	Roll      float64 `json:"roll"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	HasFix    bool    `json:"hasFix"`
	AutoMode  *bool   `json:"autoMode"`
}

// telemetryListener receives vehicle-state datagrams and keeps the latest
// decoded state. It implements the controller's telemetry provider: Get
// returns the most recent state, or nil before the first datagram arrives.
type telemetryListener struct {
	conn   net.PacketConn
	logger *slog.Logger

	state      atomic.Pointer[telemetry.State]
	onAutoMode func(bool)
}

func newTelemetryListener(addr string, logger *slog.Logger) (*telemetryListener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening for telemetry on %s: %w", addr, err)
	}
	return &telemetryListener{conn: conn, logger: logger}, nil
}

// Get returns the last received vehicle state.
func (l *telemetryListener) Get() *telemetry.State {
	return l.state.Load()
}

// OnAutoMode registers the sink for the auto-mode flag. It must be set
// before Run starts; the sink must be safe to call from the listener
// goroutine.
func (l *telemetryListener) OnAutoMode(fn func(bool)) {
	l.onAutoMode = fn
}

// Run receives datagrams until the context is canceled. Malformed and
// transiently failing reads are logged and skipped.
func (l *telemetryListener) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	buf := make([]byte, 1500)
	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			l.logger.Warn("reading telemetry datagram", slog.Any("error", err))
			continue
		}

		l.handleDatagram(buf[:n])
	}
}

func (l *telemetryListener) handleDatagram(data []byte) {
	var ws vehicleState
	if err := json.Unmarshal(data, &ws); err != nil {
		l.logger.Warn("discarding malformed telemetry datagram", slog.Any("error", err))
		return
	}

	l.state.Store(&telemetry.State{
		Timestamp: time.Now().UTC(),
		Location: telemetry.Location{
			Latitude:  ws.Latitude,
			Longitude: ws.Longitude,
			Altitude:  ws.Altitude,
		},
		Attitude: telemetry.Attitude{
			Roll:  ws.Roll,
			Pitch: ws.Pitch,
			Yaw:   ws.Yaw,
		},
		HasFix: ws.HasFix,
	})

	if ws.AutoMode != nil && l.onAutoMode != nil {
		l.onAutoMode(*ws.AutoMode)
	}
}
