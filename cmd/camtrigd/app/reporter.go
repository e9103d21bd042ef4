package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/roman-kulish/camera-trigger/internal/camera"
)

// feedbackReport is the wire format of one outbound feedback report.
type feedbackReport struct {
	TimestampMicros int64   `json:"timestampUs"`
	Latitude        float64 `json:"lat"`
	Longitude       float64 `json:"lon"`
	Altitude        float64 `json:"alt"`
	Roll            float64 `json:"roll"`
	Pitch           float64 `json:"pitch"`
	Yaw             float64 `json:"yaw"`
	ImageIndex      uint16  `json:"imageIndex"`
	Sequence        uint32  `json:"sequence"`
}

// udpReporter delivers confirmed-shot reports as JSON datagrams. Send
// failures are logged and dropped; the durable record in the event log is
// the source of truth.
type udpReporter struct {
	conn   net.Conn
	logger *slog.Logger
}

func newUDPReporter(addr string, logger *slog.Logger) (*udpReporter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing report endpoint %s: %w", addr, err)
	}
	return &udpReporter{conn: conn, logger: logger}, nil
}

// SendCameraFeedback reports one confirmed shot.
func (r *udpReporter) SendCameraFeedback(rec camera.FeedbackRecord) {
	report := feedbackReport{
		TimestampMicros: rec.TimestampMicros,
		Latitude:        rec.Location.Latitude,
		Longitude:       rec.Location.Longitude,
		Altitude:        rec.Location.Altitude,
		Roll:            rec.Attitude.Roll,
		Pitch:           rec.Attitude.Pitch,
		Yaw:             rec.Attitude.Yaw,
		ImageIndex:      rec.ImageIndex,
		Sequence:        rec.Sequence,
	}

	data, err := json.Marshal(report)
	if err != nil {
		r.logger.Error("marshaling feedback report", slog.Any("error", err))
		return
	}
	if _, err = r.conn.Write(data); err != nil {
		r.logger.Error("sending feedback report", slog.Any("error", err))
	}
}

func (r *udpReporter) Close() error { return r.conn.Close() }
