// Package camera implements the shutter trigger controller for the flight
// control loop: manual and distance-based triggering, the timed hold of the
// servo/relay output, and position capture on the hardware shutter feedback
// edge for accurate geotagging.
package camera

import (
	"time"

	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// TriggerType selects the physical trigger mechanism.
type TriggerType string

const (
	TriggerServo TriggerType = "servo"
	TriggerRelay TriggerType = "relay"
	TriggerGoPro TriggerType = "gopro"
	TriggerMount TriggerType = "mount"
)

// CameraType selects the camera in use. BMMCC cameras expose a mode-toggle
// line on the alternate function output.
type CameraType string

const (
	CameraStandard CameraType = "std"
	CameraBMMCC    CameraType = "bmmcc"
)

// FeedbackRecord captures the vehicle state at the instant the shutter
// closed, as reported by the hardware feedback pin. Sequence counts
// confirmed shots only and increases by one per record with no gaps.
type FeedbackRecord struct {
	TimestampMicros int64 // feedback edge time, µs since the Unix epoch
	Location        telemetry.Location
	Attitude        telemetry.Attitude
	ImageIndex      uint16 // pictures taken since boot
	Sequence        uint32 // confirmed-shot sequence number
}

// CameraSettings carries camera-specific tuning values. The controller does
// not interpret them; they are forwarded to the camera backend and recorded
// in the event log.
type CameraSettings struct {
	Session          float64 `json:"session"`
	ShutterSpeed     float64 `json:"shutterSpeed"`
	Aperture         float64 `json:"aperture"`
	ISO              float64 `json:"iso"`
	ExposureType     float64 `json:"exposureType"`
	CmdID            float64 `json:"cmdId"`
	EngineCutoffTime float64 `json:"engineCutoffTime"`
}

// CameraControl carries a camera control request. ShootingCmd == 1 also
// requests a picture.
type CameraControl struct {
	Session     float64 `json:"session"`
	ZoomPos     float64 `json:"zoomPos"`
	ZoomStep    float64 `json:"zoomStep"`
	FocusLock   float64 `json:"focusLock"`
	ShootingCmd float64 `json:"shootingCmd"`
	CmdID       float64 `json:"cmdId"`
}

// Reporter delivers feedback reports to the outbound telemetry transport.
type Reporter interface {
	SendCameraFeedback(rec FeedbackRecord)
}

// EventSink is the durable event log. WriteTrigger is called for every
// fired pulse whether or not feedback ever confirms it, WriteCamera once
// per confirmed shot, and WriteCameraInfo on configuration changes.
type EventSink interface {
	WriteCamera(rec FeedbackRecord) error
	WriteTrigger(t time.Time, loc telemetry.Location) error
	WriteCameraInfo(t time.Time, settings CameraSettings) error
}

// Backend is the camera-specific transport for operations beyond the
// shutter line: zoom, focus and opaque configuration values. All methods
// report whether the backend handled the request.
type Backend interface {
	Configure(settings CameraSettings) bool
	Control(ctl CameraControl) bool
	SetZoomStep(step int) bool
	SetManualFocusStep(step int) bool
	SetAutoFocus() bool
	RecordVideo(start bool) bool
}
