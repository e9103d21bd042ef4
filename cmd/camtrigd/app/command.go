package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roman-kulish/camera-trigger/internal/camera"
)

// Command actions accepted over the command endpoint.
const (
	ActionTakePicture        = "take_picture"
	ActionRecordVideo        = "record_video"
	ActionSetZoom            = "set_zoom"
	ActionSetFocus           = "set_focus"
	ActionAutoFocus          = "auto_focus"
	ActionConfigure          = "configure"
	ActionControl            = "control"
	ActionSetTriggerDistance = "set_trigger_distance"
	ActionSetAutoMode        = "set_auto_mode"
	ActionModeToggle         = "mode_toggle"
)

// Command is one inbound camera command. Fields beyond Action are read
// depending on the action; unknown fields are ignored.
type Command struct {
	Action   string                `json:"action"`
	Start    bool                  `json:"start"`
	Step     int                   `json:"step"`
	Meters   float64               `json:"meters"`
	Enabled  bool                  `json:"enabled"`
	Settings camera.CameraSettings `json:"settings"`
	Control  camera.CameraControl  `json:"control"`
}

// DecodeCommand parses a single JSON command payload.
func DecodeCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("decoding command: %w", err)
	}
	if cmd.Action == "" {
		return nil, fmt.Errorf("command has no action")
	}
	return &cmd, nil
}

// dispatch applies a command to the controller. It runs on the control
// loop goroutine, between ticks.
func dispatch(ctrl *camera.Controller, cmd *Command, logger *slog.Logger) {
	switch cmd.Action {
	case ActionTakePicture:
		ctrl.TakePicture()

	case ActionRecordVideo:
		if !ctrl.RecordVideo(cmd.Start) {
			logger.Warn("record video request not handled", slog.Bool("start", cmd.Start))
		}

	case ActionSetZoom:
		if !ctrl.SetZoomStep(cmd.Step) {
			logger.Warn("zoom request not handled", slog.Int("step", cmd.Step))
		}

	case ActionSetFocus:
		if !ctrl.SetManualFocusStep(cmd.Step) {
			logger.Warn("focus request not handled", slog.Int("step", cmd.Step))
		}

	case ActionAutoFocus:
		if !ctrl.SetAutoFocus() {
			logger.Warn("auto focus request not handled")
		}

	case ActionConfigure:
		ctrl.Configure(cmd.Settings)

	case ActionControl:
		ctrl.Control(cmd.Control)

	case ActionSetTriggerDistance:
		ctrl.SetTriggerDistance(cmd.Meters)

	case ActionSetAutoMode:
		ctrl.SetIsAutoMode(cmd.Enabled)

	case ActionModeToggle:
		if !ctrl.ModeToggle() {
			logger.Warn("mode toggle request not handled")
		}

	default:
		logger.Warn("unknown command action", slog.String("action", cmd.Action))
	}
}
