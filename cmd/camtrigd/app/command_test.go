package app

import (
	"testing"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, cmd *Command)
	}{
		{
			name:    "take picture",
			payload: `{"action":"take_picture"}`,
			check: func(t *testing.T, cmd *Command) {
				if cmd.Action != ActionTakePicture {
					t.Errorf("Action = %q, want %q", cmd.Action, ActionTakePicture)
				}
			},
		},
		{
			name:    "record video start",
			payload: `{"action":"record_video","start":true}`,
			check: func(t *testing.T, cmd *Command) {
				if !cmd.Start {
					t.Error("Start = false, want true")
				}
			},
		},
		{
			name:    "zoom out",
			payload: `{"action":"set_zoom","step":-1}`,
			check: func(t *testing.T, cmd *Command) {
				if cmd.Step != -1 {
					t.Errorf("Step = %d, want -1", cmd.Step)
				}
			},
		},
		{
			name:    "trigger distance",
			payload: `{"action":"set_trigger_distance","meters":12.5}`,
			check: func(t *testing.T, cmd *Command) {
				if cmd.Meters != 12.5 {
					t.Errorf("Meters = %v, want 12.5", cmd.Meters)
				}
			},
		},
		{
			name:    "configure",
			payload: `{"action":"configure","settings":{"shutterSpeed":0.002,"iso":200}}`,
			check: func(t *testing.T, cmd *Command) {
				if cmd.Settings.ShutterSpeed != 0.002 {
					t.Errorf("ShutterSpeed = %v, want 0.002", cmd.Settings.ShutterSpeed)
				}
				if cmd.Settings.ISO != 200 {
					t.Errorf("ISO = %v, want 200", cmd.Settings.ISO)
				}
			},
		},
		{
			name:    "control with shooting command",
			payload: `{"action":"control","control":{"shootingCmd":1}}`,
			check: func(t *testing.T, cmd *Command) {
				if cmd.Control.ShootingCmd != 1 {
					t.Errorf("ShootingCmd = %v, want 1", cmd.Control.ShootingCmd)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodeCommand() error = %v", err)
			}
			tt.check(t, cmd)
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed JSON", `{"action":`},
		{"missing action", `{"step":1}`},
		{"empty payload", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCommand([]byte(tt.payload)); err == nil {
				t.Error("DecodeCommand() error = nil, want error")
			}
		})
	}
}
