package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roman-kulish/camera-trigger/internal/camera"
)

const testConfig = `
settings:
  logLevel: debug
  vehicle: quad-1
  updateRateHz: 50
camera:
  triggerType: relay
  shutterPin: 17
  relayOnHigh: true
  triggerDistance: 25
  minInterval: 1000
gpio:
  mock: true
transport:
  commandAddr: ":15560"
storage:
  dataDirectory: data
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Settings.Vehicle != "quad-1" {
		t.Errorf("Vehicle = %q, want %q", config.Settings.Vehicle, "quad-1")
	}
	if config.Settings.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want %v", config.Settings.Level(), slog.LevelDebug)
	}
	if config.Camera.TriggerType != camera.TriggerRelay {
		t.Errorf("TriggerType = %q, want %q", config.Camera.TriggerType, camera.TriggerRelay)
	}
	if config.Camera.ShutterPin != 17 {
		t.Errorf("ShutterPin = %d, want 17", config.Camera.ShutterPin)
	}
	if config.Camera.TriggerDistance != 25 {
		t.Errorf("TriggerDistance = %v, want 25", config.Camera.TriggerDistance)
	}
	if !config.GPIO.Mock {
		t.Error("GPIO.Mock = false, want true")
	}
	if config.Transport.CommandAddr != ":15560" {
		t.Errorf("CommandAddr = %q, want %q", config.Transport.CommandAddr, ":15560")
	}
	if config.path == "" {
		t.Error("path not recorded by LoadConfig")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "camera:\n  shutterPin: 17\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Settings.UpdateRateHz != defaultUpdateRate {
		t.Errorf("UpdateRateHz = %d, want %d", config.Settings.UpdateRateHz, defaultUpdateRate)
	}
	if config.Settings.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want %v", config.Settings.Level(), slog.LevelInfo)
	}
	if config.Camera.TriggerType != camera.TriggerServo {
		t.Errorf("TriggerType = %q, want %q", config.Camera.TriggerType, camera.TriggerServo)
	}
	if config.Transport.TelemetryAddr == "" {
		t.Error("TelemetryAddr not defaulted")
	}
}

func TestLoadConfigInvalidCamera(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "camera:\n  triggerType: laser\n  shutterPin: 17\n"))
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want camera validation error")
	}
	if !strings.Contains(err.Error(), "trigger type") {
		t.Errorf("error %q does not mention the trigger type", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Simulate a mission changing the trigger distance at runtime.
	config.Camera.TriggerDistance = 42.5

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err = SaveConfig(path, config); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if reloaded.Camera.TriggerDistance != 42.5 {
		t.Errorf("TriggerDistance = %v, want 42.5", reloaded.Camera.TriggerDistance)
	}
	if reloaded.Settings.Vehicle != config.Settings.Vehicle {
		t.Errorf("Vehicle = %q, want %q", reloaded.Settings.Vehicle, config.Settings.Vehicle)
	}
}
