package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roman-kulish/camera-trigger/internal/camera"
	"github.com/roman-kulish/camera-trigger/internal/gpio"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleDatagramState(t *testing.T) {
	l := &telemetryListener{logger: discardLogger()}

	l.handleDatagram([]byte(`{"lat":-33.86,"lon":151.21,"alt":120.5,"roll":1.5,"hasFix":true}`))

	state := l.Get()
	if state == nil {
		t.Fatal("expected state after datagram, got nil")
	}
	if state.Location.Latitude != -33.86 || state.Location.Longitude != 151.21 {
		t.Errorf("unexpected location %+v", state.Location)
	}
	if !state.HasFix {
		t.Error("expected HasFix to be set")
	}
}

func TestHandleDatagramAutoModeOptional(t *testing.T) {
	l := &telemetryListener{logger: discardLogger()}

	var calls []bool
	l.OnAutoMode(func(enabled bool) { calls = append(calls, enabled) })

	l.handleDatagram([]byte(`{"lat":1,"lon":2,"hasFix":true}`))
	if len(calls) != 0 {
		t.Fatalf("datagram without autoMode must not touch the mode, got %v", calls)
	}

	l.handleDatagram([]byte(`{"lat":1,"lon":2,"hasFix":true,"autoMode":true}`))
	l.handleDatagram([]byte(`{"lat":1,"lon":2,"hasFix":true}`))
	l.handleDatagram([]byte(`{"lat":1,"lon":2,"hasFix":true,"autoMode":false}`))

	want := []bool{true, false}
	if len(calls) != len(want) {
		t.Fatalf("got %d mode updates %v, want %v", len(calls), calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("got mode updates %v, want %v", calls, want)
		}
	}
}

func TestHandleDatagramMalformed(t *testing.T) {
	l := &telemetryListener{logger: discardLogger()}

	l.handleDatagram([]byte(`not json`))
	if l.Get() != nil {
		t.Error("malformed datagram must not store state")
	}
}

// A set_auto_mode command must stay in effect across control ticks: the
// controller's mode is only written by commands and by telemetry datagrams
// that carry the flag, never reset by the tick itself.
func TestSetAutoModeCommandEnablesAutoTrigger(t *testing.T) {
	logger := discardLogger()

	cfg := camera.DefaultConfig()
	cfg.TriggerType = camera.TriggerRelay
	cfg.ShutterPin = 17
	cfg.TriggerDistance = 25
	cfg.AutoModeOnly = true

	vehicle := telemetry.ProviderFunc(func() *telemetry.State {
		return &telemetry.State{
			Location: telemetry.Location{Latitude: -33.86, Longitude: 151.21, Altitude: 100},
			HasFix:   true,
		}
	})

	ctrl, err := camera.New(cfg, gpio.NewMockDriver(), vehicle, camera.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	ctrl.Update()
	if got := ctrl.TriggersFired(); got != 0 {
		t.Fatalf("fired %d shots outside auto mode, want 0", got)
	}

	cmd, err := DecodeCommand([]byte(`{"action":"set_auto_mode","enabled":true}`))
	if err != nil {
		t.Fatal(err)
	}
	dispatch(ctrl, cmd, logger)

	ctrl.Update()
	if got := ctrl.TriggersFired(); got != 1 {
		t.Fatalf("fired %d shots after enabling auto mode, want 1", got)
	}

	ctrl.Update()
	if got := ctrl.TriggersFired(); got != 1 {
		t.Fatalf("fired %d shots without covering the trigger distance, want 1", got)
	}
}
