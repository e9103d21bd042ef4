package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/camera"
	"github.com/roman-kulish/camera-trigger/internal/gpio"
	"github.com/roman-kulish/camera-trigger/internal/shotlog"
)

const storageDir = "data"

// Run wires the camera trigger controller to its adapters and drives the
// control loop until the context is canceled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	session, err := store.OpenSession(config.Settings.Vehicle, config.Camera.TriggerType, config.Camera)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	pins, err := createDriver(&config.GPIO)
	if err != nil {
		return fmt.Errorf("failed to create GPIO driver: %w", err)
	}
	defer pins.Close()

	vehicle, err := newTelemetryListener(config.Transport.TelemetryAddr, logger)
	if err != nil {
		return fmt.Errorf("failed to create telemetry listener: %w", err)
	}

	options := []func(*camera.Controller){
		camera.WithLogger(logger),
		camera.WithEventSink(session),
		camera.WithUpdateRate(config.Settings.UpdateRateHz),
	}

	if config.Transport.ReportAddr != "" {
		reporter, err := newUDPReporter(config.Transport.ReportAddr, logger)
		if err != nil {
			return fmt.Errorf("failed to create feedback reporter: %w", err)
		}
		defer reporter.Close()

		options = append(options, camera.WithReporter(reporter))
	}

	ctrl, err := camera.New(config.Camera, pins, vehicle, options...)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	commands, err := newCommandListener(config.Transport.CommandAddr, logger)
	if err != nil {
		return fmt.Errorf("failed to create command listener: %w", err)
	}

	vehicle.OnAutoMode(ctrl.SetIsAutoMode)

	go vehicle.Run(ctx)
	go commands.Run(ctx)
	go watchFeedback(ctx, ctrl, pins)

	logger.Info("camera trigger controller started",
		slog.Int64("session", session.ID()),
		slog.String("trigger", string(config.Camera.TriggerType)),
		slog.Int("rateHz", config.Settings.UpdateRateHz))

	s := newScheduler(ctrl, commands, logger, config.Settings.UpdateRateHz)
	s.Run(ctx)

	logger.Info("camera trigger controller stopped",
		slog.Uint64("fired", uint64(ctrl.TriggersFired())),
		slog.Uint64("logged", uint64(ctrl.TriggersLogged())))

	persistTriggerDistance(ctrl, config, logger)
	return nil
}

// persistTriggerDistance writes the configuration back to disk when a
// set_trigger_distance command changed the distance at runtime, so the new
// value survives a restart.
func persistTriggerDistance(ctrl *camera.Controller, config *Config, logger *slog.Logger) {
	distance := ctrl.TriggerDistance()
	if distance == config.Camera.TriggerDistance {
		return
	}

	config.Camera.TriggerDistance = distance
	if err := SaveConfig(config.path, config); err != nil {
		logger.Error("failed to persist trigger distance", slog.Any("error", err))
		return
	}
	logger.Info("persisted trigger distance", slog.Float64("meters", distance))
}

func createDriver(config *GPIOConfig) (gpio.Driver, error) {
	if config.Mock {
		return gpio.NewMockDriver(), nil
	}

	pins, err := gpio.NewRPiDriver()
	if err != nil {
		return nil, fmt.Errorf("opening GPIO: %w", err)
	}
	return pins, nil
}

func createStorage(config *StorageConfig) (*shotlog.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("camtrig_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return shotlog.New(dbPath), nil
}

// watchFeedback polls the feedback pin edge latch and forwards transitions
// to the controller. Polling runs well above the control rate so the edge
// timestamp stays close to the physical transition.
func watchFeedback(ctx context.Context, ctrl *camera.Controller, pins gpio.Driver) {
	pin := ctrl.FeedbackPin()
	if pin == 0 {
		return
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			detected, err := pins.EdgeDetected(pin)
			if err != nil || !detected {
				continue
			}

			level, err := pins.ReadPin(pin)
			if err != nil {
				continue
			}
			ctrl.HandleFeedbackEdge(level, time.Now().UnixMicro())
		}
	}
}
