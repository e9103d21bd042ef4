package camera

import (
	"log/slog"
	"math"

	"github.com/roman-kulish/camera-trigger/internal/gpio"
)

// actuator drives the physical trigger mechanism and the alternate camera
// function output. Both outputs are held active for a tick-counted duration
// so the control loop is never stalled by a sleep: Fire opens the output
// and arms a countdown, Update advances it once per control tick and
// releases the output when it expires.
type actuator struct {
	cfg    *Config
	pins   gpio.Driver
	rateHz int
	logger *slog.Logger

	shutterOpen  bool
	shutterTicks int

	functionOpen  bool
	functionTicks int
}

func newActuator(cfg *Config, pins gpio.Driver, rateHz int, logger *slog.Logger) *actuator {
	a := actuator{
		cfg:    cfg,
		pins:   pins,
		rateHz: rateHz,
		logger: logger,
	}

	// Park both outputs in their released state.
	a.setupOutput(cfg.ShutterPin)
	a.releaseShutter()
	if cfg.FunctionPin > 0 {
		a.setupOutput(cfg.FunctionPin)
		a.releaseFunction()
	}

	return &a
}

// holdTicks converts the configured hold duration (tenths of a second)
// into control ticks at the update rate.
func (a *actuator) holdTicks() int {
	return int(math.Round(float64(a.cfg.TriggerDuration) * float64(a.rateHz) / 10))
}

// Open reports whether a shutter pulse is currently in progress.
func (a *actuator) Open() bool {
	return a.shutterOpen
}

// Fire opens the shutter output and arms the hold countdown. It reports
// whether the request was accepted: while a pulse is already open a second
// request neither extends nor restarts it.
func (a *actuator) Fire() bool {
	if a.shutterOpen {
		return false
	}

	a.driveShutter()
	a.shutterOpen = true
	a.shutterTicks = a.holdTicks()
	return true
}

// FireFunction pulses the alternate camera function output. Its countdown
// is independent from the shutter so the two pulses may overlap.
func (a *actuator) FireFunction() bool {
	if a.cfg.FunctionPin <= 0 || a.functionOpen {
		return false
	}

	a.writeLevel(a.cfg.FunctionPin, a.relayOnLevel())
	a.functionOpen = true
	a.functionTicks = a.holdTicks()
	return true
}

// Update advances both hold countdowns by one control tick, releasing each
// output when its countdown expires.
func (a *actuator) Update() {
	if a.shutterOpen {
		if a.shutterTicks > 0 {
			a.shutterTicks--
		}
		if a.shutterTicks == 0 {
			a.releaseShutter()
			a.shutterOpen = false
		}
	}

	if a.functionOpen {
		if a.functionTicks > 0 {
			a.functionTicks--
		}
		if a.functionTicks == 0 {
			a.releaseFunction()
			a.functionOpen = false
		}
	}
}

func (a *actuator) setupOutput(pin int) {
	mode := gpio.Output
	if a.cfg.TriggerType == TriggerServo && pin == a.cfg.ShutterPin {
		mode = gpio.PWM
	}
	if err := a.pins.SetupPin(pin, mode); err != nil {
		a.logger.Warn("trigger output setup failed", slog.Int("pin", pin), slog.Any("error", err))
	}
}

func (a *actuator) driveShutter() {
	switch a.cfg.TriggerType {
	case TriggerServo:
		a.writePWM(a.cfg.ShutterPin, a.cfg.ServoOnPWM)
	default:
		a.writeLevel(a.cfg.ShutterPin, a.relayOnLevel())
	}
}

func (a *actuator) releaseShutter() {
	switch a.cfg.TriggerType {
	case TriggerServo:
		a.writePWM(a.cfg.ShutterPin, a.cfg.ServoOffPWM)
	default:
		a.writeLevel(a.cfg.ShutterPin, !a.relayOnLevel())
	}
}

func (a *actuator) releaseFunction() {
	a.writeLevel(a.cfg.FunctionPin, !a.relayOnLevel())
}

func (a *actuator) relayOnLevel() gpio.Level {
	if a.cfg.RelayOnHigh {
		return gpio.High
	}
	return gpio.Low
}

func (a *actuator) writeLevel(pin int, level gpio.Level) {
	if err := a.pins.WritePin(pin, level); err != nil {
		a.logger.Warn("trigger output write failed", slog.Int("pin", pin), slog.Any("error", err))
	}
}

func (a *actuator) writePWM(pin, pulse int) {
	if err := a.pins.WritePWM(pin, pulse); err != nil {
		a.logger.Warn("trigger servo write failed", slog.Int("pin", pin), slog.Any("error", err))
	}
}
