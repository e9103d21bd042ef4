package camera

import (
	"log/slog"
	"sync/atomic"

	"github.com/roman-kulish/camera-trigger/internal/gpio"
)

// feedbackCapture observes the shutter feedback pin. The edge handler runs
// in interrupt context (the GPIO watch goroutine) and does the minimum
// work: it packs the edge timestamp and pin level into a single atomic
// word. Everything else — debounce, the attitude snapshot, counters and
// logging — happens in the periodic check driven from the control loop,
// where vehicle-state reads are safe.
type feedbackCapture struct {
	cfg    *Config
	pins   gpio.Driver
	logger *slog.Logger

	// Single-producer/single-consumer cell: timestampMicros << 1 | level.
	// Written only by HandleEdge, read only by consume.
	cell atomic.Uint64

	seen         uint64 // last cell value consumed by the control loop
	lastAccepted gpio.Level
	installed    bool
	disabled     bool // pin or edge-detect setup failed; capture is off for the session
}

func newFeedbackCapture(cfg *Config, pins gpio.Driver, logger *slog.Logger) *feedbackCapture {
	return &feedbackCapture{
		cfg:    cfg,
		pins:   pins,
		logger: logger,
	}
}

// Enabled reports whether feedback capture is active: a feedback pin is
// configured and its setup has not failed.
func (f *feedbackCapture) Enabled() bool {
	return f.cfg.UsingFeedbackPin() && !f.disabled
}

// ensureInstalled configures the feedback pin and arms edge detection. It
// runs from the control loop and is idempotent: repeated calls after the
// first are no-ops, including when setup failed. A setup failure disables
// capture for the rest of the session; triggers still fire, only
// confirmed-position logging is lost.
func (f *feedbackCapture) ensureInstalled() {
	if f.installed || !f.cfg.UsingFeedbackPin() {
		return
	}
	f.installed = true

	if err := f.pins.SetupPin(f.cfg.FeedbackPin, gpio.Input); err != nil {
		f.disabled = true
		f.logger.Warn("feedback pin setup failed, capture disabled",
			slog.Int("pin", f.cfg.FeedbackPin), slog.Any("error", err))
		return
	}
	if err := f.pins.DetectEdge(f.cfg.FeedbackPin, gpio.EdgeBoth); err != nil {
		f.disabled = true
		f.logger.Warn("feedback edge detect failed, capture disabled",
			slog.Int("pin", f.cfg.FeedbackPin), slog.Any("error", err))
		return
	}

	f.lastAccepted = !f.activeLevel() // so the first active edge is accepted
}

// HandleEdge records a raw feedback pin transition. It is non-blocking and
// touches only the atomic cell, so it may preempt the control loop at any
// point. Safe to call from a different goroutine than Update.
func (f *feedbackCapture) HandleEdge(level gpio.Level, timestampMicros int64) {
	f.cell.Store(pack(level, timestampMicros))
}

// consume drains the edge cell and applies the debounce policy: a raw edge
// is accepted only when its level differs from the last accepted level, so
// electrical chatter repeating one level collapses into a single edge. It
// returns the edge timestamp and true when an accepted edge matches the
// configured active polarity.
func (f *feedbackCapture) consume() (timestampMicros int64, confirmed bool) {
	if !f.Enabled() {
		return 0, false
	}

	v := f.cell.Load()
	if v == f.seen {
		return 0, false
	}
	f.seen = v

	level, ts := unpack(v)
	if level == f.lastAccepted {
		return 0, false // chatter: same level reported twice
	}
	f.lastAccepted = level

	if level != f.activeLevel() {
		return 0, false // shutter opening edge, not the closing one
	}
	return ts, true
}

// activeLevel is the pin level that marks "shutter closed".
func (f *feedbackCapture) activeLevel() gpio.Level {
	if f.cfg.FeedbackHigh {
		return gpio.High
	}
	return gpio.Low
}

func pack(level gpio.Level, timestampMicros int64) uint64 {
	v := uint64(timestampMicros) << 1
	if level == gpio.High {
		v |= 1
	}
	return v
}

func unpack(v uint64) (gpio.Level, int64) {
	return gpio.Level(v&1 == 1), int64(v >> 1)
}
