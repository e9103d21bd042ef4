package camera

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/gpio"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// DefaultUpdateRate is the reference control loop rate in Hz.
const DefaultUpdateRate = 50

// WithLogger sets the logger for the controller.
func WithLogger(logger *slog.Logger) func(*Controller) {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithReporter sets the outbound transport for feedback reports.
func WithReporter(r Reporter) func(*Controller) {
	return func(c *Controller) {
		c.reporter = r
	}
}

// WithEventSink sets the durable event log.
func WithEventSink(sink EventSink) func(*Controller) {
	return func(c *Controller) {
		c.sink = sink
	}
}

// WithBackend sets the camera transport for zoom, focus and configuration
// pass-through.
func WithBackend(b Backend) func(*Controller) {
	return func(c *Controller) {
		c.backend = b
	}
}

// WithUpdateRate sets the control loop rate in Hz the caller will invoke
// Update at. The hold countdowns are scaled to this rate.
func WithUpdateRate(rateHz int) func(*Controller) {
	return func(c *Controller) {
		c.rateHz = rateHz
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) func(*Controller) {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns the camera trigger state machine. One instance is built
// by the composition root and shared by reference; there is no package
// singleton.
//
// Update and the command methods must be called from the control loop
// goroutine. Only SetIsAutoMode and HandleFeedbackEdge are safe to call
// concurrently with it.
type Controller struct {
	cfg    Config
	rateHz int
	logger *slog.Logger
	now    func() time.Time

	vehicle  telemetry.Provider
	reporter Reporter
	sink     EventSink
	backend  Backend

	actuator *actuator
	feedback *feedbackCapture
	distance distanceTrigger

	last       shotState
	pending    bool   // shot requested but pulse not yet started
	imageIndex uint16 // pictures taken since boot
	fired      uint32 // trigger pulses started
	logged     uint32 // trigger pulses confirmed by feedback

	inAutoMode atomic.Bool
	recording  bool
}

// New builds a Controller. The configuration is validated and the trigger
// outputs are parked in their released state.
func New(cfg Config, pins gpio.Driver, vehicle telemetry.Provider, options ...func(*Controller)) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	if pins == nil {
		return nil, fmt.Errorf("gpio driver is required")
	}
	if vehicle == nil {
		return nil, fmt.Errorf("telemetry provider is required")
	}

	c := Controller{
		cfg:     cfg,
		rateHz:  DefaultUpdateRate,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		now:     time.Now,
		vehicle: vehicle,
	}

	for _, option := range options {
		option(&c)
	}

	if c.rateHz <= 0 {
		return nil, fmt.Errorf("update rate must be positive, got %d", c.rateHz)
	}

	c.actuator = newActuator(&c.cfg, pins, c.rateHz, c.logger)
	c.feedback = newFeedbackCapture(&c.cfg, pins, c.logger)
	c.distance = distanceTrigger{cfg: &c.cfg}

	return &c, nil
}

// Update advances the controller by one control tick. It must be called
// periodically at the configured rate (reference: 50 Hz). At most one shot
// fires per tick, a pending manual request taking priority over the
// distance trigger.
func (c *Controller) Update() {
	c.feedback.ensureInstalled()

	state := c.state()
	now := c.now()

	firedThisTick := false
	if c.pending && c.last.intervalElapsed(now, c.cfg.MinIntervalDuration()) {
		if c.fire(now, state) {
			c.pending = false
			firedThisTick = true
		}
	}

	if !firedThisTick && c.distance.shouldFire(now, state, c.inAutoMode.Load(), &c.last) {
		c.fire(now, state)
	}

	c.actuator.Update()

	if ts, ok := c.feedback.consume(); ok {
		c.confirm(ts, state)
	}
}

// TakePicture requests a single shot. When the minimum inter-shot interval
// has not yet elapsed the request is held pending and retried every tick
// until it fires.
func (c *Controller) TakePicture() {
	now := c.now()
	if !c.last.intervalElapsed(now, c.cfg.MinIntervalDuration()) {
		c.pending = true
		return
	}
	if !c.fire(now, c.state()) {
		// Pulse already open: redundant request, accepted without effect.
		c.logger.Debug("take picture ignored, pulse already open")
	}
}

// state returns the current vehicle state. Before telemetry has delivered
// anything it substitutes an empty no-fix state, so shots remain possible
// (manual, ungeotagged) and the distance trigger stays quiet.
func (c *Controller) state() *telemetry.State {
	if state := c.vehicle.Get(); state != nil {
		return state
	}
	return &telemetry.State{}
}

// fire starts a shutter pulse. It reports whether the request was accepted;
// a pulse already open rejects it with no side effects. On accept the shot
// bookkeeping is updated and a trigger event is written to the log, and
// without feedback hardware the shot is immediately treated as confirmed.
func (c *Controller) fire(now time.Time, state *telemetry.State) bool {
	if !c.actuator.Fire() {
		return false
	}

	c.fired++
	c.imageIndex++
	c.last.record(now, state.Location)

	if c.sink != nil {
		if err := c.sink.WriteTrigger(now, state.Location); err != nil {
			c.logger.Error("writing trigger event", slog.Any("error", err))
		}
	}

	c.logger.Info("shutter fired",
		slog.Int("imageIndex", int(c.imageIndex)),
		slog.Float64("lat", state.Location.Latitude),
		slog.Float64("lon", state.Location.Longitude))

	if !c.cfg.UsingFeedbackPin() {
		// No feedback hardware: deem the shot confirmed at fire time.
		c.confirm(now.UnixMicro(), state)
	}

	return true
}

// confirm completes a shot: it increments the logged counter, snapshots
// the vehicle state into a feedback record and hands it to the reporter
// and the event log. Confirmations without an outstanding fired trigger
// are dropped so logged never exceeds fired.
func (c *Controller) confirm(timestampMicros int64, state *telemetry.State) {
	if c.logged >= c.fired {
		c.logger.Debug("feedback edge with no outstanding trigger, ignored")
		return
	}
	c.logged++

	rec := FeedbackRecord{
		TimestampMicros: timestampMicros,
		Location:        state.Location,
		Attitude:        state.Attitude,
		ImageIndex:      c.imageIndex,
		Sequence:        c.logged,
	}

	if c.reporter != nil {
		c.reporter.SendCameraFeedback(rec)
	}
	if c.sink != nil {
		if err := c.sink.WriteCamera(rec); err != nil {
			c.logger.Error("writing camera event", slog.Any("error", err))
		}
	}
}

// RecordVideo starts or stops video recording. On a BMMCC camera the
// request is delivered through the mode-toggle line; otherwise it is
// forwarded to the backend. It reports whether the request was handled.
func (c *Controller) RecordVideo(start bool) bool {
	c.recording = start

	if c.backend != nil && c.backend.RecordVideo(start) {
		return true
	}
	if c.cfg.CameraType == CameraBMMCC {
		return c.actuator.FireFunction()
	}
	return false
}

// Recording reports whether video recording has been requested.
func (c *Controller) Recording() bool { return c.recording }

// ModeToggle momentarily pulses the alternate camera function output to
// switch camera modes.
func (c *Controller) ModeToggle() bool {
	return c.actuator.FireFunction()
}

// SetZoomStep requests a zoom step: negative out, zero hold, positive in.
func (c *Controller) SetZoomStep(step int) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetZoomStep(step)
}

// SetManualFocusStep requests a manual focus step: negative in, zero hold,
// positive out.
func (c *Controller) SetManualFocusStep(step int) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetManualFocusStep(step)
}

// SetAutoFocus requests a single-shot auto focus.
func (c *Controller) SetAutoFocus() bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetAutoFocus()
}

// Configure forwards camera-specific tuning values to the backend without
// interpreting them, and records the change in the event log.
func (c *Controller) Configure(settings CameraSettings) {
	if c.backend != nil {
		c.backend.Configure(settings)
	}
	if c.sink != nil {
		if err := c.sink.WriteCameraInfo(c.now(), settings); err != nil {
			c.logger.Error("writing camera info event", slog.Any("error", err))
		}
	}
}

// Control forwards a camera control request to the backend. A shooting
// command of 1 also requests a picture.
func (c *Controller) Control(ctl CameraControl) {
	if c.backend != nil {
		c.backend.Control(ctl)
	}
	if ctl.ShootingCmd == 1 {
		c.TakePicture()
	}
}

// SetTriggerDistance sets the distance between automatic shots in meters.
// Zero disables the distance trigger. Typically set by a mission item.
func (c *Controller) SetTriggerDistance(meters float64) {
	if meters < 0 {
		return
	}
	c.cfg.TriggerDistance = meters
}

// TriggerDistance returns the current distance between automatic shots in
// meters. Must be called from the control loop goroutine.
func (c *Controller) TriggerDistance() float64 {
	return c.cfg.TriggerDistance
}

// SetIsAutoMode tells the controller whether the vehicle is currently in
// an autonomous navigation mode. One-way input from the navigation layer;
// safe to call from any goroutine.
func (c *Controller) SetIsAutoMode(enabled bool) {
	c.inAutoMode.Store(enabled)
}

// HandleFeedbackEdge records a raw transition of the shutter feedback pin.
// It is non-blocking and safe to call from the GPIO watch goroutine.
func (c *Controller) HandleFeedbackEdge(level gpio.Level, timestampMicros int64) {
	c.feedback.HandleEdge(level, timestampMicros)
}

// FeedbackEnabled reports whether feedback capture is active.
func (c *Controller) FeedbackEnabled() bool { return c.feedback.Enabled() }

// FeedbackPin returns the configured feedback pin, or 0 when not fitted.
func (c *Controller) FeedbackPin() int {
	if !c.cfg.UsingFeedbackPin() {
		return 0
	}
	return c.cfg.FeedbackPin
}

// TriggersFired returns the count of started trigger pulses.
func (c *Controller) TriggersFired() uint32 { return c.fired }

// TriggersLogged returns the count of confirmed shots. The difference to
// TriggersFired is the number of blind triggers awaiting confirmation.
func (c *Controller) TriggersLogged() uint32 { return c.logged }

// ImageIndex returns the number of pictures taken since boot.
func (c *Controller) ImageIndex() uint16 { return c.imageIndex }
