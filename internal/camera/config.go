package camera

import (
	"fmt"
	"time"
)

// Defaults follow common servo trigger hardware: a one second hold and
// 1300/1100 µs shutter pulse widths.
const (
	DefaultTriggerDuration = 10 // tenths of a second
	DefaultServoOnPWM      = 1300
	DefaultServoOffPWM     = 1100
)

// Config holds the camera trigger tunables. All fields are externally
// persisted; the controller only reads and validates them. A FeedbackPin
// of zero or below means no feedback hardware is present.
type Config struct {
	TriggerType     TriggerType `yaml:"triggerType"`     // servo, relay, gopro or mount
	TriggerDuration int         `yaml:"triggerDuration"` // hold time in tenths of a second
	ShutterPin      int         `yaml:"shutterPin"`      // output pin driving the trigger mechanism
	FunctionPin     int         `yaml:"functionPin"`     // alternate camera function output, 0 = none
	ServoOnPWM      int         `yaml:"servoOnPwm"`      // µs pulse when shutter is activated
	ServoOffPWM     int         `yaml:"servoOffPwm"`     // µs pulse when shutter is released
	RelayOnHigh     bool        `yaml:"relayOnHigh"`     // relay asserted level

	FeedbackPin  int  `yaml:"feedbackPin"`  // shutter feedback input, <= 0 = not fitted
	FeedbackHigh bool `yaml:"feedbackHigh"` // level that marks "shutter closed"

	TriggerDistance float64 `yaml:"triggerDistance"` // meters between automatic shots, 0 = off
	MinInterval     int     `yaml:"minInterval"`     // minimum ms between shots, 0 = none
	MaxRoll         float64 `yaml:"maxRoll"`         // max |roll| in degrees for automatic shots, 0 = no limit
	AutoModeOnly    bool    `yaml:"autoModeOnly"`    // restrict automatic shots to autonomous navigation

	CameraType CameraType `yaml:"cameraType"` // std or bmmcc
}

// DefaultConfig returns a servo trigger configuration with no feedback pin
// and the distance trigger disabled.
func DefaultConfig() Config {
	return Config{
		TriggerType:     TriggerServo,
		TriggerDuration: DefaultTriggerDuration,
		ServoOnPWM:      DefaultServoOnPWM,
		ServoOffPWM:     DefaultServoOffPWM,
		CameraType:      CameraStandard,
	}
}

// Validate checks the configuration, filling defaulted fields in place.
func (c *Config) Validate() error {
	switch c.TriggerType {
	case "":
		c.TriggerType = TriggerServo
	case TriggerServo, TriggerRelay, TriggerGoPro, TriggerMount:
	default:
		return fmt.Errorf("unknown trigger type %q", c.TriggerType)
	}

	switch c.CameraType {
	case "":
		c.CameraType = CameraStandard
	case CameraStandard, CameraBMMCC:
	default:
		return fmt.Errorf("unknown camera type %q", c.CameraType)
	}

	if c.TriggerDuration < 0 {
		return fmt.Errorf("trigger duration must not be negative, got %d", c.TriggerDuration)
	}
	if c.TriggerDuration == 0 {
		c.TriggerDuration = DefaultTriggerDuration
	}

	if c.ShutterPin <= 0 {
		return fmt.Errorf("shutter pin is required, got %d", c.ShutterPin)
	}

	if c.ServoOnPWM == 0 {
		c.ServoOnPWM = DefaultServoOnPWM
	}
	if c.ServoOffPWM == 0 {
		c.ServoOffPWM = DefaultServoOffPWM
	}
	if c.ServoOnPWM < 0 || c.ServoOffPWM < 0 {
		return fmt.Errorf("servo PWM values must not be negative, got on=%d off=%d", c.ServoOnPWM, c.ServoOffPWM)
	}

	if c.TriggerDistance < 0 {
		return fmt.Errorf("trigger distance must not be negative, got %.2f", c.TriggerDistance)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("minimum interval must not be negative, got %d", c.MinInterval)
	}
	if c.MaxRoll < 0 {
		return fmt.Errorf("max roll must not be negative, got %.2f", c.MaxRoll)
	}

	return nil
}

// UsingFeedbackPin reports whether feedback hardware is configured.
func (c *Config) UsingFeedbackPin() bool {
	return c.FeedbackPin > 0
}

// MinIntervalDuration returns the minimum inter-shot interval.
func (c *Config) MinIntervalDuration() time.Duration {
	return time.Duration(c.MinInterval) * time.Millisecond
}
