package camera

import (
	"strings"
	"testing"
)

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := Config{ShutterPin: 17}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.TriggerType != TriggerServo {
		t.Errorf("trigger type = %q, want %q", cfg.TriggerType, TriggerServo)
	}
	if cfg.CameraType != CameraStandard {
		t.Errorf("camera type = %q, want %q", cfg.CameraType, CameraStandard)
	}
	if cfg.TriggerDuration != DefaultTriggerDuration {
		t.Errorf("trigger duration = %d, want %d", cfg.TriggerDuration, DefaultTriggerDuration)
	}
	if cfg.ServoOnPWM != DefaultServoOnPWM || cfg.ServoOffPWM != DefaultServoOffPWM {
		t.Errorf("servo PWM = %d/%d, want %d/%d",
			cfg.ServoOnPWM, cfg.ServoOffPWM, DefaultServoOnPWM, DefaultServoOffPWM)
	}
}

func TestConfig_ValidateErrors(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.ShutterPin = 17
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing shutter pin", func(c *Config) { c.ShutterPin = 0 }, "shutter pin"},
		{"unknown trigger type", func(c *Config) { c.TriggerType = "laser" }, "trigger type"},
		{"unknown camera type", func(c *Config) { c.CameraType = "polaroid" }, "camera type"},
		{"negative duration", func(c *Config) { c.TriggerDuration = -1 }, "duration"},
		{"negative distance", func(c *Config) { c.TriggerDistance = -5 }, "distance"},
		{"negative interval", func(c *Config) { c.MinInterval = -100 }, "interval"},
		{"negative max roll", func(c *Config) { c.MaxRoll = -10 }, "roll"},
		{"negative servo pwm", func(c *Config) { c.ServoOnPWM = -1 }, "PWM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_UsingFeedbackPin(t *testing.T) {
	cfg := DefaultConfig()
	for _, pin := range []int{-1, 0} {
		cfg.FeedbackPin = pin
		if cfg.UsingFeedbackPin() {
			t.Errorf("UsingFeedbackPin() = true for pin %d", pin)
		}
	}

	cfg.FeedbackPin = 4
	if !cfg.UsingFeedbackPin() {
		t.Error("UsingFeedbackPin() = false for pin 4")
	}
}
