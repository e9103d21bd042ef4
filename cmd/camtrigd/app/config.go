package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/camera-trigger/internal/camera"
)

const defaultUpdateRate = 50

// Config represents the main application configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Camera    camera.Config   `yaml:"camera"`
	GPIO      GPIOConfig      `yaml:"gpio"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`

	path string // file the configuration was loaded from
}

// Settings represents global application settings
type Settings struct {
	LogLevel     string `yaml:"logLevel"`
	Vehicle      string `yaml:"vehicle"`
	UpdateRateHz int    `yaml:"updateRateHz"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GPIOConfig selects the GPIO driver. Mock replaces the Raspberry Pi
// driver with an in-memory one, for running off-target.
type GPIOConfig struct {
	Mock bool `yaml:"mock"`
}

// TransportConfig represents the UDP adapter endpoints. Command and
// telemetry are listen addresses; report is the destination for outbound
// feedback reports and may be empty to disable reporting.
type TransportConfig struct {
	CommandAddr   string `yaml:"commandAddr"`
	TelemetryAddr string `yaml:"telemetryAddr"`
	ReportAddr    string `yaml:"reportAddr"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var config Config
	config.Camera = camera.DefaultConfig()
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	config.path = path
	return &config, nil
}

// SaveConfig writes the configuration back to disk, preserving camera
// tunables changed at runtime across restarts.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Camera.Validate(); err != nil {
		return fmt.Errorf("camera configuration: %w", err)
	}

	if c.Settings.UpdateRateHz == 0 {
		c.Settings.UpdateRateHz = defaultUpdateRate
	}
	if c.Settings.UpdateRateHz < 0 {
		return fmt.Errorf("update rate must be positive, got %d", c.Settings.UpdateRateHz)
	}

	if c.Transport.CommandAddr == "" {
		c.Transport.CommandAddr = ":14560"
	}
	if c.Transport.TelemetryAddr == "" {
		c.Transport.TelemetryAddr = ":14561"
	}

	return nil
}
