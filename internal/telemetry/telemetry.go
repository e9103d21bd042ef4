package telemetry

import (
	"time"
)

// Provider supplies the most recent vehicle state. The camera controller
// reads it once per control tick and again when a shutter feedback edge is
// confirmed, so implementations must make Get safe to call from the control
// loop goroutine.
type Provider interface {
	Get() *State
}

// Location is a geodetic position fix.
type Location struct {
	Latitude  float64 // degrees, positive north
	Longitude float64 // degrees, positive east
	Altitude  float64 // meters above mean sea level
}

// Attitude is the vehicle orientation in degrees.
type Attitude struct {
	Roll  float64 // positive right wing down
	Pitch float64 // positive nose up
	Yaw   float64 // heading, 0..360
}

// State is a snapshot of the vehicle state from the flight sensors.
type State struct {
	Timestamp time.Time // when the snapshot was taken
	Location  Location
	Attitude  Attitude
	HasFix    bool // whether Location carries a valid position fix
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func() *State

func (f ProviderFunc) Get() *State { return f() }
