package gpio

import (
	"fmt"
	"sync"
)

// MockDriver is an in-memory Driver implementation for development on a PC
// and for tests. It records every pin write and lets tests simulate input
// levels and latched edges.
type MockDriver struct {
	mu sync.Mutex

	modes  map[int]PinMode
	levels map[int]Level
	pwm    map[int]int
	edges  map[int]Edge
	latch  map[int]bool

	// SetupErr, when set, is returned from SetupPin and DetectEdge to
	// simulate hardware setup failures.
	SetupErr error
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		modes:  make(map[int]PinMode),
		levels: make(map[int]Level),
		pwm:    make(map[int]int),
		edges:  make(map[int]Edge),
		latch:  make(map[int]bool),
	}
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	if m.SetupErr != nil {
		return m.SetupErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[pin] = mode
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[pin] = level
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[pin], nil
}

func (m *MockDriver) WritePWM(pin int, pulseMicros int) error {
	if pulseMicros < 0 {
		return fmt.Errorf("negative pulse width %d", pulseMicros)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pwm[pin] = pulseMicros
	return nil
}

func (m *MockDriver) DetectEdge(pin int, edge Edge) error {
	if m.SetupErr != nil {
		return m.SetupErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[pin] = edge
	return nil
}

func (m *MockDriver) EdgeDetected(pin int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latched := m.latch[pin]
	m.latch[pin] = false
	return latched, nil
}

func (m *MockDriver) Close() error { return nil }

// SetLevel simulates an external device driving an input pin, latching an
// edge when the level changes and edge detection is armed for it.
func (m *MockDriver) SetLevel(pin int, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.levels[pin]
	m.levels[pin] = level
	if prev == level {
		return
	}

	switch m.edges[pin] {
	case EdgeBoth:
		m.latch[pin] = true
	case EdgeRise:
		if level == High {
			m.latch[pin] = true
		}
	case EdgeFall:
		if level == Low {
			m.latch[pin] = true
		}
	}
}

// PinLevel reports the last written or simulated level of a pin.
func (m *MockDriver) PinLevel(pin int) Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels[pin]
}

// PWMPulse reports the last pulse width in µs written to a PWM pin.
func (m *MockDriver) PWMPulse(pin int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pwm[pin]
}

// PinMode reports the configured mode of a pin.
func (m *MockDriver) PinMode(pin int) PinMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modes[pin]
}
