package gpio

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// Servo refresh parameters: a 20 ms cycle divided into 1 µs slots, so the
// duty length passed to the PWM peripheral is the pulse width in µs.
const (
	servoCycleMicros = 20000
	servoClockHz     = 50 * servoCycleMicros
)

// RPiDriver is the real implementation for Raspberry Pi using go-rpio.
// It requires access to /dev/gpiomem or running as root. The mutex guards
// the pin registry: the feedback watcher polls its pin from its own
// goroutine while the control loop sets up and drives the outputs.
type RPiDriver struct {
	mu   sync.Mutex
	pins map[int]rpio.Pin
}

// NewRPiDriver memory-maps the GPIO registers and returns a driver.
func NewRPiDriver() (*RPiDriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("opening GPIO: %w (are you running on a Raspberry Pi?)", err)
	}

	return &RPiDriver{
		pins: make(map[int]rpio.Pin),
	}, nil
}

func (r *RPiDriver) SetupPin(pin int, mode PinMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setupPin(pin, mode)
}

func (r *RPiDriver) setupPin(pin int, mode PinMode) error {
	p := rpio.Pin(pin)
	r.pins[pin] = p

	switch mode {
	case Input:
		p.Input()
	case Output:
		p.Output()
	case PWM:
		p.Mode(rpio.Pwm)
		p.Freq(servoClockHz)
	default:
		return fmt.Errorf("unknown pin mode: %d", mode)
	}

	return nil
}

func (r *RPiDriver) WritePin(pin int, level Level) error {
	p, err := r.pin(pin, Output)
	if err != nil {
		return err
	}

	if level == High {
		p.High()
	} else {
		p.Low()
	}

	return nil
}

func (r *RPiDriver) ReadPin(pin int) (Level, error) {
	p, err := r.pin(pin, Input)
	if err != nil {
		return Low, err
	}

	if p.Read() == rpio.High {
		return High, nil
	}
	return Low, nil
}

func (r *RPiDriver) WritePWM(pin int, pulseMicros int) error {
	if pulseMicros < 0 || pulseMicros > servoCycleMicros {
		return fmt.Errorf("pulse width %dus out of range [0, %d]", pulseMicros, servoCycleMicros)
	}

	p, err := r.pin(pin, PWM)
	if err != nil {
		return err
	}

	p.DutyCycle(uint32(pulseMicros), servoCycleMicros)
	return nil
}

func (r *RPiDriver) DetectEdge(pin int, edge Edge) error {
	p, err := r.pin(pin, Input)
	if err != nil {
		return err
	}

	switch edge {
	case EdgeNone:
		p.Detect(rpio.NoEdge)
	case EdgeRise:
		p.Detect(rpio.RiseEdge)
	case EdgeFall:
		p.Detect(rpio.FallEdge)
	case EdgeBoth:
		p.Detect(rpio.AnyEdge)
	default:
		return fmt.Errorf("unknown edge: %d", edge)
	}

	return nil
}

func (r *RPiDriver) EdgeDetected(pin int) (bool, error) {
	p, err := r.pin(pin, Input)
	if err != nil {
		return false, err
	}

	return p.EdgeDetected(), nil
}

func (r *RPiDriver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Reset all pins to input (safe state)
	for _, p := range r.pins {
		p.Detect(rpio.NoEdge)
		p.Input()
	}

	return rpio.Close()
}

// pin returns the rpio pin, setting it up with the given mode on first use.
func (r *RPiDriver) pin(pin int, mode PinMode) (rpio.Pin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pins[pin]
	if !ok {
		if err := r.setupPin(pin, mode); err != nil {
			return 0, err
		}
		p = r.pins[pin]
	}
	return p, nil
}
