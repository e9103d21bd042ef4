package gpio

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates how a GPIO pin is driven.
type PinMode int

const (
	Input PinMode = iota
	Output
	PWM
)

// Edge selects which pin transitions are latched by edge detection.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeRise
	EdgeFall
	EdgeBoth
)

// Driver is the abstract interface for controlling GPIOs. It allows
// plugging in the real Raspberry Pi implementation or a mock for
// development and tests on a PC.
//
// WritePWM drives a servo-style pulse: the pin emits a pulse of the given
// width in microseconds on every 20 ms refresh cycle.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	WritePWM(pin int, pulseMicros int) error
	DetectEdge(pin int, edge Edge) error
	EdgeDetected(pin int) (bool, error)
	Close() error
}
