package camera

import (
	"math"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/geo"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// distanceTrigger decides whether an automatic shot is due based on ground
// distance traveled since the last shot. It holds no state of its own; the
// last-shot bookkeeping lives on the controller so manual and automatic
// shots share it.
type distanceTrigger struct {
	cfg *Config
}

// shouldFire evaluates the automatic trigger conditions for the current
// tick. All comparisons are satisfied at equality, and a fix with no prior
// shot counts as having traveled far enough so a mission always gets its
// first photo.
func (d *distanceTrigger) shouldFire(now time.Time, state *telemetry.State, inAutoMode bool, last *shotState) bool {
	if d.cfg.TriggerDistance <= 0 {
		return false
	}
	if !state.HasFix {
		return false
	}
	if d.cfg.AutoModeOnly && !inAutoMode {
		return false
	}
	if d.cfg.MaxRoll > 0 && math.Abs(state.Attitude.Roll) > d.cfg.MaxRoll {
		return false
	}
	if !last.intervalElapsed(now, d.cfg.MinIntervalDuration()) {
		return false
	}

	if !last.have {
		return true
	}
	return geo.HorizontalDistance(last.location, state.Location) >= d.cfg.TriggerDistance
}

// shotState is the last-shot bookkeeping shared by manual and automatic
// triggering. It is updated exactly once per accepted fire.
type shotState struct {
	have     bool
	time     time.Time
	location telemetry.Location
}

func (s *shotState) record(now time.Time, loc telemetry.Location) {
	s.have = true
	s.time = now
	s.location = loc
}

// intervalElapsed reports whether the minimum inter-shot interval has
// passed since the last shot. With no prior shot, or a zero interval, it is
// always satisfied.
func (s *shotState) intervalElapsed(now time.Time, min time.Duration) bool {
	if !s.have || min <= 0 {
		return true
	}
	return now.Sub(s.time) >= min
}
