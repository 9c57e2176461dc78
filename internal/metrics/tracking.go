package metrics

import (
	"math"

	"github.com/san-kum/pivotsim/internal/dynamo"
)

// SteadyStateError is the absolute position error on the last observed
// sample, in the units of x[0].
type SteadyStateError struct {
	target float64
	last   float64
	seen   bool
}

func NewSteadyStateError(target float64) *SteadyStateError {
	return &SteadyStateError{target: target}
}

func (s *SteadyStateError) Name() string { return "steady_state_error" }

func (s *SteadyStateError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.last = math.Abs(s.target - x[0])
	s.seen = true
}

func (s *SteadyStateError) Value() float64 {
	if !s.seen {
		return math.NaN()
	}
	return s.last
}

func (s *SteadyStateError) Reset() { s.seen = false }

// Overshoot is how far the response went past the target, as a fraction of
// the commanded step. A response that never crosses reports 0.
type Overshoot struct {
	start, target float64
	peak          float64
	seen          bool
}

func NewOvershoot(start, target float64) *Overshoot {
	return &Overshoot{start: start, target: target}
}

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(x dynamo.State, u dynamo.Control, t float64) {
	dir := math.Copysign(1, o.target-o.start)
	past := (x[0] - o.target) * dir
	if !o.seen || past > o.peak {
		o.peak = past
	}
	o.seen = true
}

func (o *Overshoot) Value() float64 {
	step := math.Abs(o.target - o.start)
	if !o.seen || step == 0 || o.peak <= 0 {
		return 0
	}
	return o.peak / step
}

func (o *Overshoot) Reset() {
	o.peak = 0
	o.seen = false
}

// SettlingTime is the time after which x[0] stayed within band of the
// target for the rest of the run. NaN if it never settled.
type SettlingTime struct {
	target, band float64
	enteredAt    float64
	inside       bool
}

func NewSettlingTime(target, band float64) *SettlingTime {
	return &SettlingTime{target: target, band: band}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	in := math.Abs(x[0]-s.target) <= s.band
	if in && !s.inside {
		s.enteredAt = t
	}
	s.inside = in
}

func (s *SettlingTime) Value() float64 {
	if !s.inside {
		return math.NaN()
	}
	return s.enteredAt
}

func (s *SettlingTime) Reset() {
	s.inside = false
	s.enteredAt = 0
}
