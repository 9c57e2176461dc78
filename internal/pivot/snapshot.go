package pivot

import (
	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/viz"
)

// Snapshot is a copy of the pivot's observable state after the last tick.
type Snapshot struct {
	Tick          uint64
	Time          float64
	AngleRad      float64
	VelocityRad   float64
	SetpointDeg   float64
	ProfileTarget float64
	Command       float64
	Measured      float64
	Feedforward   float64
	Feedback      float64
	Integral      float64
	Mode          Mode
	Stale         bool
	Faults        int
	Ligament      viz.Ligament
}

func (p *Pivot) Snapshot() Snapshot {
	return Snapshot{
		Tick:          p.ticks,
		Time:          p.sim.Time(),
		AngleRad:      p.sim.Position(),
		VelocityRad:   p.sim.Velocity(),
		SetpointDeg:   p.setpointDeg,
		ProfileTarget: p.profileTarget,
		Command:       p.command,
		Measured:      p.measured,
		Feedforward:   p.actuator.LastFeedforward(),
		Feedback:      p.actuator.LastFeedback(),
		Integral:      p.actuator.PID().TotalError(),
		Mode:          p.mode,
		Stale:         p.stale,
		Faults:        p.faults,
		Ligament:      p.mech.Last(),
	}
}

func (p *Pivot) Mode() Mode             { return p.mode }
func (p *Pivot) Setpoint() float64      { return p.setpointDeg }
func (p *Pivot) Angle() float64         { return p.sim.Position() }
func (p *Pivot) Velocity() float64      { return p.sim.Velocity() }
func (p *Pivot) Command() float64       { return p.command }
func (p *Pivot) Stale() bool            { return p.stale }
func (p *Pivot) Faults() int            { return p.faults }
func (p *Pivot) Ticks() uint64          { return p.ticks }
func (p *Pivot) Config() config.Config  { return p.cfg }
func (p *Pivot) Ligament() viz.Ligament { return p.mech.Last() }
