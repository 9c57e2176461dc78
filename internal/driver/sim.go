package driver

import (
	"github.com/pkg/errors"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/control"
	"github.com/san-kum/pivotsim/internal/units"
)

var (
	ErrDisconnected  = errors.New("driver: device disconnected")
	ErrNotConfigured = errors.New("driver: not configured")
)

type Mode int

const (
	ModeVoltage Mode = iota
	ModeProfiled
)

func (m Mode) String() string {
	if m == ModeProfiled {
		return "profiled"
	}
	return "voltage"
}

// Sim stands in for a motor controller when no hardware is attached. It
// tracks the rotor through SimulationPeriodic and, in profiled mode, runs
// its own trapezoid and slot-0 loop in rotor rotations.
type Sim struct {
	cfg        config.DriverConfig
	configured bool
	connected  bool

	mode    Mode
	command float64
	applied float64

	traj     *control.Trapezoid
	goalRad  float64
	integral float64

	rotorPos float64
	rotorVel float64
}

func NewSim() *Sim {
	return &Sim{connected: true}
}

func (s *Sim) Configure(cfg config.DriverConfig) error {
	if !s.connected {
		return ErrDisconnected
	}
	if !(cfg.PeakVoltage > 0) || !(cfg.Gearing > 0) {
		return errors.Errorf("driver: peak voltage and gearing must be positive, got %v and %v", cfg.PeakVoltage, cfg.Gearing)
	}
	if !(cfg.MotionMagic.CruiseVelocity > 0) || !(cfg.MotionMagic.Acceleration > 0) {
		return errors.New("driver: motion magic cruise velocity and acceleration must be positive")
	}
	s.cfg = cfg
	s.traj = control.NewTrapezoid(control.Constraints{
		MaxVelocity:     cfg.MotionMagic.CruiseVelocity,
		MaxAcceleration: cfg.MotionMagic.Acceleration,
		MaxJerk:         cfg.MotionMagic.Jerk,
	})
	s.configured = true
	return nil
}

func (s *Sim) ready() error {
	if !s.connected {
		return ErrDisconnected
	}
	if !s.configured {
		return ErrNotConfigured
	}
	return nil
}

func (s *Sim) SetVoltage(v float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.mode = ModeVoltage
	s.command = units.Clamp(v, -s.cfg.PeakVoltage, s.cfg.PeakVoltage)
	s.applied = s.command
	return nil
}

// SetProfiledPosition targets a mechanism angle in radians. Re-issuing the
// same target keeps the running profile; a mode change restarts it from the
// rotor's current motion.
func (s *Sim) SetProfiledPosition(targetRad float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.mode != ModeProfiled {
		s.traj.Reset(control.ProfileState{Position: s.rotorPos, Velocity: s.rotorVel})
		s.integral = 0
		s.mode = ModeProfiled
	}
	s.goalRad = targetRad
	s.traj.SetGoal(s.toRotor(targetRad))
	return nil
}

func (s *Sim) MeasuredVoltage() (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.applied, nil
}

// SimulationPeriodic feeds the simulated mechanism state back to the device.
func (s *Sim) SimulationPeriodic(positionRad, velocityRadPerSec, dt float64) {
	if !s.configured {
		return
	}
	s.rotorPos = s.toRotor(positionRad)
	s.rotorVel = s.toRotor(velocityRadPerSec)
	if s.mode != ModeProfiled || !s.connected {
		return
	}

	ref := s.traj.Next(dt)
	g := s.cfg.Slot0
	posErr := ref.Position - s.rotorPos
	s.integral += posErr * dt

	out := g.KS*units.Signum(ref.Velocity) + g.KV*ref.Velocity + g.KA*ref.Acceleration +
		g.KP*posErr + g.KI*s.integral + g.KD*(ref.Velocity-s.rotorVel)
	s.applied = units.Clamp(out, -s.cfg.PeakVoltage, s.cfg.PeakVoltage)
}

func (s *Sim) toRotor(rad float64) float64 {
	return units.RadiansToRotations(rad) * s.cfg.Gearing
}

// SetConnected simulates a cable pull or a reconnect.
func (s *Sim) SetConnected(connected bool) { s.connected = connected }

func (s *Sim) Connected() bool { return s.connected }
func (s *Sim) Mode() Mode      { return s.mode }

// Goal is the last profiled target in mechanism radians.
func (s *Sim) Goal() float64 { return s.goalRad }

// Reference is the profile's current setpoint in rotor rotations.
func (s *Sim) Reference() control.ProfileState {
	if s.traj == nil {
		return control.ProfileState{}
	}
	return s.traj.State()
}

func (s *Sim) RotorPosition() float64 { return s.rotorPos }
