package elevator

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/control"
	"github.com/san-kum/pivotsim/internal/integrators"
	"github.com/san-kum/pivotsim/internal/physics"
	"github.com/san-kum/pivotsim/internal/telemetry"
	"github.com/san-kum/pivotsim/internal/units"
	"github.com/san-kum/pivotsim/internal/viz"
)

const (
	KeyHeight   = "Elevator Height"
	KeySetpoint = "Elevator Setpoint"
	KeyEffort   = "Elevator Effort"

	LigamentName = "elevator"
)

// Subsystem is a simulated carriage on a drum. Its only job here is to
// carry the pivot: VizLength is the anchor the pivot drawing hangs from.
type Subsystem struct {
	cfg       config.ElevatorConfig
	viz       config.VizConfig
	sim       *physics.Sim
	pid       *control.PID
	ff        control.ElevatorFeedforward
	telemetry telemetry.Publisher
	sink      viz.Sink
	logger    *zap.Logger

	maxVoltage float64
	setpoint   float64
	command    float64
}

func New(cfg *config.Config, pub telemetry.Publisher, sink viz.Sink, logger *zap.Logger) (*Subsystem, error) {
	e := cfg.Elevator
	motor, ok := physics.MotorByName(e.Motor, e.NumMotors)
	if !ok {
		return nil, errors.Errorf("elevator: unknown motor %q", e.Motor)
	}
	integ, err := integrators.ByName(cfg.Plant.Integrator)
	if err != nil {
		return nil, errors.Wrap(err, "elevator")
	}
	if !(e.MaxHeight > 0) || !(e.DrumRadius > 0) || !(e.CarriageMassKg > 0) || !(e.Gearing > 0) {
		return nil, errors.Wrap(config.ErrInvalidConfig, "elevator: physical constants must be positive")
	}
	if e.StartingHeight < 0 || e.StartingHeight > e.MaxHeight {
		return nil, errors.Wrapf(config.ErrInvalidConfig, "elevator: starting height %v outside [0, %v]", e.StartingHeight, e.MaxHeight)
	}

	plant := physics.NewElevator(motor, e.Gearing, e.CarriageMassKg, e.DrumRadius, e.SimulateGravity)
	pid := control.NewPID(e.Feedback.KP, e.Feedback.KI, e.Feedback.KD, cfg.Period)
	pid.MinIntegral = e.Feedback.IntegratorMin
	pid.MaxIntegral = e.Feedback.IntegratorMax
	if e.Feedback.IZone > 0 {
		pid.IZone = e.Feedback.IZone
	}

	if pub == nil {
		pub = telemetry.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subsystem{
		cfg: e,
		viz: cfg.Viz,
		sim: physics.NewSim(plant, integ, physics.SimConfig{
			MinPosition:      0,
			MaxPosition:      e.MaxHeight,
			StartingPosition: e.StartingHeight,
			MaxVoltage:       cfg.MaxVoltage,
		}),
		pid:        pid,
		ff:         control.ElevatorFeedforward{KS: e.Feedforward.KS, KG: e.Feedforward.KG, KV: e.Feedforward.KV, KA: e.Feedforward.KA},
		telemetry:  pub,
		sink:       sink,
		logger:     logger.Named("elevator"),
		maxVoltage: cfg.MaxVoltage,
		setpoint:   e.StartingHeight,
	}, nil
}

// SetHeight targets a carriage height in meters, clamped to the travel.
func (s *Subsystem) SetHeight(meters float64) {
	clamped := units.Clamp(meters, 0, s.cfg.MaxHeight)
	if clamped != meters {
		s.logger.Debug("height clamped", zap.Float64("requested", meters), zap.Float64("height", clamped))
	}
	s.setpoint = clamped
}

func (s *Subsystem) Tick(dt float64) error {
	s.sim.SetInput(s.command)
	if err := s.sim.Advance(dt); err != nil {
		return errors.Wrap(err, "elevator")
	}

	u := s.ff.Calculate(0, 0) + s.pid.Calculate(s.sim.Position(), s.setpoint)
	s.command = units.Clamp(u, -s.maxVoltage, s.maxVoltage)

	if s.sink != nil {
		s.sink.Render(viz.Ligament{
			Name:      LigamentName,
			Root:      viz.Point{X: s.viz.RootX, Y: s.viz.RootY},
			Length:    s.VizLength(),
			Angle:     90,
			LineWidth: s.viz.LineWidth,
			Color:     "#00AAFF",
		})
	}
	s.telemetry.PutNumber(KeyHeight, s.sim.Position())
	s.telemetry.PutNumber(KeySetpoint, s.setpoint)
	s.telemetry.PutNumber(KeyEffort, s.command)
	return nil
}

func (s *Subsystem) Height() float64   { return s.sim.Position() }
func (s *Subsystem) Setpoint() float64 { return s.setpoint }
func (s *Subsystem) Command() float64  { return s.command }

// VizLength is the drawn length of the carriage mast; the pivot root sits
// on its tip.
func (s *Subsystem) VizLength() float64 {
	return s.cfg.VizBaseLength + s.sim.Position()
}
