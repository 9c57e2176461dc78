package pivot

import (
	"fmt"
	"math"

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
	KeyMotorOutput = "Pivot Motor Output"
	KeyAngle       = "Pivot Angle"
	KeyVelocity    = "Pivot Velocity"
	KeySetpoint    = "Pivot Setpoint"
	KeyEffort      = "Pivot Effort"
	KeyFeedforward = "Pivot Feedforward"
	KeyFeedback    = "Pivot Feedback"
	KeyMode        = "Pivot Mode"
	KeyStaleData   = "Pivot Stale Data"
	KeyTickFaults  = "Pivot Tick Faults"
)

// LigamentName is the name the pivot draws under.
const LigamentName = "pivot"

var (
	ErrTickFault   = errors.New("pivot: tick fault")
	ErrDriverStale = errors.New("pivot: driver data stale")
)

// Driver is the motor controller the pivot commands. Positions are
// mechanism radians.
type Driver interface {
	Configure(cfg config.DriverConfig) error
	SetVoltage(v float64) error
	SetProfiledPosition(p float64) error
	MeasuredVoltage() (float64, error)
}

// SimCollector is implemented by drivers that want the simulated mechanism
// state each tick.
type SimCollector interface {
	SimulationPeriodic(positionRad, velocityRadPerSec, dt float64)
}

type Mode int

const (
	LocalClosedLoop Mode = iota
	DriverProfiled
)

func (m Mode) String() string {
	switch m {
	case LocalClosedLoop:
		return "local"
	case DriverProfiled:
		return "profiled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type Deps struct {
	Driver    Driver
	Telemetry telemetry.Publisher
	Sink      viz.Sink
	Anchor    viz.AnchorSupplier
	Logger    *zap.Logger
}

// Pivot owns one rotating joint: its controller, its simulated plant and its
// drawing. Everything happens inside Tick; there are no goroutines and no
// locks, so callers must not use a Pivot from more than one goroutine.
type Pivot struct {
	cfg       config.Config
	driver    Driver
	collector SimCollector
	telemetry telemetry.Publisher
	anchor    viz.AnchorSupplier
	logger    *zap.Logger

	actuator *control.Actuator
	sim      *physics.Sim
	mech     *viz.Mechanism

	mode          Mode
	setpointDeg   float64
	profileTarget float64

	command  float64
	measured float64
	stale    bool
	failing  bool
	faults   int
	ticks    uint64
}

type checkpoint struct {
	sim      physics.SimCheckpoint
	actuator control.ActuatorCheckpoint
	command  float64
	measured float64
	stale    bool
}

// New validates cfg, builds the plant and controller, and configures the
// driver. Nothing is half built on error.
func New(cfg *config.Config, deps Deps) (*Pivot, error) {
	if cfg == nil {
		return nil, errors.New("pivot: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "pivot: invalid config")
	}
	if deps.Driver == nil {
		return nil, errors.New("pivot: driver is required")
	}

	motor, ok := physics.MotorByName(cfg.Plant.Motor, cfg.Plant.NumMotors)
	if !ok {
		return nil, errors.Errorf("pivot: unknown motor %q", cfg.Plant.Motor)
	}
	integ, err := integrators.ByName(cfg.Plant.Integrator)
	if err != nil {
		return nil, errors.Wrap(err, "pivot")
	}

	arm := physics.NewSingleJointedArm(motor, cfg.Plant.Gearing, cfg.Plant.MOI(), cfg.Plant.ArmLengthMeters, cfg.Plant.SimulateGravity)
	sim := physics.NewSim(arm, integ, physics.SimConfig{
		MinPosition:      cfg.Plant.MinAngle,
		MaxPosition:      cfg.Plant.MaxAngle,
		StartingPosition: cfg.Plant.StartingAngle,
		MaxVoltage:       cfg.MaxVoltage,
	})

	pid := control.NewPID(cfg.Feedback.KP, cfg.Feedback.KI, cfg.Feedback.KD, cfg.Period)
	pid.MinIntegral = cfg.Feedback.IntegratorMin
	pid.MaxIntegral = cfg.Feedback.IntegratorMax
	if cfg.Feedback.IZone > 0 {
		pid.IZone = cfg.Feedback.IZone
	}
	ff := control.ArmFeedforward{
		KS: cfg.Feedforward.KS,
		KG: cfg.Feedforward.KG,
		KV: cfg.Feedforward.KV,
		KA: cfg.Feedforward.KA,
	}

	if err := deps.Driver.Configure(cfg.Driver); err != nil {
		return nil, errors.Wrap(err, "pivot: configuring driver")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pub := deps.Telemetry
	if pub == nil {
		pub = telemetry.Discard{}
	}
	collector, _ := deps.Driver.(SimCollector)

	p := &Pivot{
		cfg:       *cfg,
		driver:    deps.Driver,
		collector: collector,
		telemetry: pub,
		anchor:    deps.Anchor,
		logger:    logger.Named("pivot"),
		actuator:  control.NewActuator(ff, pid, cfg.MaxVoltage),
		sim:       sim,
		mech:      viz.NewMechanism(LigamentName, cfg.Viz, deps.Sink),
	}
	p.logger.Info("pivot ready",
		zap.String("config", cfg.Name),
		zap.String("motor", cfg.Plant.Motor),
		zap.Float64("gearing", cfg.Plant.Gearing),
		zap.Float64("moi", cfg.Plant.MOI()),
		zap.String("integrator", cfg.Plant.Integrator),
	)
	return p, nil
}

// SetAngle switches to local closed loop control toward deg. Controller
// state carries over.
func (p *Pivot) SetAngle(deg float64) {
	if p.mode != LocalClosedLoop {
		p.logger.Debug("mode change", zap.Stringer("from", p.mode), zap.Stringer("to", LocalClosedLoop))
	}
	p.mode = LocalClosedLoop
	p.setpointDeg = deg
}

// RequestProfiledMove hands targetRad to the driver's onboard profile. The
// local controller is idle until the next SetAngle.
func (p *Pivot) RequestProfiledMove(targetRad float64) {
	if p.mode != DriverProfiled {
		p.logger.Debug("mode change", zap.Stringer("from", p.mode), zap.Stringer("to", DriverProfiled))
	}
	p.mode = DriverProfiled
	p.profileTarget = targetRad
}

// Tick runs one control period: publish the measured output, advance the
// simulation with the previous command, compute and issue the next command,
// then redraw. A panic or a non-finite command rolls the pivot back to its
// state before the call and returns an error wrapping ErrTickFault.
//
// The anchor is read before the driver sees this tick, so a failing anchor
// supplier leaves the driver untouched. Driver side effects are not rolled
// back: a panic in telemetry after the write leaves the driver holding this
// tick's state.
//
// In DriverProfiled mode the plant is driven by the driver's measured output.
// While that reading is stale the plant gets 0 V, the neutral output of a
// disconnected controller; the held reading is still published.
func (p *Pivot) Tick(dt float64) (err error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return errors.Wrapf(ErrTickFault, "invalid period %v", dt)
	}

	cp := p.checkpoint()
	defer func() {
		if r := recover(); r != nil {
			err = p.fault(cp, errors.Errorf("panic: %v", r))
		}
	}()

	p.readMeasured()
	p.telemetry.PutNumber(KeyMotorOutput, p.measured)

	input := p.command
	if p.mode == DriverProfiled {
		input = p.profiledOutput()
	}
	p.sim.SetInput(input)
	if err := p.sim.Advance(dt); err != nil {
		return p.fault(cp, err)
	}
	offset := viz.Offset(p.anchor)

	if p.collector != nil {
		p.collector.SimulationPeriodic(p.sim.Position(), p.sim.Velocity(), dt)
	}

	switch p.mode {
	case LocalClosedLoop:
		effort := p.actuator.ComputeEffort(p.sim.Position(), p.setpointDeg)
		if !units.IsFinite(effort) {
			return p.fault(cp, errors.Errorf("non-finite effort %v", effort))
		}
		p.command = effort
		p.write(p.driver.SetVoltage(effort))
	case DriverProfiled:
		p.command = p.profiledOutput()
		p.write(p.driver.SetProfiledPosition(p.profileTarget))
	}

	p.mech.Place(p.sim.Position(), offset)
	p.publish()
	p.ticks++
	return nil
}

func (p *Pivot) checkpoint() checkpoint {
	return checkpoint{
		sim:      p.sim.Checkpoint(),
		actuator: p.actuator.Checkpoint(),
		command:  p.command,
		measured: p.measured,
		stale:    p.stale,
	}
}

func (p *Pivot) fault(cp checkpoint, cause error) error {
	p.sim.Restore(cp.sim)
	p.actuator.Restore(cp.actuator)
	p.command = cp.command
	p.measured = cp.measured
	p.stale = cp.stale
	p.faults++

	p.logger.Error("tick fault, rolled back",
		zap.Uint64("tick", p.ticks),
		zap.Int("faults", p.faults),
		zap.Error(cause),
	)
	p.telemetry.PutNumber(KeyTickFaults, float64(p.faults))
	return errors.Wrapf(ErrTickFault, "tick %d: %v", p.ticks, cause)
}

// readMeasured keeps the last good value when the driver cannot be read.
func (p *Pivot) readMeasured() {
	v, err := p.driver.MeasuredVoltage()
	if err != nil {
		if !p.stale {
			p.logger.Warn("driver read failed, holding last measurement",
				zap.Float64("last", p.measured),
				zap.Error(errors.Wrap(ErrDriverStale, err.Error())),
			)
		}
		p.stale = true
		return
	}
	if p.stale {
		p.logger.Info("driver read recovered")
	}
	p.stale = false
	p.measured = v
}

// profiledOutput is what the driver is applying while it runs its own
// profile.
func (p *Pivot) profiledOutput() float64 {
	if p.stale {
		return 0
	}
	return p.measured
}

func (p *Pivot) write(err error) {
	if err != nil {
		if !p.failing {
			p.logger.Warn("driver command failed", zap.Stringer("mode", p.mode), zap.Error(err))
		}
		p.failing = true
		return
	}
	p.failing = false
}

func (p *Pivot) publish() {
	setpoint := p.setpointDeg
	if p.mode == DriverProfiled {
		setpoint = units.RadiansToDegrees(p.profileTarget)
	}
	stale := 0.0
	if p.stale {
		stale = 1
	}
	p.telemetry.PutNumber(KeyAngle, units.RadiansToDegrees(p.sim.Position()))
	p.telemetry.PutNumber(KeyVelocity, units.RadiansToDegrees(p.sim.Velocity()))
	p.telemetry.PutNumber(KeySetpoint, setpoint)
	p.telemetry.PutNumber(KeyEffort, p.command)
	p.telemetry.PutNumber(KeyFeedforward, p.actuator.LastFeedforward())
	p.telemetry.PutNumber(KeyFeedback, p.actuator.LastFeedback())
	p.telemetry.PutNumber(KeyMode, float64(p.mode))
	p.telemetry.PutNumber(KeyStaleData, stale)
	p.telemetry.PutNumber(KeyTickFaults, float64(p.faults))
}
