package rig

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/driver"
	"github.com/san-kum/pivotsim/internal/dynamo"
	"github.com/san-kum/pivotsim/internal/elevator"
	"github.com/san-kum/pivotsim/internal/loop"
	"github.com/san-kum/pivotsim/internal/pivot"
	"github.com/san-kum/pivotsim/internal/telemetry"
	"github.com/san-kum/pivotsim/internal/viz"
)

// HistoryCapacity is how many samples per telemetry key a rig retains.
const HistoryCapacity = 600

// Rig is a simulated robot: the pivot riding on the elevator, a simulated
// motor controller, and the telemetry table and scene they publish into.
type Rig struct {
	Config   *config.Config
	Pivot    *pivot.Pivot
	Elevator *elevator.Subsystem
	Driver   *driver.Sim
	Table    *telemetry.Table
	Scene    *viz.Scene
}

type Options struct {
	Logger *zap.Logger
	// LogTelemetry mirrors every published value into the debug log.
	LogTelemetry bool
}

func Build(cfg *config.Config, opts Options) (*Rig, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Rig{
		Config: cfg,
		Driver: driver.NewSim(),
		Table:  telemetry.NewTable(HistoryCapacity),
		Scene:  viz.NewScene(),
	}
	var pub telemetry.Publisher = r.Table
	if opts.LogTelemetry {
		pub = telemetry.Multi{r.Table, telemetry.NewLogSink(logger)}
	}

	var anchor viz.AnchorSupplier
	if cfg.Elevator.Enabled {
		e, err := elevator.New(cfg, pub, r.Scene, logger)
		if err != nil {
			return nil, errors.Wrap(err, "building elevator")
		}
		r.Elevator = e
		anchor = e.VizLength
	}

	p, err := pivot.New(cfg, pivot.Deps{
		Driver:    r.Driver,
		Telemetry: pub,
		Sink:      r.Scene,
		Anchor:    anchor,
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building pivot")
	}
	r.Pivot = p
	return r, nil
}

// Tick runs one scheduler pass: the elevator first so the pivot drawing
// sees this tick's anchor. A failing elevator does not stop the pivot; both
// errors are returned.
func (r *Rig) Tick(dt float64) error {
	var elevErr error
	if r.Elevator != nil {
		elevErr = r.Elevator.Tick(dt)
	}
	return multierr.Combine(elevErr, r.Pivot.Tick(dt))
}

// Runner wires the rig into a headless loop that records the pivot's
// angle, velocity and command.
func (r *Rig) Runner(logger *zap.Logger) *loop.Runner {
	runner := loop.New(func() (dynamo.State, dynamo.Control) {
		return dynamo.State{r.Pivot.Angle(), r.Pivot.Velocity()}, dynamo.Control{r.Pivot.Command()}
	}, logger)
	if r.Elevator != nil {
		runner.Add("elevator", r.Elevator)
	}
	runner.Add("pivot", r.Pivot)
	return runner
}

// WorldSize is the drawing extent in meters that fits the whole rig.
func (r *Rig) WorldSize() (w, h float64) {
	v := r.Config.Viz
	h = v.RootY + v.LigamentLength
	if r.Config.Elevator.Enabled {
		h += r.Config.Elevator.VizBaseLength + r.Config.Elevator.MaxHeight
	}
	return 2 * v.RootX, h * 1.1
}
