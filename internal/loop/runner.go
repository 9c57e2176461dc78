package loop

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/pivotsim/internal/dynamo"
)

type namedSubsystem struct {
	name string
	sub  Subsystem
}

// Runner is the scheduler: it ticks every subsystem in registration order at
// a fixed period, for a fixed number of ticks, as fast as it can.
type Runner struct {
	subsystems []namedSubsystem
	probe      Probe
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	schedule   map[int][]func()
	logger     *zap.Logger
}

func New(probe Probe, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		probe:    probe,
		schedule: make(map[int][]func()),
		logger:   logger.Named("loop"),
	}
}

func (r *Runner) Add(name string, s Subsystem)  { r.subsystems = append(r.subsystems, namedSubsystem{name, s}) }
func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// At runs fn before the subsystems on the given tick, for commands such as a
// setpoint change partway through a run.
func (r *Runner) At(tick int, fn func()) {
	r.schedule[tick] = append(r.schedule[tick], fn)
}

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:   make([]dynamo.State, 0, cfg.Ticks+1),
		Controls: make([]dynamo.Control, 0, cfg.Ticks+1),
		Times:    make([]float64, 0, cfg.Ticks+1),
		Metrics:  make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
	}

	r.record(result, 0)

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, fn := range r.schedule[i] {
			fn()
		}

		faulted := false
		for _, s := range r.subsystems {
			if err := s.sub.Tick(cfg.Period); err != nil {
				faulted = true
				result.Faults++
				result.Errors = append(result.Errors, errors.Wrapf(err, "%s tick %d", s.name, i))
				r.logger.Warn("subsystem tick failed", zap.String("subsystem", s.name), zap.Int("tick", i), zap.Error(err))
			}
		}
		result.TicksRun++

		x, u := r.record(result, float64(i+1)*cfg.Period)
		for _, m := range r.metrics {
			m.Observe(x, u, float64(i+1)*cfg.Period)
		}
		for _, obs := range r.observers {
			obs.OnStep(x, u, float64(i+1)*cfg.Period)
		}

		if faulted && cfg.StopOnFault {
			break
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (r *Runner) record(result *Result, t float64) (dynamo.State, dynamo.Control) {
	if r.probe == nil {
		result.Times = append(result.Times, t)
		return nil, nil
	}
	x, u := r.probe()
	result.States = append(result.States, x.Clone())
	result.Controls = append(result.Controls, append(dynamo.Control(nil), u...))
	result.Times = append(result.Times, t)
	return x, u
}

func validateConfig(cfg Config) error {
	if !(cfg.Period > 0) {
		return errors.Errorf("period must be positive, got %f", cfg.Period)
	}
	if cfg.Ticks < 0 {
		return errors.Errorf("ticks must not be negative, got %d", cfg.Ticks)
	}
	return nil
}

// MetricNames returns the result's metric names in a stable order.
func (res *Result) MetricNames() []string {
	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
