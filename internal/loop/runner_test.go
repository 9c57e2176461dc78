package loop

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/driver"
	"github.com/san-kum/pivotsim/internal/dynamo"
	"github.com/san-kum/pivotsim/internal/metrics"
	"github.com/san-kum/pivotsim/internal/pivot"
	"github.com/san-kum/pivotsim/internal/units"
)

type counter struct {
	ticks  int
	failAt map[int]bool
	order  *[]string
	name   string
}

func (c *counter) Tick(dt float64) error {
	if c.order != nil {
		*c.order = append(*c.order, c.name)
	}
	c.ticks++
	if c.failAt[c.ticks] {
		return errors.New("boom")
	}
	return nil
}

type stepRecorder struct{ times []float64 }

func (s *stepRecorder) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	s.times = append(s.times, t)
}

func TestRunnerTicksInOrder(t *testing.T) {
	var order []string
	a := &counter{name: "a", order: &order}
	b := &counter{name: "b", order: &order}

	r := New(func() (dynamo.State, dynamo.Control) {
		return dynamo.State{float64(a.ticks), 0}, dynamo.Control{1}
	}, nil)
	r.Add("a", a)
	r.Add("b", b)
	obs := &stepRecorder{}
	r.AddObserver(obs)

	res, err := r.Run(context.Background(), Config{Period: 0.02, Ticks: 3})
	if err != nil {
		t.Fatal(err)
	}

	if len(order) != 6 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected tick order %v", order)
	}
	if res.TicksRun != 3 || len(res.States) != 4 || len(res.Times) != 4 {
		t.Errorf("expected 3 ticks and 4 samples, got %d/%d/%d", res.TicksRun, len(res.States), len(res.Times))
	}
	if res.States[3][0] != 3 {
		t.Errorf("expected probe after the third tick, got %v", res.States[3])
	}
	if len(obs.times) != 3 || math.Abs(obs.times[2]-0.06) > 1e-12 {
		t.Errorf("unexpected observer times %v", obs.times)
	}
}

func TestRunnerSchedule(t *testing.T) {
	c := &counter{}
	fired := -1
	r := New(nil, nil)
	r.Add("c", c)
	r.At(2, func() { fired = c.ticks })

	if _, err := r.Run(context.Background(), Config{Period: 0.02, Ticks: 5}); err != nil {
		t.Fatal(err)
	}
	if fired != 2 {
		t.Errorf("expected command to run before the third tick, ran after %d", fired)
	}
}

func TestRunnerFaultsAreCounted(t *testing.T) {
	c := &counter{failAt: map[int]bool{2: true, 4: true}}
	r := New(nil, nil)
	r.Add("c", c)

	res, err := r.Run(context.Background(), Config{Period: 0.02, Ticks: 5})
	if err != nil {
		t.Fatal(err)
	}
	if res.Faults != 2 || len(res.Errors) != 2 || res.TicksRun != 5 {
		t.Errorf("expected 2 faults over 5 ticks, got %d faults, %d ticks", res.Faults, res.TicksRun)
	}

	c = &counter{failAt: map[int]bool{2: true}}
	r = New(nil, nil)
	r.Add("c", c)
	res, _ = r.Run(context.Background(), Config{Period: 0.02, Ticks: 5, StopOnFault: true})
	if res.TicksRun != 2 {
		t.Errorf("expected stop after the faulting tick, ran %d", res.TicksRun)
	}
}

func TestRunnerValidation(t *testing.T) {
	r := New(nil, nil)
	if _, err := r.Run(context.Background(), Config{Period: 0, Ticks: 1}); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := r.Run(context.Background(), Config{Period: 0.02, Ticks: -1}); err == nil {
		t.Error("expected error for negative ticks")
	}
}

func TestRunnerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(nil, nil)
	r.Add("c", &counter{})
	res, err := r.Run(ctx, Config{Period: 0.02, Ticks: 10})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.TicksRun != 0 {
		t.Errorf("expected no ticks, got %d", res.TicksRun)
	}
}

func buildPivotRun(setpoint float64) (*Runner, Config, error) {
	cfg := config.DefaultConfig()
	p, err := pivot.New(cfg, pivot.Deps{Driver: driver.NewSim()})
	if err != nil {
		return nil, Config{}, err
	}
	r := New(func() (dynamo.State, dynamo.Control) {
		return dynamo.State{p.Angle(), p.Velocity()}, dynamo.Control{p.Command()}
	}, nil)
	r.Add("pivot", p)
	r.At(0, func() { p.SetAngle(setpoint) })
	target := units.DegreesToRadians(setpoint)
	r.AddMetric(metrics.NewSteadyStateError(target))
	r.AddMetric(metrics.NewSettlingTime(target, units.DegreesToRadians(2)))
	return r, Config{Period: cfg.Period, Ticks: 500}, nil
}

func TestRunnerWithPivot(t *testing.T) {
	r, cfg, err := buildPivotRun(90)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if sse := res.Metrics["steady_state_error"]; sse > units.DegreesToRadians(0.5) {
		t.Errorf("expected small steady state error, got %f rad", sse)
	}
	if st := res.Metrics["settling_time"]; math.IsNaN(st) || st > 10 {
		t.Errorf("expected to settle, got %f", st)
	}
	names := res.MetricNames()
	if len(names) != 2 || names[0] != "settling_time" {
		t.Errorf("unexpected metric names %v", names)
	}
}

func TestSweep(t *testing.T) {
	setpoints := []float64{30, 60, 90}
	results, err := Sweep(context.Background(), len(setpoints), func(i int) (*Runner, Config, error) {
		return buildPivotRun(setpoints[i])
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, res := range results {
		final := res.States[len(res.States)-1][0]
		if math.Abs(units.RadiansToDegrees(final)-setpoints[i]) > 3 {
			t.Errorf("run %d: expected near %f degrees, got %f", i, setpoints[i], units.RadiansToDegrees(final))
		}
	}
}

func TestSweepReportsBuildErrors(t *testing.T) {
	_, err := Sweep(context.Background(), 2, func(i int) (*Runner, Config, error) {
		if i == 1 {
			return nil, Config{}, errors.New("no driver")
		}
		return New(nil, nil), Config{Period: 0.02, Ticks: 1}, nil
	})
	if err == nil {
		t.Error("expected build error")
	}
}
