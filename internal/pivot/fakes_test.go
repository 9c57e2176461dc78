package pivot

import (
	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/viz"
)

type recorder struct {
	events []string
}

func (r *recorder) add(e string) {
	if r != nil {
		r.events = append(r.events, e)
	}
}

// fakeDriver loops commanded voltage straight back as the measured output.
type fakeDriver struct {
	rec          *recorder
	configureErr error
	readErr      error
	writeErr     error
	panicOnWrite bool

	configured int
	applied    float64
	voltages   []float64
	targets    []float64
	collected  int
}

func (d *fakeDriver) Configure(cfg config.DriverConfig) error {
	d.configured++
	return d.configureErr
}

func (d *fakeDriver) SetVoltage(v float64) error {
	d.rec.add("set voltage")
	if d.panicOnWrite {
		panic("bus exploded")
	}
	if d.writeErr != nil {
		return d.writeErr
	}
	d.voltages = append(d.voltages, v)
	d.applied = v
	return nil
}

func (d *fakeDriver) SetProfiledPosition(p float64) error {
	d.rec.add("set profiled")
	if d.writeErr != nil {
		return d.writeErr
	}
	d.targets = append(d.targets, p)
	return nil
}

func (d *fakeDriver) MeasuredVoltage() (float64, error) {
	d.rec.add("read measured")
	if d.readErr != nil {
		return 0, d.readErr
	}
	return d.applied, nil
}

func (d *fakeDriver) SimulationPeriodic(positionRad, velocityRadPerSec, dt float64) {
	d.rec.add("sim periodic")
	d.collected++
}

type fakeTelemetry struct {
	rec    *recorder
	values map[string]float64
}

func newFakeTelemetry(rec *recorder) *fakeTelemetry {
	return &fakeTelemetry{rec: rec, values: make(map[string]float64)}
}

func (f *fakeTelemetry) PutNumber(key string, v float64) {
	f.rec.add("publish " + key)
	f.values[key] = v
}

type fakeSink struct {
	rec      *recorder
	rendered []viz.Ligament
}

func (s *fakeSink) Render(l viz.Ligament) {
	s.rec.add("render")
	s.rendered = append(s.rendered, l)
}
