package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pivotsim/internal/dynamo"
)

func feed(m dynamo.Metric, positions []float64, dt float64) {
	for i, p := range positions {
		m.Observe(dynamo.State{p, 0}, dynamo.Control{0}, float64(i+1)*dt)
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{3}, 0)
	m.Observe(nil, dynamo.Control{-5}, 0)

	if m.Value() != 4 {
		t.Errorf("expected mean effort 4, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation(12)
	for _, u := range []float64{12, -12, 3, 0} {
		m.Observe(nil, dynamo.Control{u}, 0)
	}
	if m.Value() != 0.5 {
		t.Errorf("expected half saturated, got %f", m.Value())
	}
}

func TestSteadyStateError(t *testing.T) {
	m := NewSteadyStateError(1.0)
	if !math.IsNaN(m.Value()) {
		t.Error("expected NaN before any sample")
	}
	feed(m, []float64{0, 0.5, 0.98}, 0.02)
	if math.Abs(m.Value()-0.02) > 1e-12 {
		t.Errorf("expected 0.02, got %f", m.Value())
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name      string
		start     float64
		target    float64
		positions []float64
		want      float64
	}{
		{"rising", 0, 2, []float64{1, 2.5, 2.1, 2}, 0.25},
		{"falling", 2, 0, []float64{1, -0.4, 0}, 0.2},
		{"never crosses", 0, 1, []float64{0.2, 0.9}, 0},
	}

	for _, tt := range tests {
		m := NewOvershoot(tt.start, tt.target)
		feed(m, tt.positions, 0.02)
		if math.Abs(m.Value()-tt.want) > 1e-12 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, m.Value())
		}
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(1, 0.05)
	feed(m, []float64{0.5, 0.97, 1.2, 1.01, 0.99, 1.0}, 0.1)

	if math.Abs(m.Value()-0.4) > 1e-12 {
		t.Errorf("expected to settle at 0.4s, got %f", m.Value())
	}

	m.Reset()
	feed(m, []float64{0.5, 0.7}, 0.1)
	if !math.IsNaN(m.Value()) {
		t.Errorf("expected NaN for unsettled response, got %f", m.Value())
	}
}
