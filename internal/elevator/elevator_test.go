package elevator

import (
	"math"
	"testing"

	"github.com/san-kum/pivotsim/internal/config"
	"github.com/san-kum/pivotsim/internal/telemetry"
	"github.com/san-kum/pivotsim/internal/viz"
)

func newTestElevator(t *testing.T, cfg *config.Config) (*Subsystem, *telemetry.Table, *viz.Scene) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	tbl := telemetry.NewTable(10)
	scene := viz.NewScene()
	e, err := New(cfg, tbl, scene, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, tbl, scene
}

func TestElevatorReachesHeight(t *testing.T) {
	e, tbl, _ := newTestElevator(t, nil)
	e.SetHeight(1.0)

	for i := 0; i < 250; i++ {
		if err := e.Tick(0.02); err != nil {
			t.Fatal(err)
		}
	}

	if math.Abs(e.Height()-1.0) > 0.01 {
		t.Errorf("expected height 1.0, got %f", e.Height())
	}
	if v, _ := tbl.Get(KeyHeight); v != e.Height() {
		t.Errorf("published height %f, want %f", v, e.Height())
	}
}

func TestElevatorSetHeightClamps(t *testing.T) {
	e, _, _ := newTestElevator(t, nil)

	e.SetHeight(5)
	if e.Setpoint() != 1.5 {
		t.Errorf("expected clamp to max height, got %f", e.Setpoint())
	}
	e.SetHeight(-1)
	if e.Setpoint() != 0 {
		t.Errorf("expected clamp to 0, got %f", e.Setpoint())
	}
}

func TestElevatorVizLength(t *testing.T) {
	e, _, scene := newTestElevator(t, nil)
	e.SetHeight(0.8)
	for i := 0; i < 100; i++ {
		if err := e.Tick(0.02); err != nil {
			t.Fatal(err)
		}
	}

	want := config.DefaultConfig().Elevator.VizBaseLength + e.Height()
	if e.VizLength() != want {
		t.Errorf("expected viz length %f, got %f", want, e.VizLength())
	}
	l, ok := scene.Get(LigamentName)
	if !ok || l.Length != want || l.Angle != 90 {
		t.Errorf("unexpected ligament %+v", l)
	}
}

func TestElevatorRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Elevator.StartingHeight = 3
	if _, err := New(cfg, nil, nil, nil); err == nil {
		t.Error("expected error for starting height above travel")
	}

	cfg = config.DefaultConfig()
	cfg.Elevator.Motor = "vex"
	if _, err := New(cfg, nil, nil, nil); err == nil {
		t.Error("expected error for unknown motor")
	}
}
