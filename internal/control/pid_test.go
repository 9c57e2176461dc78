package control

import (
	"math"
	"testing"
)

func TestPIDProportional(t *testing.T) {
	pid := NewPID(2, 0, 0, 0.02)
	if u := pid.Calculate(0, 10); u != 20 {
		t.Errorf("expected 20, got %f", u)
	}
	if pid.Setpoint() != 10 || pid.PositionError() != 10 {
		t.Errorf("unexpected setpoint/error %f/%f", pid.Setpoint(), pid.PositionError())
	}
}

func TestPIDNegativeErrorNegativeOutput(t *testing.T) {
	pid := NewPID(10.0, 0.1, 5.0, 0.02)
	if u := pid.Calculate(1.0, 0.0); u >= 0 {
		t.Error("PID should output negative control for positive measurement above setpoint")
	}
}

func TestPIDIntegralAccumulates(t *testing.T) {
	pid := NewPID(0, 0.001, 0, 0.02)

	prevIntegral := 0.0
	prevOut := math.NaN()
	for i := 0; i < 50; i++ {
		out := pid.Calculate(0, 10)
		if math.Abs(pid.TotalError()) <= math.Abs(prevIntegral) {
			t.Fatalf("tick %d: integral did not grow (%f -> %f)", i, prevIntegral, pid.TotalError())
		}
		if out == prevOut {
			t.Fatalf("tick %d: repeated call returned the same output %f", i, out)
		}
		prevIntegral = pid.TotalError()
		prevOut = out
	}

	if math.Abs(pid.TotalError()-50*10*0.02) > 1e-9 {
		t.Errorf("expected integral 10, got %f", pid.TotalError())
	}
}

func TestPIDIntegratorRange(t *testing.T) {
	pid := NewPID(0, 1, 0, 0.02)
	for i := 0; i < 20; i++ {
		pid.Calculate(0, 10)
	}
	if pid.IntegralTerm() != 1 {
		t.Errorf("expected integral term clamped to 1, got %f", pid.IntegralTerm())
	}

	for i := 0; i < 200; i++ {
		pid.Calculate(10, 0)
	}
	if pid.IntegralTerm() != -1 {
		t.Errorf("expected integral term clamped to -1, got %f", pid.IntegralTerm())
	}
}

func TestPIDIZone(t *testing.T) {
	pid := NewPID(0, 1, 0, 0.02)
	pid.IZone = 5

	pid.Calculate(0, 2)
	if pid.TotalError() == 0 {
		t.Fatal("expected integral inside the zone")
	}
	pid.Calculate(0, 10)
	if pid.TotalError() != 0 {
		t.Errorf("expected integral cleared outside the zone, got %f", pid.TotalError())
	}
}

func TestPIDDerivativeUsesPeriod(t *testing.T) {
	pid := NewPID(0, 0, 1, 0.02)
	if u := pid.Calculate(0, 1); math.Abs(u-50) > 1e-9 {
		t.Errorf("expected first derivative kick of 50, got %f", u)
	}
	if u := pid.Calculate(0, 1); u != 0 {
		t.Errorf("expected no derivative for constant error, got %f", u)
	}
}

func TestPIDAtSetpoint(t *testing.T) {
	pid := NewPID(1, 0, 0, 0.02)
	pid.Calculate(0, 0.01)
	if pid.AtSetpoint(0.1, 0.1) {
		t.Error("first call carries a derivative kick, should not be at setpoint")
	}
	pid.Calculate(0, 0.01)
	if !pid.AtSetpoint(0.1, 0.1) {
		t.Error("expected at setpoint")
	}
}

func TestPIDCheckpointRestore(t *testing.T) {
	pid := NewPID(1, 0.5, 0.1, 0.02)
	pid.Calculate(0, 3)
	saved := pid.Checkpoint()
	want := pid.Calculate(1, 3)

	pid.Calculate(50, -20)
	pid.Restore(saved)

	if got := pid.Calculate(1, 3); got != want {
		t.Errorf("expected %f after restore, got %f", want, got)
	}
}

func TestPIDReset(t *testing.T) {
	pid := NewPID(1, 1, 1, 0.02)
	pid.Calculate(0, 0.5)
	pid.Calculate(0, 0.5)
	pid.Reset()

	if pid.TotalError() != 0 || pid.PositionError() != 0 || pid.VelocityError() != 0 {
		t.Error("expected cleared state after Reset")
	}
}

func TestPIDParams(t *testing.T) {
	pid := NewPID(1, 2, 3, 0.02)
	if err := pid.SetParam("Kd", 4); err != nil {
		t.Fatal(err)
	}
	if err := pid.SetParam("Kf", 1); err == nil {
		t.Error("expected error for unknown gain")
	}
	if err := pid.SetParam("Kp", math.NaN()); err == nil {
		t.Error("expected error for NaN gain")
	}
	params := pid.GetParams()
	if params["Kp"] != 1 || params["Ki"] != 2 || params["Kd"] != 4 {
		t.Errorf("unexpected params %v", params)
	}
}
