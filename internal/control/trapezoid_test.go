package control

import (
	"math"
	"testing"
)

func runProfile(t *testing.T, tr *Trapezoid, steps int, dt float64, check func(prev, cur ProfileState)) {
	t.Helper()
	prev := tr.State()
	for i := 0; i < steps && !tr.Done(); i++ {
		cur := tr.Next(dt)
		if !tr.Done() {
			check(prev, cur)
		}
		prev = cur
	}
}

func TestTrapezoidReachesGoal(t *testing.T) {
	c := Constraints{MaxVelocity: 2, MaxAcceleration: 4}
	tr := NewTrapezoid(c)
	tr.SetGoal(10)

	runProfile(t, tr, 2000, 0.01, func(prev, cur ProfileState) {
		if math.Abs(cur.Velocity) > c.MaxVelocity+1e-12 {
			t.Fatalf("velocity %f exceeds cruise", cur.Velocity)
		}
		if math.Abs(cur.Acceleration) > c.MaxAcceleration+1e-12 {
			t.Fatalf("acceleration %f exceeds limit", cur.Acceleration)
		}
	})

	if !tr.Done() || tr.State().Position != 10 {
		t.Errorf("expected profile to finish at 10, got %+v", tr.State())
	}
}

func TestTrapezoidReverse(t *testing.T) {
	tr := NewTrapezoid(Constraints{MaxVelocity: 80, MaxAcceleration: 160})
	tr.Reset(ProfileState{Position: 9})
	tr.SetGoal(-3)

	runProfile(t, tr, 5000, 0.02, func(prev, cur ProfileState) {})

	if !tr.Done() || tr.State().Position != -3 {
		t.Errorf("expected profile to finish at -3, got %+v", tr.State())
	}
}

func TestTrapezoidJerkLimit(t *testing.T) {
	c := Constraints{MaxVelocity: 80, MaxAcceleration: 160, MaxJerk: 1600}
	tr := NewTrapezoid(c)
	tr.SetGoal(20)

	dt := 0.001
	runProfile(t, tr, 5000, dt, func(prev, cur ProfileState) {
		if math.Abs(cur.Acceleration-prev.Acceleration) > c.MaxJerk*dt+1e-9 {
			t.Fatalf("acceleration jumped %f -> %f", prev.Acceleration, cur.Acceleration)
		}
		if math.Abs(cur.Velocity) > c.MaxVelocity+1e-12 {
			t.Fatalf("velocity %f exceeds cruise", cur.Velocity)
		}
	})

	if !tr.Done() || tr.State().Position != 20 {
		t.Errorf("expected jerk limited profile to finish at 20, got %+v", tr.State())
	}
}

func TestTrapezoidAlreadyThere(t *testing.T) {
	tr := NewTrapezoid(Constraints{MaxVelocity: 1, MaxAcceleration: 1})
	tr.Reset(ProfileState{Position: 2})
	tr.SetGoal(2)

	if !tr.Done() {
		t.Fatal("expected done at goal")
	}
	if s := tr.Next(0.02); s.Position != 2 || s.Velocity != 0 {
		t.Errorf("expected to stay put, got %+v", s)
	}
}
