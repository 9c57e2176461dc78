package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"finite", State{1, -2}, true},
		{"empty", State{}, true},
		{"nan", State{0, math.NaN()}, false},
		{"inf", State{math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := State{1, 2}
	c := s.Clone()
	c[0] = 5
	if s[0] != 1 {
		t.Errorf("clone aliases original: %v", s)
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.06, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected SimulationError to unwrap to ErrInvalidState")
	}
}
