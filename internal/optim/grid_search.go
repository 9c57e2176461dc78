package optim

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/san-kum/pivotsim/internal/loop"
)

// Build constructs one candidate run from a parameter assignment.
type Build func(params map[string]float64) (*loop.Runner, loop.Config, error)

// GridSearch tries every combination of parameter values and keeps the one
// that minimizes a metric. Candidates run concurrently.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

type Candidate struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Candidates enumerates the grid in row-major order, last parameter fastest.
func (g *GridSearch) Candidates() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*out = append(*out, params)
		return
	}
	for _, val := range g.ranges[depth] {
		current[g.paramNames[depth]] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, g.paramNames[depth])
}

// Search runs every candidate and returns the best by metricName along with
// every evaluated candidate. Non-finite metric values and failed runs never
// win; ties go to the earlier candidate.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (Candidate, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Candidate{}, nil, errors.New("optim: parameter names and ranges differ in length")
	}

	grid := g.Candidates()
	results, sweepErr := loop.Sweep(ctx, len(grid), func(i int) (*loop.Runner, loop.Config, error) {
		return build(grid[i])
	})

	all := make([]Candidate, len(grid))
	best := Candidate{Value: math.Inf(1)}
	found := false
	for i, params := range grid {
		c := Candidate{Params: params, Value: math.NaN()}
		switch {
		case results[i] == nil:
			c.Err = errors.New("run failed")
		default:
			v, ok := results[i].Metrics[metricName]
			if !ok {
				c.Err = errors.Errorf("metric %q not recorded", metricName)
			} else {
				c.Value = v
			}
		}
		all[i] = c

		if c.Err == nil && !math.IsNaN(c.Value) && !math.IsInf(c.Value, 0) && c.Value < best.Value {
			best = c
			found = true
		}
	}

	if !found {
		if sweepErr == nil {
			sweepErr = errors.Errorf("optim: no candidate produced a finite %s", metricName)
		}
		return Candidate{}, all, sweepErr
	}
	return best, all, nil
}
