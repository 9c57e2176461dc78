package loop

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Build constructs the i-th independent run of a sweep. Each run must own
// its subsystems outright; nothing may be shared between runs.
type Build func(i int) (*Runner, Config, error)

// Sweep executes n independent runs concurrently, one goroutine per run.
// Results keep the index order; every failed build or run is reported.
func Sweep(ctx context.Context, n int, build Build) ([]*Result, error) {
	results := make([]*Result, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, cfg, err := build(idx)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "building run %d", idx)
				return
			}
			results[idx], err = r.Run(ctx, cfg)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "run %d", idx)
			}
		}(i)
	}
	wg.Wait()

	return results, multierr.Combine(errs...)
}
