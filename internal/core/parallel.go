package core

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachColumn runs fn for indices [0, n) on a bounded worker set and
// returns the error with the lowest index, so failures are reported in the
// same order a sequential pass would report them.
func forEachColumn(n int, fn func(i int) error) error {
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			errs[i] = fn(i)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
