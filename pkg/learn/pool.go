package learn

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

// searchFunc examines one cell with the oracles owned by the calling worker.
// It must not touch learner state.
type searchFunc[R any] func(ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle) (R, error)

// outcome is the result of one cell search.
type outcome[R any] struct {
	cell    *geom.Rectangle
	value   R
	err     error
	elapsed time.Duration
}

// pool runs cell searches on a fixed set of workers. Worker w always uses
// sets[w], its own clones of the run's oracles; clones are made once, when
// the pool is built, and closed by release.
type pool struct {
	sets    [][]oracle.Oracle
	release func() error
}

// workerCount resolves the pool size for opts.
func workerCount(opts Options) int {
	if !opts.Parallel {
		return 1
	}

	if opts.Workers > 0 {
		return opts.Workers
	}

	return runtime.NumCPU()
}

// newPool builds one oracle set per worker. A single worker uses the oracles
// as given.
func newPool(workers int, oracles []oracle.Oracle) (*pool, error) {
	if workers <= 1 {
		return &pool{sets: [][]oracle.Oracle{oracles}, release: func() error { return nil }}, nil
	}

	sets := make([][]oracle.Oracle, workers)
	for w := range sets {
		sets[w] = make([]oracle.Oracle, len(oracles))
	}

	releases := make([]func() error, 0, len(oracles))
	releaseAll := func() error {
		var errs []error

		for _, r := range releases {
			errs = append(errs, r())
		}

		return errors.Join(errs...)
	}

	for j, o := range oracles {
		clones, release, err := oracle.CloneN(o, workers)
		if err != nil {
			return nil, errors.Join(err, releaseAll())
		}

		releases = append(releases, release)

		for w := range workers {
			sets[w][j] = clones[w]
		}
	}

	return &pool{sets: sets, release: releaseAll}, nil
}

func (p *pool) size() int {
	return len(p.sets)
}

// runBatch searches every cell and returns the outcomes in input order.
// Per-cell failures are reported in the outcomes; the returned error is set
// only when ctx ends.
func runBatch[R any](ctx context.Context, p *pool, cells []*geom.Rectangle, fn searchFunc[R]) ([]outcome[R], error) {
	out := make([]outcome[R], len(cells))

	if p.size() == 1 || len(cells) == 1 {
		for i, cell := range cells {
			err := ctx.Err()
			if err != nil {
				return nil, err
			}

			out[i] = runOne(ctx, p.sets[0], cell, fn)
		}

		return out, ctx.Err()
	}

	free := make(chan int, p.size())
	for w := range p.size() {
		free <- w
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size())

	for i, cell := range cells {
		g.Go(func() error {
			w := <-free
			defer func() { free <- w }()

			err := gctx.Err()
			if err != nil {
				return err
			}

			out[i] = runOne(gctx, p.sets[w], cell, fn)

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return out, ctx.Err()
}

func runOne[R any](ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle, fn searchFunc[R]) outcome[R] {
	start := time.Now()
	value, err := fn(ctx, oracles, cell)

	return outcome[R]{cell: cell, value: value, err: err, elapsed: time.Since(start)}
}
