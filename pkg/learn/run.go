package learn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/observability"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

// Learner names used in logs, spans and metrics.
const (
	learnerPartition    = "partition"
	learnerIntersection = "intersection"
	learnerMining       = "mining"
)

// cellLearner is the per-cell behavior of one learner.
type cellLearner[R any] interface {
	// search runs on a pool worker.
	search(ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle) (R, error)
	// place records the decided parts of cell and pushes the undecided ones
	// back to the border. It returns a classification label or "".
	place(cell *geom.Rectangle, r R) string
	// absorb runs once every cell of the batch has been placed.
	absorb(cell *geom.Rectangle, r R)
}

// finisher lets a learner add its own figures to the stats.
type finisher interface {
	finish(stats *Stats)
}

// run drives a cellLearner over a state until a stop condition holds.
type run[R any] struct {
	name    string
	opts    Options
	method  int
	st      *state
	learner cellLearner[R]
	oracles []oracle.Oracle
}

func (r *run[R]) execute(ctx context.Context) (*resultset.ResultSet, Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.NewString(), Learner: r.name, Outcomes: make(map[string]int)}
	ctx = observability.WithRun(ctx, observability.Run{Learner: r.name, ID: stats.RunID})
	log := observability.RunLogger(ctx, r.opts.logger())

	tracer := r.opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(observability.ScopeName)
	}

	ctx, span := tracer.Start(ctx, "paretolearn."+r.name, trace.WithAttributes(
		attribute.Int("paretolearn.dim", r.st.space.Dim()),
		attribute.Int("paretolearn.opt_level", r.opts.OptLevel),
		attribute.Bool("paretolearn.parallel", r.opts.Parallel),
	))
	defer span.End()

	counters := make([]*oracle.Counting, len(r.oracles))
	wrapped := make([]oracle.Oracle, len(r.oracles))

	for i, o := range r.oracles {
		counters[i] = oracle.NewCounting(o)
		wrapped[i] = counters[i]
	}

	p, err := newPool(workerCount(r.opts), wrapped)
	if err != nil {
		return r.fail(span, stats, fmt.Errorf("build worker pool: %w", err))
	}

	defer func() {
		releaseErr := p.release()
		if releaseErr != nil {
			log.WarnContext(ctx, "release oracle clones", "error", releaseErr)
		}
	}()

	stats.Workers = p.size()

	var snap *snapshotter

	if r.opts.Logging {
		snap, err = newSnapshotter(r.opts.LogDir, stats.RunID)
		if err != nil {
			return r.fail(span, stats, err)
		}

		stats.SnapshotDir = snap.dir
	}

	pace := newPacer(ctx, r.opts)
	defer pace.close()

	log.InfoContext(ctx, "search started",
		"dim", r.st.space.Dim(), "space", r.st.space.String(),
		"opt_level", r.opts.OptLevel, "workers", p.size(), "max_steps", r.opts.MaxSteps)

	for !r.finished(stats.Steps) {
		k := min(p.size(), r.opts.MaxSteps-stats.Steps, r.st.border.len())
		cells := r.st.border.popN(k)

		outs, batchErr := runBatch(ctx, p, cells, r.learner.search)
		if batchErr != nil {
			return r.fail(span, stats, batchErr)
		}

		r.stitch(ctx, log, &stats, outs)

		ratio := r.st.borderRatio()
		r.opts.Metrics.RecordBorderRatio(ctx, r.name, ratio)
		log.DebugContext(ctx, "batch done", "step", stats.Steps, "cells", len(cells), "border_ratio", ratio)

		err = r.report(ctx, pace, snap, stats.Steps, cells)
		if err != nil {
			return r.fail(span, stats, err)
		}
	}

	rs := r.st.resultSet()

	if r.opts.Simplify {
		err = rs.Simplify(r.method)
		if err != nil {
			return r.fail(span, stats, err)
		}
	}

	for _, c := range counters {
		stats.Queries += c.Queries()
		stats.QueryFailures += c.Failures()
	}

	if len(stats.Outcomes) == 0 {
		stats.Outcomes = nil
	}

	if f, ok := r.learner.(finisher); ok {
		f.finish(&stats)
	}

	stats.BorderRatio = r.st.borderRatio()
	stats.Elapsed = time.Since(start)

	r.opts.Metrics.RecordQueries(ctx, r.name, stats.Queries, stats.QueryFailures)

	if snap != nil {
		err = snap.finish(rs, stats)
		if err != nil {
			return r.fail(span, stats, err)
		}
	}

	span.SetAttributes(
		attribute.Int("paretolearn.steps", stats.Steps),
		attribute.Int64("paretolearn.queries", stats.Queries),
		attribute.Float64("paretolearn.border_ratio", stats.BorderRatio),
	)

	log.InfoContext(ctx, "search finished",
		"steps", stats.Steps, "failures", stats.Failures, "queries", stats.Queries,
		"border_ratio", stats.BorderRatio, "elapsed", stats.Elapsed)

	return rs, stats, nil
}

// finished reports whether a stop condition holds after steps cells.
func (r *run[R]) finished(steps int) bool {
	return r.st.border.len() == 0 ||
		steps >= r.opts.MaxSteps ||
		r.st.border.volume() < r.opts.Delta*r.st.space.Volume()
}

// stitch folds a batch back into the state: every cell is placed first, then
// absorption runs, so that no child created by the batch escapes a cone
// certified by the same batch.
func (r *run[R]) stitch(ctx context.Context, log *slog.Logger, stats *Stats, outs []outcome[R]) {
	for _, o := range outs {
		stats.Steps++
		r.opts.Metrics.RecordStep(ctx, r.name, o.elapsed, o.err != nil)

		if o.err != nil {
			stats.Failures++

			log.WarnContext(ctx, "cell search failed, cell returned to border",
				"cell", o.cell.String(), "error", o.err)
			r.st.border.push(o.cell)

			continue
		}

		if label := r.learner.place(o.cell, o.value); label != "" {
			stats.Outcomes[label]++
		}
	}

	for _, o := range outs {
		if o.err == nil {
			r.learner.absorb(o.cell, o.value)
		}
	}
}

func (r *run[R]) report(ctx context.Context, pace *pacer, snap *snapshotter, step int, cells []*geom.Rectangle) error {
	if !pace.wants() && snap == nil {
		return pace.notify(ctx, Progress{})
	}

	rs := r.st.resultSet()

	if snap != nil {
		err := snap.step(step, rs)
		if err != nil {
			return err
		}
	}

	return pace.notify(ctx, Progress{Step: step, Cells: cells, Result: rs})
}

func (r *run[R]) fail(span trace.Span, stats Stats, err error) (*resultset.ResultSet, Stats, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return nil, stats, err
}
