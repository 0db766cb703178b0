package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/paretolearn/pkg/config"
	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

// ErrBadBounds is returned when --min/--max do not describe a box.
var ErrBadBounds = errors.New("bounds must give one value or one per axis")

// ErrBadConstraint is returned for a --constraint not of the form a1,...,an<=b.
var ErrBadConstraint = errors.New("constraint must look like a1,...,an<=b")

const constraintSep = "<="

// boxFlags are the flags shared by the learning commands.
type boxFlags struct {
	min    []float64
	max    []float64
	out    string
	binary bool
}

func registerOptLevel(cmd *cobra.Command, usage string) {
	cmd.Flags().Int("opt-level", config.DefaultOptLevel, usage)
}

func (b *boxFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64SliceVar(&b.min, "min", nil, "lower corner of the box, one value or one per axis (default 0)")
	f.Float64SliceVar(&b.max, "max", nil, "upper corner of the box, one value or one per axis (default 1)")
	f.StringVarP(&b.out, "out", "o", "", "write the result bundle to this zip file")
	f.BoolVar(&b.binary, "binary", false, "read point files as gob frames instead of text")
	f.String("compression", config.DefaultCompression, "bundle compression: deflate, lz4 or store")
}

func registerLearnerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("epsilon", config.DefaultEpsilon, "stop bisecting below this diagonal length")
	f.Float64("delta", config.DefaultDelta, "stop when the border holds less than this fraction of the box")
	f.Int("max-steps", config.DefaultMaxSteps, "maximum number of processed cells")
	f.Bool("parallel", config.DefaultParallel, "search cells on several workers")
	f.Int("workers", config.DefaultWorkers, "number of workers (0 for one per CPU)")
	f.Bool("simplify", config.DefaultSimplify, "fuse and deduplicate the result boxes")
	f.Bool("logging", config.DefaultLogging, "snapshot the partition after every batch")
	f.String("log-dir", config.DefaultLogDir, "parent directory of the snapshot directory")
	f.Int("query-cache", config.DefaultQueryCache, "memoize up to this many oracle answers (0 disables)")
}

// intervals expands the bounds to n axes.
func (b *boxFlags) intervals(n int) ([]learn.Interval, error) {
	lo, err := broadcast(b.min, n, 0)
	if err != nil {
		return nil, fmt.Errorf("--min: %w", err)
	}

	hi, err := broadcast(b.max, n, 1)
	if err != nil {
		return nil, fmt.Errorf("--max: %w", err)
	}

	out := make([]learn.Interval, n)
	for i := range out {
		out[i] = learn.Interval{Min: lo[i], Max: hi[i]}
	}

	return out, nil
}

func broadcast(vals []float64, n int, def float64) ([]float64, error) {
	switch len(vals) {
	case 0:
		vals = []float64{def}
	case 1, n:
	default:
		return nil, fmt.Errorf("%w: got %d values for %d axes", ErrBadBounds, len(vals), n)
	}

	if len(vals) == n {
		return vals, nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = vals[0]
	}

	return out, nil
}

func (b *boxFlags) loadPoints(path string) (*oracle.Points, error) {
	o, err := oracle.LoadPoints(path, !b.binary)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return o, nil
}

// parseConstraint reads "a1,...,an<=b".
func parseConstraint(s string) (search.Constraint, error) {
	lhs, rhs, ok := strings.Cut(s, constraintSep)
	if !ok {
		return search.Constraint{}, fmt.Errorf("%w: %q", ErrBadConstraint, s)
	}

	bound, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
	if err != nil {
		return search.Constraint{}, fmt.Errorf("%w: %q: %w", ErrBadConstraint, s, err)
	}

	parts := strings.Split(lhs, ",")
	coeffs := make([]float64, len(parts))

	for i, p := range parts {
		coeffs[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return search.Constraint{}, fmt.Errorf("%w: %q: %w", ErrBadConstraint, s, err)
		}
	}

	return search.Constraint{Coeffs: coeffs, Bound: bound}, nil
}

// finish writes the bundle when requested and prints the report.
func (a *app) finish(ctx context.Context, w io.Writer, b *boxFlags, rs *resultset.ResultSet, stats learn.Stats) error {
	if b.out != "" {
		comp, err := resultset.ParseCompression(a.cfg.Output.Compression)
		if err != nil {
			return err
		}

		err = rs.Save(b.out, comp)
		if err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}

		a.providers.Logger.InfoContext(ctx, "bundle written", "path", b.out, "compression", a.cfg.Output.Compression)
	}

	return renderTable(w, []report{{Name: stats.Learner, Summary: rs.Summarize(), Stats: &stats}})
}
