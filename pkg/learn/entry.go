package learn

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

// Search2D learns the upward-closed region of o over [minX, maxX] x [minY, maxY].
func Search2D(
	ctx context.Context, o oracle.Oracle, minX, minY, maxX, maxY float64, opts Options,
) (*resultset.ResultSet, Stats, error) {
	return SearchNDIntervals(ctx, o, []Interval{{minX, maxX}, {minY, maxY}}, opts)
}

// Search3D learns the upward-closed region of o over a 3-D box.
func Search3D(
	ctx context.Context, o oracle.Oracle, minX, minY, minZ, maxX, maxY, maxZ float64, opts Options,
) (*resultset.ResultSet, Stats, error) {
	return SearchNDIntervals(ctx, o, []Interval{{minX, maxX}, {minY, maxY}, {minZ, maxZ}}, opts)
}

// SearchND learns the upward-closed region of o over [lo, hi]^n, n = o.Dim().
func SearchND(ctx context.Context, o oracle.Oracle, lo, hi float64, opts Options) (*resultset.ResultSet, Stats, error) {
	if o == nil {
		return nil, Stats{}, ErrNoOracles
	}

	return SearchNDIntervals(ctx, o, Uniform(o.Dim(), lo, hi), opts)
}

// SearchNDIntervals learns the upward-closed region of o over the box with
// one interval per axis. OptLevel ranges over OptBaseline..OptLattice.
func SearchNDIntervals(
	ctx context.Context, o oracle.Oracle, intervals []Interval, opts Options,
) (*resultset.ResultSet, Stats, error) {
	err := opts.validateLevel(OptLattice)
	if err != nil {
		return nil, Stats{}, err
	}

	space, err := Space(intervals)
	if err != nil {
		return nil, Stats{}, err
	}

	err = checkOracles(space, o)
	if err != nil {
		return nil, Stats{}, err
	}

	st := newState(space, opts.OptLevel >= OptLattice)
	st.border.push(space)

	r := &run[geom.Segment]{
		name:    learnerPartition,
		opts:    opts,
		method:  resultset.MethodMonotone,
		st:      st,
		learner: newPartition(st, opts),
		oracles: []oracle.Oracle{o},
	}

	return r.execute(ctx)
}

// SearchIntersection2D learns where up (upward-closed) and down
// (downward-closed, true on the lower region) both hold over a 2-D box.
func SearchIntersection2D(
	ctx context.Context, up, down oracle.Oracle, minX, minY, maxX, maxY float64, opts Options,
) (*resultset.ResultSet, Stats, error) {
	return SearchIntersectionNDIntervals(ctx, up, down, []Interval{{minX, maxX}, {minY, maxY}}, nil, opts)
}

// SearchIntersection3D is SearchIntersection2D over a 3-D box.
func SearchIntersection3D(
	ctx context.Context, up, down oracle.Oracle, minX, minY, minZ, maxX, maxY, maxZ float64, opts Options,
) (*resultset.ResultSet, Stats, error) {
	intervals := []Interval{{minX, maxX}, {minY, maxY}, {minZ, maxZ}}

	return SearchIntersectionNDIntervals(ctx, up, down, intervals, nil, opts)
}

// SearchIntersectionNDIntervals learns where up and down both hold inside
// the box and the constraints. Cells outside the constraints are certified
// false. OptLevel ranges over InterPlain..InterAbsorb.
func SearchIntersectionNDIntervals(
	ctx context.Context, up, down oracle.Oracle, intervals []Interval, constraints search.Constraints, opts Options,
) (*resultset.ResultSet, Stats, error) {
	err := opts.validateLevel(InterAbsorb)
	if err != nil {
		return nil, Stats{}, err
	}

	space, err := Space(intervals)
	if err != nil {
		return nil, Stats{}, err
	}

	err = checkOracles(space, up, down)
	if err != nil {
		return nil, Stats{}, err
	}

	err = constraints.Validate(space.Dim())
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	st := newState(space, false)
	st.border.push(space)

	r := &run[interStep]{
		name:    learnerIntersection,
		opts:    opts,
		method:  resultset.MethodIntersection,
		st:      st,
		learner: newIntersection(st, opts, constraints),
		oracles: []oracle.Oracle{up, down},
	}

	return r.execute(ctx)
}

// Mine2D finds where every oracle holds over a 2-D box by sampling.
func Mine2D(
	ctx context.Context, oracles []oracle.Oracle, minX, minY, maxX, maxY float64, opts MineOptions,
) (*resultset.ResultSet, Stats, error) {
	return MineND(ctx, oracles, []Interval{{minX, maxX}, {minY, maxY}}, opts)
}

// Mine3D is Mine2D over a 3-D box.
func Mine3D(
	ctx context.Context, oracles []oracle.Oracle, minX, minY, minZ, maxX, maxY, maxZ float64, opts MineOptions,
) (*resultset.ResultSet, Stats, error) {
	return MineND(ctx, oracles, []Interval{{minX, maxX}, {minY, maxY}, {minZ, maxZ}}, opts)
}

// MineND finds where every oracle holds over the box by sampling. With
// MineFixed the box is cut into about NumCells equal cells; with
// MineAdaptive cells are split until they are decided or reach Granularity.
func MineND(
	ctx context.Context, oracles []oracle.Oracle, intervals []Interval, opts MineOptions,
) (*resultset.ResultSet, Stats, error) {
	err := opts.Validate()
	if err != nil {
		return nil, Stats{}, err
	}

	space, err := Space(intervals)
	if err != nil {
		return nil, Stats{}, err
	}

	err = checkOracles(space, oracles...)
	if err != nil {
		return nil, Stats{}, err
	}

	if len(opts.Granularity) > 0 && len(opts.Granularity) != space.Dim() {
		return nil, Stats{}, fmt.Errorf("%w: granularity has %d axes, space has %d",
			ErrInvalidOptions, len(opts.Granularity), space.Dim())
	}

	samples, err := SampleSize(opts.P0, opts.Alpha)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	st := newState(space, false)

	if opts.OptLevel == MineAdaptive {
		st.border.push(space)
	} else {
		st.border.push(space.CellPartition(opts.NumCells)...)
	}

	r := &run[sampling]{
		name:    learnerMining,
		opts:    opts.Options,
		method:  resultset.MethodMonotone,
		st:      st,
		learner: newMining(st, opts, samples),
		oracles: oracles,
	}

	return r.execute(ctx)
}
