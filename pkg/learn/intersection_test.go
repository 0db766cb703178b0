package learn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/learn"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

func sum(p geom.Point) float64 {
	var s float64
	for _, v := range p {
		s += v
	}

	return s
}

// nearUnitCorner is true inside the unit ball around (1, ..., 1).
func nearUnitCorner(n int) *oracle.Func {
	corner := geom.Fill(n, 1)

	return oracle.FromPredicate(n, func(p geom.Point) bool {
		return squaredNorm(p.Sub(corner)) < 1
	})
}

func largest(boxes []*geom.Rectangle) *geom.Rectangle {
	var best *geom.Rectangle

	for _, b := range boxes {
		if best == nil || b.Volume() > best.Volume() {
			best = b
		}
	}

	return best
}

func TestSearchIntersection3D_Lens(t *testing.T) {
	t.Parallel()

	opts := testOptions(40)
	opts.OptLevel = learn.InterAbsorb

	rs, stats, err := learn.SearchIntersection3D(context.Background(),
		nearUnitCorner(3), insideUnitCircle(3), 0, 0, 0, 1, 1, 1, opts)
	require.NoError(t, err)

	assert.Equal(t, "intersection", stats.Learner)
	assert.GreaterOrEqual(t, stats.Outcomes[search.Inter.String()], 1)

	best := largest(rs.Yup())
	require.NotNil(t, best)

	for _, c := range best.Center() {
		assert.InDelta(t, 0.5, c, 0.1)
	}

	inLens := func(p geom.Point) bool {
		return squaredNorm(p) < 1 && squaredNorm(p.Sub(geom.Fill(3, 1))) < 1
	}

	assertSound(t, rs, inLens)
	assertPartition(t, rs)
}

func TestSearchIntersection2D_Levels(t *testing.T) {
	t.Parallel()

	band := func(p geom.Point) bool { return sum(p) > 0.5 && sum(p) < 1.5 }

	for level := learn.InterPlain; level <= learn.InterAbsorb; level++ {
		t.Run("", func(t *testing.T) {
			t.Parallel()

			up := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) > 0.5 })
			down := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) < 1.5 })

			opts := testOptions(50)
			opts.OptLevel = level

			rs, stats, err := learn.SearchIntersection2D(context.Background(), up, down, 0, 0, 1, 1, opts)
			require.NoError(t, err)

			assert.Equal(t, 50, stats.Steps)
			assert.Positive(t, rs.VolumeYup())
			assertSound(t, rs, band)
			assertPartition(t, rs)
		})
	}
}

func TestSearchIntersection2D_NoInter(t *testing.T) {
	t.Parallel()

	up := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) > 1.2 })
	down := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) < 0.8 })

	opts := testOptions(30)
	opts.OptLevel = learn.InterAbsorb

	rs, stats, err := learn.SearchIntersection2D(context.Background(), up, down, 0, 0, 1, 1, opts)
	require.NoError(t, err)

	assert.Zero(t, rs.VolumeYup())
	assert.Positive(t, stats.Outcomes[search.NoInter.String()])
	assert.Greater(t, rs.VolumeYlow(), 0.5)
	assertPartition(t, rs)
}

func TestSearchIntersection_Constraints(t *testing.T) {
	t.Parallel()

	up := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) > 0.4 })
	down := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) < 1.6 })
	cs := search.Constraints{{Coeffs: []float64{1, 1}, Bound: 1}}

	opts := testOptions(40)
	opts.OptLevel = learn.InterExpand

	rs, stats, err := learn.SearchIntersectionNDIntervals(context.Background(), up, down,
		[]learn.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}, cs, opts)
	require.NoError(t, err)

	assert.Positive(t, rs.VolumeYup())
	assert.Positive(t, stats.Outcomes["SPLIT"]+stats.Outcomes["INFEASIBLE"])

	for _, b := range rs.Yup() {
		assert.LessOrEqual(t, sum(b.Max()), 1+1e-9, "Y↑ box %s leaves the constraints", b)
	}

	assertSound(t, rs, func(p geom.Point) bool {
		return sum(p) > 0.4 && sum(p) < 1.6 && sum(p) <= 1
	})
	assertPartition(t, rs)
}

func TestSearchIntersection_Preconditions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	up2 := outsideUnitCircle(2)
	down2 := insideUnitCircle(2)
	unit := []learn.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}

	_, _, err := learn.SearchIntersectionNDIntervals(ctx, up2, insideUnitCircle(3), unit, nil, learn.DefaultOptions())
	require.ErrorIs(t, err, learn.ErrDimensionMismatch)

	badCS := search.Constraints{{Coeffs: []float64{1, 1, 1}, Bound: 1}}
	_, _, err = learn.SearchIntersectionNDIntervals(ctx, up2, down2, unit, badCS, learn.DefaultOptions())
	require.ErrorIs(t, err, learn.ErrDimensionMismatch)

	opts := learn.DefaultOptions()
	opts.OptLevel = learn.OptLattice
	_, _, err = learn.SearchIntersection2D(ctx, up2, down2, 0, 0, 1, 1, opts)
	require.ErrorIs(t, err, learn.ErrInvalidOptions)

	_, _, err = learn.SearchIntersection2D(ctx, nil, down2, 0, 0, 1, 1, learn.DefaultOptions())
	require.ErrorIs(t, err, learn.ErrNoOracles)
}

func TestSearchIntersection_SimplifiedBundle(t *testing.T) {
	t.Parallel()

	up := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) > 0.5 })
	down := oracle.FromPredicate(2, func(p geom.Point) bool { return sum(p) < 1.5 })

	opts := learn.DefaultOptions()
	opts.MaxSteps = 30

	rs, _, err := learn.SearchIntersection2D(context.Background(), up, down, 0, 0, 1, 1, opts)
	require.NoError(t, err)

	require.True(t, rs.Simplified())

	path := t.TempDir() + "/inter.zip"
	require.NoError(t, rs.Save(path, resultset.Deflate))

	loaded, err := resultset.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, rs.VolumeYup(), loaded.VolumeYup(), volumeTolerance)
	assert.InDelta(t, rs.VolumeYlow(), loaded.VolumeYlow(), volumeTolerance)
}
