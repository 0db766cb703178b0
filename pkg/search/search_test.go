package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

const testEps = 1e-5

var errBoom = errors.New("boom")

func outsideCircle(n int) oracle.Oracle {
	return oracle.FromPredicate(n, func(p geom.Point) bool {
		var sum float64
		for _, v := range p {
			sum += v * v
		}

		return sum >= 1
	})
}

func sumAbove(n int, bound float64, strict bool) oracle.Oracle {
	return oracle.FromPredicate(n, func(p geom.Point) bool {
		var sum float64
		for _, v := range p {
			sum += v
		}

		if strict {
			return sum > bound
		}

		return sum >= bound
	})
}

func sumBelow(n int, bound float64) oracle.Oracle {
	return oracle.FromPredicate(n, func(p geom.Point) bool {
		var sum float64
		for _, v := range p {
			sum += v
		}

		return sum < bound
	})
}

func TestBisect_Transition(t *testing.T) {
	t.Parallel()

	seg := geom.Box(2, 0, 2).Diag()

	got, steps, err := Bisect(context.Background(), outsideCircle(2), seg, testEps)
	require.NoError(t, err)

	assert.Positive(t, steps)
	assert.LessOrEqual(t, got.Norm(), testEps)
	assert.Less(t, got.Low.Norm(), 1.0)
	assert.GreaterOrEqual(t, got.High.Norm(), 1.0)
}

func TestBisect_Degenerate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	allTrue, _, err := Bisect(ctx, outsideCircle(2), geom.Box(2, 1, 2).Diag(), testEps)
	require.NoError(t, err)
	assert.Equal(t, geom.NewPoint(1, 1), allTrue.Low)
	assert.Equal(t, geom.NewPoint(1, 1), allTrue.High)

	allFalse, _, err := Bisect(ctx, outsideCircle(2), geom.Box(2, 0, 0.5).Diag(), testEps)
	require.NoError(t, err)
	assert.Equal(t, geom.NewPoint(0.5, 0.5), allFalse.Low)
	assert.Equal(t, geom.NewPoint(0.5, 0.5), allFalse.High)
}

func TestBisect_Errors(t *testing.T) {
	t.Parallel()

	seg := geom.Box(2, 0, 2).Diag()

	_, _, err := Bisect(context.Background(), outsideCircle(2), seg, 0)
	require.ErrorIs(t, err, ErrInvalidEpsilon)

	failing := oracle.FromFunc(2, func(context.Context, geom.Point) (bool, error) {
		return false, errBoom
	})

	_, _, err = Bisect(context.Background(), failing, seg, testEps)
	require.ErrorIs(t, err, errBoom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = Bisect(ctx, outsideCircle(2), seg, testEps)
	require.ErrorIs(t, err, context.Canceled)
}

// TestIntersection_Inter verifies that an expanded inside segment has both
// endpoints in the joint region and is centred between the two spheres.
func TestIntersection_Inter(t *testing.T) {
	t.Parallel()

	up := oracle.FromPredicate(3, func(p geom.Point) bool {
		return p.Sub(geom.Fill(3, 1)).Norm() < 1
	})
	down := oracle.FromPredicate(3, func(p geom.Point) bool {
		return p.Norm() < 1
	})

	seg := geom.Box(3, 0, 1).Diag()
	ctx := context.Background()

	res, err := IntersectionExpansionSearch(ctx, up, down, seg, testEps, true)
	require.NoError(t, err)
	require.Equal(t, Inter, res.Outcome)

	for _, p := range []geom.Point{res.In.Low, res.In.High} {
		assert.True(t, mustMember(t, up, p), "up fails at %s", p)
		assert.True(t, mustMember(t, down, p), "down fails at %s", p)
	}

	mid := res.In.Mid()
	for _, v := range mid {
		assert.InDelta(t, 0.5, v, 0.1)
	}

	assert.Greater(t, res.In.Norm(), 0.2)

	plain, err := IntersectionExpansionSearch(ctx, up, down, seg, testEps, false)
	require.NoError(t, err)
	require.Equal(t, Inter, plain.Outcome)
	assert.True(t, plain.In.Degenerate())
}

func TestIntersection_NoInter(t *testing.T) {
	t.Parallel()

	up := sumAbove(2, 1.4, true)
	down := sumBelow(2, 0.6)

	res, err := IntersectionExpansionSearch(context.Background(), up, down, geom.Box(2, 0, 1).Diag(), testEps, true)
	require.NoError(t, err)
	require.Equal(t, NoInter, res.Outcome)

	mid := res.Cover.Mid()
	assert.False(t, mustMember(t, up, mid))
	assert.False(t, mustMember(t, down, mid))

	assert.InDelta(t, 0.3, res.Cover.Low[0], 1e-4)
	assert.InDelta(t, 0.7, res.Cover.High[0], 1e-4)
}

func TestIntersection_Straddle(t *testing.T) {
	t.Parallel()

	up := sumAbove(2, 1, false)
	down := sumBelow(2, 1)

	res, err := IntersectionExpansionSearch(context.Background(), up, down, geom.Box(2, 0, 1).Diag(), 1e-3, true)
	require.NoError(t, err)
	require.Equal(t, Straddle, res.Outcome)

	assert.False(t, mustMember(t, up, res.Cover.Low))
	assert.False(t, mustMember(t, down, res.Cover.High))
	assert.LessOrEqual(t, res.Cover.Norm(), 1e-3)
}

func TestIntersection_FullAndNull(t *testing.T) {
	t.Parallel()

	always := oracle.FromPredicate(2, func(geom.Point) bool { return true })
	never := oracle.FromPredicate(2, func(geom.Point) bool { return false })
	seg := geom.Box(2, 0, 1).Diag()
	ctx := context.Background()

	res, err := IntersectionExpansionSearch(ctx, always, always, seg, testEps, true)
	require.NoError(t, err)
	assert.Equal(t, InterFull, res.Outcome)

	res, err = IntersectionExpansionSearch(ctx, never, always, seg, testEps, true)
	require.NoError(t, err)
	assert.Equal(t, InterNull, res.Outcome)

	res, err = IntersectionExpansionSearch(ctx, always, never, seg, testEps, true)
	require.NoError(t, err)
	assert.Equal(t, InterNull, res.Outcome)
}

func TestIntersection_InterAtCorner(t *testing.T) {
	t.Parallel()

	up := sumAbove(2, 0, false)
	down := sumBelow(2, 1)

	res, err := IntersectionExpansionSearch(context.Background(), up, down, geom.Box(2, 0, 1).Diag(), testEps, true)
	require.NoError(t, err)
	require.Equal(t, Inter, res.Outcome)
	assert.Equal(t, geom.NewPoint(0, 0), res.In.Low)
	assert.InDelta(t, 0.5, res.In.High[0], 1e-4)

	plain, err := IntersectionExpansionSearch(context.Background(), up, down, geom.Box(2, 0, 1).Diag(), testEps, false)
	require.NoError(t, err)
	assert.False(t, plain.In.Degenerate())
}

func TestIntersection_OracleFailure(t *testing.T) {
	t.Parallel()

	failing := oracle.FromFunc(2, func(context.Context, geom.Point) (bool, error) {
		return false, errBoom
	})

	_, err := IntersectionExpansionSearch(context.Background(), failing, sumBelow(2, 1), geom.Box(2, 0, 1).Diag(), testEps, true)
	require.ErrorIs(t, err, errBoom)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INTER", Inter.String())
	assert.Equal(t, "NO_INTER", NoInter.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}

func mustMember(t *testing.T, o oracle.Oracle, p geom.Point) bool {
	t.Helper()

	ok, err := o.Member(context.Background(), p)
	require.NoError(t, err)

	return ok
}
