package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_Order(t *testing.T) {
	t.Parallel()

	a := NewPoint(0, 1)
	b := NewPoint(1, 1)
	c := NewPoint(1, 0)

	assert.True(t, a.LessEq(b))
	assert.False(t, a.Less(b))
	assert.True(t, NewPoint(0, 0).Less(b))
	assert.True(t, b.GreaterEq(a))
	assert.True(t, b.Greater(NewPoint(0, 0)))
	assert.True(t, a.Incomparable(c))
	assert.False(t, a.Incomparable(b))
}

func TestPoint_Arithmetic(t *testing.T) {
	t.Parallel()

	p := NewPoint(1, 2, 3)
	q := NewPoint(3, 2, 1)

	assert.Equal(t, NewPoint(4, 4, 4), p.Add(q))
	assert.Equal(t, NewPoint(-2, 0, 2), p.Sub(q))
	assert.Equal(t, NewPoint(3, 4, 3), p.Mul(q))
	assert.Equal(t, NewPoint(2, 2, 2), p.Mid(q))
	assert.Equal(t, NewPoint(1, 2, 1), p.Min(q))
	assert.Equal(t, NewPoint(3, 2, 3), p.Max(q))
	assert.Equal(t, NewPoint(2, 4, 6), p.Scale(2))

	assert.InDelta(t, math.Sqrt(8), p.Distance(q), 1e-12)
	assert.InDelta(t, 4.0, p.Hamming(q), 1e-12)
	assert.InDelta(t, math.Sqrt(14), p.Norm(), 1e-12)
}

func TestPoint_DoesNotAlias(t *testing.T) {
	t.Parallel()

	coords := []float64{1, 2}
	p := NewPoint(coords...)
	coords[0] = 9

	assert.Equal(t, NewPoint(1, 2), p)

	c := p.Clone()
	c[1] = 7
	assert.Equal(t, NewPoint(1, 2), p)
}

func TestPoint_StringAndKey(t *testing.T) {
	t.Parallel()

	p := NewPoint(0.5, -1, 2)

	assert.Equal(t, "(0.5, -1, 2)", p.String())
	assert.Equal(t, "0.5,-1,2", p.Key())
}

func TestPoint_DimensionMismatchPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPoint(1).Add(NewPoint(1, 2)) })
}

func TestBitTuple(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{0, 1, 0, 1}, BitTuple(5, 4))
	assert.Equal(t, []int{0, 0}, BitTuple(0, 2))
	assert.Equal(t, []int{1, 1, 1}, BitTuple(7, 3))
}

func TestSegment(t *testing.T) {
	t.Parallel()

	s := NewSegment(NewPoint(0, 0), NewPoint(2, 4))

	assert.Equal(t, NewPoint(1, 2), s.Mid())
	assert.Equal(t, NewPoint(2, 4), s.Diag())
	assert.Equal(t, NewPoint(0.5, 1), s.At(0.25))
	assert.InDelta(t, math.Sqrt(20), s.Norm(), 1e-12)
	assert.False(t, s.Degenerate())
	assert.True(t, NewSegment(NewPoint(1, 1), NewPoint(1, 1)).Degenerate())
}

// TestRound verifies decimal rounding. It mutates the process-wide precision
// and therefore does not run in parallel.
//
//nolint:paralleltest // mutates global precision.
func TestRound(t *testing.T) {
	old := Precision()
	defer SetPrecision(old)

	SetPrecision(2)
	assert.InDelta(t, 0.33, Round(1.0/3), 1e-15)
	assert.Equal(t, NewPoint(0.67), NewPoint(1.0/3).Add(NewPoint(1.0/3)))

	SetPrecision(-5)
	assert.Equal(t, noRounding, Precision())
	assert.InDelta(t, 1.0/3, Round(1.0/3), 1e-15)
}
