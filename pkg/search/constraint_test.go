package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// halfPlane is x + y <= 1.
var halfPlane = Constraints{{Coeffs: []float64{1, 1}, Bound: 1}}

func TestConstraints_Feasibility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cell     *geom.Rectangle
		feasible bool
		contains bool
	}{
		{"inside", geom.Box(2, 0, 0.4), true, true},
		{"straddling", geom.Box(2, 0, 1), true, false},
		{"outside", geom.Box(2, 0.6, 1), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.feasible, halfPlane.Feasible(tt.cell))
			assert.Equal(t, tt.contains, halfPlane.Contains(tt.cell))
		})
	}
}

func TestConstraints_NegativeCoefficients(t *testing.T) {
	t.Parallel()

	// x - y <= 0: the upper-left triangle.
	cs := Constraints{{Coeffs: []float64{1, -1}, Bound: 0}}

	assert.True(t, cs.Feasible(geom.Box(2, 0, 1)))
	assert.False(t, cs.Contains(geom.Box(2, 0, 1)))
	assert.True(t, cs.Contains(geom.NewRectangle(geom.NewPoint(0, 0.5), geom.NewPoint(0.5, 1))))
	assert.False(t, cs.Feasible(geom.NewRectangle(geom.NewPoint(0.6, 0), geom.NewPoint(1, 0.4))))
	assert.True(t, cs.Satisfied(geom.NewPoint(0.2, 0.3)))
	assert.False(t, cs.Satisfied(geom.NewPoint(0.3, 0.2)))
}

func TestConstraints_Restrict(t *testing.T) {
	t.Parallel()

	seg := geom.Box(2, 0, 1).Diag()

	got, ok := halfPlane.Restrict(seg)
	require.True(t, ok)
	assert.Equal(t, geom.NewPoint(0, 0), got.Low)
	assert.Equal(t, geom.NewPoint(0.5, 0.5), got.High)

	lower := Constraints{{Coeffs: []float64{-1, -1}, Bound: -1}}

	got, ok = lower.Restrict(seg)
	require.True(t, ok)
	assert.Equal(t, geom.NewPoint(0.5, 0.5), got.Low)
	assert.Equal(t, geom.NewPoint(1, 1), got.High)

	_, ok = append(halfPlane, lower...).Restrict(seg)
	assert.False(t, ok, "single feasible point")

	got, ok = Constraints(nil).Restrict(seg)
	require.True(t, ok)
	assert.Equal(t, seg, got)

	flat := Constraints{{Coeffs: []float64{1, -1}, Bound: -1}}
	_, ok = flat.Restrict(seg)
	assert.False(t, ok, "diagonal parallel to an excluding boundary")
}

func TestConstraints_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, halfPlane.Validate(2))
	require.ErrorIs(t, halfPlane.Validate(3), ErrConstraintDim)
}
