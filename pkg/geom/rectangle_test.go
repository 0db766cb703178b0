package geom

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeDelta = 1e-12

func unitCube(n int) *Rectangle {
	return Box(n, 0, 1)
}

func TestRectangle_VolumeAndVertices(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(0, 1, 2), NewPoint(2, 4, 3))

	assert.InDelta(t, 6.0, r.Volume(), volumeDelta)

	verts := r.Vertices()
	require.Len(t, verts, 8)

	for _, v := range verts {
		assert.True(t, r.ContainsClosed(v), "vertex %s outside %s", v, r)
	}

	assert.Equal(t, r.Min(), verts[0])
	assert.Equal(t, r.Max(), verts[len(verts)-1])
}

func TestRectangle_ZeroWidthVolume(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(0, 1), NewPoint(2, 1))
	assert.Zero(t, r.Volume())
}

func TestRectangle_IncomparableCornersAllowed(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(0, 1), NewPoint(1, 0))
	assert.Zero(t, r.Volume())
}

func TestRectangle_ReversedCornersPanic(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewRectangle(NewPoint(1, 1), NewPoint(0, 0)) })
	assert.Panics(t, func() { NewRectangle(NewPoint(0, 0), NewPoint(1, 1, 1)) })
}

func TestRectangle_SetCornerInvalidatesCache(t *testing.T) {
	t.Parallel()

	r := unitCube(2)
	assert.InDelta(t, 1.0, r.Volume(), volumeDelta)
	require.Len(t, r.Vertices(), 4)

	r.SetMax(NewPoint(2, 3))
	assert.InDelta(t, 6.0, r.Volume(), volumeDelta)
	assert.Equal(t, NewPoint(2, 3), r.Vertices()[3])

	r.SetMin(NewPoint(1, 1))
	assert.InDelta(t, 2.0, r.Volume(), volumeDelta)
}

func TestRectangle_Containment(t *testing.T) {
	t.Parallel()

	r := unitCube(2)

	assert.True(t, r.ContainsOpen(NewPoint(0.5, 0.5)))
	assert.False(t, r.ContainsOpen(NewPoint(0, 0.5)))
	assert.True(t, r.ContainsClosed(NewPoint(0, 0.5)))
	assert.False(t, r.ContainsClosed(NewPoint(1.5, 0.5)))
}

func TestRectangle_Overlaps(t *testing.T) {
	t.Parallel()

	a := unitCube(2)

	tests := []struct {
		name string
		o    *Rectangle
		want bool
	}{
		{"inside", NewRectangle(NewPoint(0.2, 0.2), NewPoint(0.4, 0.4)), true},
		{"partial", NewRectangle(NewPoint(0.5, 0.5), NewPoint(2, 2)), true},
		{"shared face", NewRectangle(NewPoint(1, 0), NewPoint(2, 1)), false},
		{"shared corner", NewRectangle(NewPoint(1, 1), NewPoint(2, 2)), false},
		{"disjoint", NewRectangle(NewPoint(3, 3), NewPoint(4, 4)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, a.Overlaps(tt.o))
			assert.Equal(t, tt.want, tt.o.Overlaps(a))
		})
	}
}

func TestRectangle_IntersectionFallsBackToSelf(t *testing.T) {
	t.Parallel()

	a := unitCube(2)
	b := NewRectangle(NewPoint(0.5, 0.5), NewPoint(2, 2))
	c := NewRectangle(NewPoint(3, 3), NewPoint(4, 4))

	inter := a.Intersection(b)
	assert.Equal(t, NewPoint(0.5, 0.5), inter.Min())
	assert.Equal(t, NewPoint(1, 1), inter.Max())

	assert.Same(t, a, a.Intersection(c))
}

func TestRectangle_Difference3D(t *testing.T) {
	t.Parallel()

	r1 := unitCube(3)
	r2 := Box(3, 0.5, 2)

	diff := r1.DifferenceList(r2)
	require.Len(t, diff, 7)

	for i := range diff {
		for j := i + 1; j < len(diff); j++ {
			assert.False(t, diff[i].Overlaps(diff[j]), "%s overlaps %s", diff[i], diff[j])
		}
	}

	assert.InDelta(t, 0.875, TotalVolume(diff), volumeDelta)

	fused := r1.MinimalSetDifference(r2)
	assert.LessOrEqual(t, len(fused), 3)
	assert.InDelta(t, 0.875, TotalVolume(fused), volumeDelta)
	assert.Zero(t, OverlappingVolume(fused))
}

func TestRectangle_DifferenceVolumeProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	for range 200 {
		n := 1 + rng.IntN(3)
		r1 := randomBox(rng, n)
		r2 := randomBox(rng, n)

		diff := r1.DifferenceList(r2)
		assert.LessOrEqual(t, len(diff), pow3(n)-1)
		assert.Zero(t, OverlappingVolume(diff))

		want := r1.Volume() - r1.OverlapVolume(r2)
		assert.InDelta(t, want, TotalVolume(diff), 1e-9)

		for _, sub := range diff {
			assert.False(t, sub.Overlaps(r2))
			assert.True(t, r1.Includes(sub))
		}

		assert.LessOrEqual(t, len(Fusion(diff)), pow3(n)-1)
	}
}

func TestRectangle_DifferenceDisjoint(t *testing.T) {
	t.Parallel()

	a := unitCube(2)
	b := Box(2, 2, 3)

	diff := a.DifferenceList(b)
	require.Len(t, diff, 1)
	assert.Same(t, a, diff[0])
}

func TestRectangle_Concatenable(t *testing.T) {
	t.Parallel()

	a := unitCube(2)

	assert.True(t, a.Concatenable(NewRectangle(NewPoint(1, 0), NewPoint(2, 1))))
	assert.False(t, a.Concatenable(NewRectangle(NewPoint(1, 0), NewPoint(2, 2))), "face mismatch")
	assert.False(t, a.Concatenable(NewRectangle(NewPoint(1, 1), NewPoint(2, 2))), "corner only")
	assert.False(t, a.Concatenable(NewRectangle(NewPoint(0.5, 0), NewPoint(2, 1))), "overlap")

	merged := a.Concatenate(NewRectangle(NewPoint(1, 0), NewPoint(2, 1)))
	assert.Equal(t, NewPoint(2, 1), merged.Max())
}

func TestFusion_GridCollapses(t *testing.T) {
	t.Parallel()

	cells := unitCube(2).CellPartition(16)
	require.Len(t, cells, 16)

	fused := Fusion(cells)
	require.Len(t, fused, 1)
	assert.True(t, fused[0].Equal(unitCube(2)))
}

func TestRectangle_CellPartition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, CellsPerAxis(25, 2))
	assert.Equal(t, 3, CellsPerAxis(27, 3))
	assert.Equal(t, 4, CellsPerAxis(10, 2))

	cells := unitCube(2).CellPartition(25)
	require.Len(t, cells, 25)
	assert.InDelta(t, 1.0, TotalVolume(cells), 1e-9)
	assert.Zero(t, OverlappingVolume(cells))
}

func TestRectangle_CellPartitionBin(t *testing.T) {
	t.Parallel()

	cells := Box(3, 0, 2).CellPartitionBin()
	require.Len(t, cells, 8)

	for _, c := range cells {
		assert.InDelta(t, 1.0, c.Volume(), volumeDelta)
	}

	assert.Zero(t, OverlappingVolume(cells))
}

func TestRectangle_DiagonalPoints(t *testing.T) {
	t.Parallel()

	points := unitCube(2).DiagonalPoints(3)
	require.Len(t, points, 3)
	assert.Equal(t, NewPoint(0.25, 0.25), points[0])
	assert.Equal(t, NewPoint(0.75, 0.75), points[2])
}

func TestRectangle_UniformSampling(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(-1, 2), NewPoint(1, 5))
	rng := rand.New(rand.NewPCG(7, 7))

	for _, p := range r.UniformSampling(500, rng) {
		assert.True(t, r.ContainsOpen(p), "%s outside %s", p, r)
	}
}

func TestRectangle_DiagonalSampling(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(-1, 2, 0), NewPoint(1, 5, 4))
	span := r.DiagVector()

	points := r.DiagonalSampling(200, rand.New(rand.NewPCG(3, 5)))
	require.Len(t, points, 200)

	for _, p := range points {
		assert.True(t, r.ContainsClosed(p), "%s outside %s", p, r)

		// Every coordinate sits at the same fraction of its axis.
		frac := (p[0] - r.Min()[0]) / span[0]
		for i := 1; i < p.Dim(); i++ {
			assert.InDelta(t, frac, (p[i]-r.Min()[i])/span[i], 1e-9, "%s off the diagonal", p)
		}
	}

	again := r.DiagonalSampling(200, rand.New(rand.NewPCG(3, 5)))
	assert.Equal(t, points, again)
	assert.Empty(t, r.DiagonalSampling(0, rand.New(rand.NewPCG(3, 5))))
}

func TestRectangle_GobRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRectangle(NewPoint(0, 1), NewPoint(2, 3))

	data, err := r.GobEncode()
	require.NoError(t, err)

	var back Rectangle
	require.NoError(t, back.GobDecode(data))
	assert.True(t, r.Equal(&back))
	assert.InDelta(t, 4.0, back.Volume(), volumeDelta)
}

func randomBox(rng *rand.Rand, n int) *Rectangle {
	lo := make(Point, n)
	hi := make(Point, n)

	for i := range n {
		a := float64(rng.IntN(8)) / 4
		b := float64(rng.IntN(8)) / 4

		if a > b {
			a, b = b, a
		}

		if a == b {
			b += 0.25
		}

		lo[i], hi[i] = a, b
	}

	return NewRectangle(lo, hi)
}

func pow3(n int) int {
	p := 1
	for range n {
		p *= 3
	}

	return p
}
