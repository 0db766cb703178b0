package geom

import (
	"math"
	"math/rand/v2"
)

// rootTolerance absorbs floating error when taking the n-th root of a cell count,
// so that 25^(1/2) rounds up to 5 rather than 6.
const rootTolerance = 1e-9

// DiagonalPoints returns m evenly spaced points strictly inside the main
// diagonal; the corners themselves are excluded.
func (r *Rectangle) DiagonalPoints(m int) []Point {
	if m <= 0 {
		return nil
	}

	diag := r.Diag()
	points := make([]Point, m)

	for i := range m {
		points[i] = diag.At(float64(i+1) / float64(m+1))
	}

	return points
}

// CellsPerAxis returns ceil(k^(1/n)), the number of grid divisions per axis
// needed for at least k cells in n dimensions.
func CellsPerAxis(k, n int) int {
	if k <= 1 || n <= 0 {
		return 1
	}

	return int(math.Ceil(math.Pow(float64(k), 1/float64(n)) - rootTolerance))
}

// CellPartition splits r into ceil(k^(1/n))^n equal sub-boxes on a regular grid.
func (r *Rectangle) CellPartition(k int) []*Rectangle {
	return r.Grid(CellsPerAxis(k, r.Dim()))
}

// Grid splits r into divisions^n equal sub-boxes.
func (r *Rectangle) Grid(divisions int) []*Rectangle {
	n := r.Dim()
	if divisions < 1 {
		divisions = 1
	}

	total := 1
	for range n {
		total *= divisions
	}

	width := r.DiagVector()
	cells := make([]*Rectangle, 0, total)
	idx := make([]int, n)

	for range total {
		lo := make(Point, n)
		hi := make(Point, n)

		for i := range n {
			step := width[i] / float64(divisions)
			lo[i] = Round(r.min[i] + step*float64(idx[i]))

			if idx[i] == divisions-1 {
				hi[i] = r.max[i]
			} else {
				hi[i] = Round(r.min[i] + step*float64(idx[i]+1))
			}
		}

		cells = append(cells, NewRectangle(lo, hi))

		for k := n - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < divisions {
				break
			}

			idx[k] = 0
		}
	}

	return cells
}

// CellPartitionBin splits r into the 2^n octants around its center.
func (r *Rectangle) CellPartitionBin() []*Rectangle {
	center := r.Center()
	verts := r.Vertices()
	cells := make([]*Rectangle, len(verts))

	for k, v := range verts {
		cells[k] = NewRectangle(v.Min(center), v.Max(center))
	}

	return cells
}

// UniformSampling draws m points independently and uniformly from the open box.
func (r *Rectangle) UniformSampling(m int, rng *rand.Rand) []Point {
	points := make([]Point, m)
	for i := range points {
		points[i] = r.Sample(rng)
	}

	return points
}

// Sample draws one point uniformly from the open box.
func (r *Rectangle) Sample(rng *rand.Rand) Point {
	p := make(Point, r.Dim())

	for i := range p {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}

		p[i] = r.min[i] + u*(r.max[i]-r.min[i])
	}

	return p
}

// DiagonalSampling draws m points uniformly along the main diagonal.
func (r *Rectangle) DiagonalSampling(m int, rng *rand.Rand) []Point {
	diag := r.Diag()
	points := make([]Point, m)

	for i := range points {
		points[i] = diag.At(rng.Float64())
	}

	return points
}
