// Package geom provides the axis-aligned geometry used by the monotone
// partition learner: points under the product order, diagonal segments,
// rectangles with a set algebra (containment, overlap, intersection,
// difference, fusion), grid and octant partitions, sampling helpers and the
// cone index tables that drive the incomparable-cone split of a cell.
//
// Points are plain float64 slices treated as immutable values: every
// arithmetic helper allocates a fresh result. Results are rounded to the
// process-wide decimal precision configured with [SetPrecision].
package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// noRounding disables decimal rounding (full float64 precision).
const noRounding = -1

// precision holds the number of decimal digits kept by point arithmetic.
var precision atomic.Int64

func init() {
	precision.Store(noRounding)
}

// SetPrecision sets the number of decimal digits kept by point arithmetic.
// A negative value restores full float64 precision. The setting is process-wide.
func SetPrecision(digits int) {
	if digits < 0 {
		digits = noRounding
	}

	precision.Store(int64(digits))
}

// Precision returns the number of decimal digits kept by point arithmetic,
// or a negative value when no rounding is applied.
func Precision() int {
	return int(precision.Load())
}

// Round rounds v to the configured decimal precision.
func Round(v float64) float64 {
	digits := precision.Load()
	if digits < 0 {
		return v
	}

	scale := math.Pow(10, float64(digits))

	return math.Round(v*scale) / scale
}

// Point is an n-tuple of coordinates ordered componentwise.
type Point []float64

// NewPoint returns a point holding a copy of coords.
func NewPoint(coords ...float64) Point {
	p := make(Point, len(coords))
	copy(p, coords)

	return p
}

// Fill returns an n-dimensional point with every coordinate set to v.
func Fill(n int, v float64) Point {
	p := make(Point, n)
	for i := range p {
		p[i] = v
	}

	return p
}

// Dim returns the number of coordinates.
func (p Point) Dim() int {
	return len(p)
}

// Clone returns an independent copy of p.
func (p Point) Clone() Point {
	return NewPoint(p...)
}

// Add returns p + q componentwise.
func (p Point) Add(q Point) Point {
	return p.zip(q, func(a, b float64) float64 { return a + b })
}

// Sub returns p - q componentwise.
func (p Point) Sub(q Point) Point {
	return p.zip(q, func(a, b float64) float64 { return a - b })
}

// Mul returns p * q componentwise.
func (p Point) Mul(q Point) Point {
	return p.zip(q, func(a, b float64) float64 { return a * b })
}

// Div returns p / q componentwise.
func (p Point) Div(q Point) Point {
	return p.zip(q, func(a, b float64) float64 { return a / b })
}

// Scale returns p multiplied by the scalar s.
func (p Point) Scale(s float64) Point {
	out := make(Point, len(p))
	for i, v := range p {
		out[i] = Round(v * s)
	}

	return out
}

// Mid returns the midpoint (p+q)/2.
func (p Point) Mid(q Point) Point {
	return p.zip(q, func(a, b float64) float64 { return (a + b) / 2 })
}

// Min returns the componentwise minimum of p and q.
func (p Point) Min(q Point) Point {
	return p.zip(q, math.Min)
}

// Max returns the componentwise maximum of p and q.
func (p Point) Max(q Point) Point {
	return p.zip(q, math.Max)
}

// LessEq reports p <= q in the product order.
func (p Point) LessEq(q Point) bool {
	mustSameDim(len(p), len(q))

	for i := range p {
		if p[i] > q[i] {
			return false
		}
	}

	return true
}

// Less reports p < q strictly in every coordinate.
func (p Point) Less(q Point) bool {
	mustSameDim(len(p), len(q))

	for i := range p {
		if p[i] >= q[i] {
			return false
		}
	}

	return true
}

// GreaterEq reports p >= q in the product order.
func (p Point) GreaterEq(q Point) bool {
	return q.LessEq(p)
}

// Greater reports p > q strictly in every coordinate.
func (p Point) Greater(q Point) bool {
	return q.Less(p)
}

// Equal reports whether p and q have identical coordinates.
func (p Point) Equal(q Point) bool {
	return floats.Equal(p, q)
}

// Incomparable reports that neither p <= q nor q <= p holds.
func (p Point) Incomparable(q Point) bool {
	return !p.LessEq(q) && !q.LessEq(p)
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	mustSameDim(len(p), len(q))

	return floats.Distance(p, q, 2)
}

// Hamming returns the sum of absolute coordinate differences between p and q.
func (p Point) Hamming(q Point) float64 {
	mustSameDim(len(p), len(q))

	return floats.Distance(p, q, 1)
}

// Norm returns the Euclidean norm of p.
func (p Point) Norm() float64 {
	return floats.Norm(p, 2)
}

// Key returns a string that identifies the exact coordinates of p.
// Suitable as a map key.
func (p Point) Key() string {
	var sb strings.Builder

	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}

	return sb.String()
}

// String formats p as "(x1, x2, ...)".
func (p Point) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func (p Point) zip(q Point, op func(a, b float64) float64) Point {
	mustSameDim(len(p), len(q))

	out := make(Point, len(p))
	for i := range p {
		out[i] = Round(op(p[i], q[i]))
	}

	return out
}

// BitTuple returns the n least significant bits of i, most significant first.
// BitTuple(5, 4) is [0 1 0 1].
func BitTuple(i, n int) []int {
	bits := make([]int, n)

	for k := n - 1; k >= 0; k-- {
		bits[k] = i & 1
		i >>= 1
	}

	return bits
}

func mustSameDim(a, b int) {
	if a != b {
		panic(fmt.Sprintf("geom: dimension mismatch: %d != %d", a, b))
	}
}
