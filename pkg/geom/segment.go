package geom

import "fmt"

// Segment is a pair of points with Low <= High in the product order.
// It models the main diagonal of a rectangle and the transition brackets
// returned by the diagonal searches.
type Segment struct {
	Low  Point
	High Point
}

// NewSegment returns the segment (low, high).
func NewSegment(low, high Point) Segment {
	mustSameDim(len(low), len(high))

	return Segment{Low: low, High: high}
}

// Dim returns the dimension of the segment endpoints.
func (s Segment) Dim() int {
	return len(s.Low)
}

// Mid returns the midpoint of the segment.
func (s Segment) Mid() Point {
	return s.Low.Mid(s.High)
}

// Diag returns High - Low.
func (s Segment) Diag() Point {
	return s.High.Sub(s.Low)
}

// Norm returns the Euclidean length of the segment.
func (s Segment) Norm() float64 {
	return s.Low.Distance(s.High)
}

// Degenerate reports whether both endpoints coincide.
func (s Segment) Degenerate() bool {
	return s.Low.Equal(s.High)
}

// At returns Low + t*(High-Low).
func (s Segment) At(t float64) Point {
	return s.Low.Add(s.Diag().Scale(t))
}

// String formats the segment as "<low, high>".
func (s Segment) String() string {
	return fmt.Sprintf("<%s, %s>", s.Low, s.High)
}
