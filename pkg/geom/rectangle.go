package geom

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Rectangle is an axis-aligned box [Min, Max].
//
// The corners are either ordered (Min <= Max) or mutually incomparable, in
// which case the box has an empty interior and zero volume. Volume and
// vertices are computed lazily and cached; SetMin and SetMax invalidate the
// cache. Rectangles stored in a result set are never mutated again, so they
// can be shared between goroutines for reading.
type Rectangle struct {
	min Point
	max Point

	volume   atomic.Pointer[float64]
	vertices atomic.Pointer[[]Point]
}

// NewRectangle returns the box [minCorner, maxCorner].
// It panics when the corners differ in dimension or are strictly reversed.
func NewRectangle(minCorner, maxCorner Point) *Rectangle {
	mustValidCorners(minCorner, maxCorner)

	return &Rectangle{min: minCorner, max: maxCorner}
}

// Box returns the n-dimensional box [lo, hi]^n.
func Box(n int, lo, hi float64) *Rectangle {
	return NewRectangle(Fill(n, lo), Fill(n, hi))
}

// RectangleFromSegment returns the box spanned by the endpoints of s.
func RectangleFromSegment(s Segment) *Rectangle {
	return NewRectangle(s.Low, s.High)
}

// Min returns the minimal corner.
func (r *Rectangle) Min() Point {
	return r.min
}

// Max returns the maximal corner.
func (r *Rectangle) Max() Point {
	return r.max
}

// SetMin replaces the minimal corner and invalidates cached properties.
func (r *Rectangle) SetMin(p Point) {
	mustValidCorners(p, r.max)

	r.min = p
	r.invalidate()
}

// SetMax replaces the maximal corner and invalidates cached properties.
func (r *Rectangle) SetMax(p Point) {
	mustValidCorners(r.min, p)

	r.max = p
	r.invalidate()
}

// Dim returns the dimension of the box.
func (r *Rectangle) Dim() int {
	return len(r.min)
}

// Clone returns an independent copy of r.
func (r *Rectangle) Clone() *Rectangle {
	return NewRectangle(r.min.Clone(), r.max.Clone())
}

// Equal reports whether both corners coincide.
func (r *Rectangle) Equal(o *Rectangle) bool {
	return r.min.Equal(o.min) && r.max.Equal(o.max)
}

// Diag returns the main diagonal (Min, Max).
func (r *Rectangle) Diag() Segment {
	return Segment{Low: r.min, High: r.max}
}

// DiagNorm returns the Euclidean length of the main diagonal.
func (r *Rectangle) DiagNorm() float64 {
	return r.min.Distance(r.max)
}

// DiagVector returns Max - Min.
func (r *Rectangle) DiagVector() Point {
	return r.max.Sub(r.min)
}

// Center returns the midpoint of the main diagonal.
func (r *Rectangle) Center() Point {
	return r.min.Mid(r.max)
}

// Volume returns the product of the side lengths. Sides of zero or negative
// width collapse the volume to zero.
func (r *Rectangle) Volume() float64 {
	if v := r.volume.Load(); v != nil {
		return *v
	}

	vol := 1.0

	for i := range r.min {
		side := r.max[i] - r.min[i]
		if side <= 0 {
			vol = 0

			break
		}

		vol *= side
	}

	r.volume.Store(&vol)

	return vol
}

// Vertices returns the 2^n corners of the box. Vertex k takes coordinate i
// from Max when bit i of BitTuple(k, n) is set and from Min otherwise.
func (r *Rectangle) Vertices() []Point {
	if v := r.vertices.Load(); v != nil {
		return *v
	}

	n := r.Dim()
	count := 1 << n
	verts := make([]Point, count)

	for k := range count {
		bits := BitTuple(k, n)
		v := make(Point, n)

		for i, b := range bits {
			if b == 0 {
				v[i] = r.min[i]
			} else {
				v[i] = r.max[i]
			}
		}

		verts[k] = v
	}

	r.vertices.Store(&verts)

	return verts
}

// ContainsOpen reports Min < p < Max.
func (r *Rectangle) ContainsOpen(p Point) bool {
	return r.min.Less(p) && p.Less(r.max)
}

// ContainsClosed reports Min <= p <= Max.
func (r *Rectangle) ContainsClosed(p Point) bool {
	return r.min.LessEq(p) && p.LessEq(r.max)
}

// Includes reports whether the closure of o lies inside the closure of r.
func (r *Rectangle) Includes(o *Rectangle) bool {
	return r.min.LessEq(o.min) && o.max.LessEq(r.max)
}

// Overlaps reports whether the interiors of r and o intersect.
// Boxes that only share a face do not overlap.
func (r *Rectangle) Overlaps(o *Rectangle) bool {
	mustSameDim(r.Dim(), o.Dim())

	return r.min.Max(o.min).Less(r.max.Min(o.max))
}

// Intersection returns r ∩ o when the boxes overlap, and r otherwise.
func (r *Rectangle) Intersection(o *Rectangle) *Rectangle {
	if !r.Overlaps(o) {
		return r
	}

	return NewRectangle(r.min.Max(o.min), r.max.Min(o.max))
}

// OverlapVolume returns the volume of r ∩ o, or zero when they do not overlap.
func (r *Rectangle) OverlapVolume(o *Rectangle) float64 {
	if !r.Overlaps(o) {
		return 0
	}

	return r.Intersection(o).Volume()
}

// String formats the box as "[min, max]".
func (r *Rectangle) String() string {
	return fmt.Sprintf("[%s, %s]", r.min, r.max)
}

// rectangleWire is the serialized form of a Rectangle.
type rectangleWire struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// GobEncode implements gob.GobEncoder.
func (r *Rectangle) GobEncode() ([]byte, error) {
	var buf bytes.Buffer

	err := gob.NewEncoder(&buf).Encode(rectangleWire{Min: r.min, Max: r.max})
	if err != nil {
		return nil, fmt.Errorf("encode rectangle: %w", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *Rectangle) GobDecode(data []byte) error {
	var w rectangleWire

	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w)
	if err != nil {
		return fmt.Errorf("decode rectangle: %w", err)
	}

	return r.restore(w)
}

// MarshalJSON implements json.Marshaler.
func (r *Rectangle) MarshalJSON() ([]byte, error) {
	return json.Marshal(rectangleWire{Min: r.min, Max: r.max})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rectangle) UnmarshalJSON(data []byte) error {
	var w rectangleWire

	err := json.Unmarshal(data, &w)
	if err != nil {
		return fmt.Errorf("decode rectangle: %w", err)
	}

	return r.restore(w)
}

func (r *Rectangle) restore(w rectangleWire) error {
	if len(w.Min) != len(w.Max) {
		return fmt.Errorf("%w: corners of dimension %d and %d", ErrMalformedRectangle, len(w.Min), len(w.Max))
	}

	r.min = Point(w.Min)
	r.max = Point(w.Max)
	r.invalidate()

	return nil
}

func (r *Rectangle) invalidate() {
	r.volume.Store(nil)
	r.vertices.Store(nil)
}

func mustValidCorners(minCorner, maxCorner Point) {
	mustSameDim(len(minCorner), len(maxCorner))

	if maxCorner.LessEq(minCorner) && !maxCorner.Equal(minCorner) {
		panic(fmt.Sprintf("geom: reversed rectangle corners %s > %s", minCorner, maxCorner))
	}
}
