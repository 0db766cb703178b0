package geom

import (
	"errors"
	"iter"
)

// ErrMalformedRectangle is returned when decoding a rectangle whose corners
// have different dimensions.
var ErrMalformedRectangle = errors.New("malformed rectangle")

// interval is a closed 1-D range used while splitting a box along one axis.
type interval struct {
	lo, hi float64
}

// Difference yields the sub-boxes of r ∖ interior(o). Along every axis r's
// interval is split at the crossings of o's interval; the Cartesian product
// of the per-axis pieces is emitted except for the piece equal to r ∩ o.
// At most 3^n-1 boxes are produced and no two of them overlap. When r and o
// do not overlap the only box yielded is r itself.
func (r *Rectangle) Difference(o *Rectangle) iter.Seq[*Rectangle] {
	return func(yield func(*Rectangle) bool) {
		if !r.Overlaps(o) {
			yield(r)

			return
		}

		inter := r.Intersection(o)
		axes := make([][]interval, r.Dim())

		for i := range axes {
			axes[i] = splitAxis(r.min[i], r.max[i], o.min[i], o.max[i])
		}

		for combo := range product(axes) {
			lo := make(Point, len(combo))
			hi := make(Point, len(combo))

			for i, iv := range combo {
				lo[i] = iv.lo
				hi[i] = iv.hi
			}

			if lo.Equal(inter.min) && hi.Equal(inter.max) {
				continue
			}

			if !yield(NewRectangle(lo, hi)) {
				return
			}
		}
	}
}

// DifferenceList materializes Difference into a slice.
func (r *Rectangle) DifferenceList(o *Rectangle) []*Rectangle {
	var out []*Rectangle

	for sub := range r.Difference(o) {
		out = append(out, sub)
	}

	return out
}

// MinimalSetDifference returns Fusion(r ∖ o): the difference with every
// concatenable pair merged.
func (r *Rectangle) MinimalSetDifference(o *Rectangle) []*Rectangle {
	return Fusion(r.DifferenceList(o))
}

// splitAxis cuts [a, b] at the points of [c, d] that fall strictly inside it.
func splitAxis(a, b, c, d float64) []interval {
	cuts := []float64{a}

	if c > a && c < b {
		cuts = append(cuts, c)
	}

	if d > a && d < b && d != c {
		cuts = append(cuts, d)
	}

	cuts = append(cuts, b)

	if a == b {
		return []interval{{lo: a, hi: b}}
	}

	out := make([]interval, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		out = append(out, interval{lo: cuts[i], hi: cuts[i+1]})
	}

	return out
}

// product yields every element of the Cartesian product of axes.
func product(axes [][]interval) iter.Seq[[]interval] {
	return func(yield func([]interval) bool) {
		n := len(axes)
		idx := make([]int, n)

		for {
			combo := make([]interval, n)
			for i := range axes {
				combo[i] = axes[i][idx[i]]
			}

			if !yield(combo) {
				return
			}

			k := n - 1
			for k >= 0 {
				idx[k]++
				if idx[k] < len(axes[k]) {
					break
				}

				idx[k] = 0
				k--
			}

			if k < 0 {
				return
			}
		}
	}
}

// Concatenable reports whether r and o share a full (n-1)-dimensional face:
// they do not overlap, they coincide on every axis but one, and on that axis
// one box ends exactly where the other starts. Boxes touching only along a
// lower-dimensional edge, or sharing a face of zero volume, are not
// concatenable.
func (r *Rectangle) Concatenable(o *Rectangle) bool {
	if r.Dim() != o.Dim() || r.Overlaps(o) {
		return false
	}

	axis := -1

	for i := range r.min {
		if r.min[i] == o.min[i] && r.max[i] == o.max[i] {
			continue
		}

		if axis >= 0 {
			return false
		}

		if r.max[i] != o.min[i] && o.max[i] != r.min[i] {
			return false
		}

		axis = i
	}

	if axis < 0 {
		return false
	}

	for i := range r.min {
		if i != axis && r.max[i] <= r.min[i] {
			return false
		}
	}

	return true
}

// Concatenate returns the bounding box of two concatenable rectangles.
func (r *Rectangle) Concatenate(o *Rectangle) *Rectangle {
	return NewRectangle(r.min.Min(o.min), r.max.Max(o.max))
}

// Fusion repeatedly merges concatenable pairs in rects until none remain.
// The input slice is not modified.
func Fusion(rects []*Rectangle) []*Rectangle {
	out := make([]*Rectangle, len(rects))
	copy(out, rects)

	for merged := true; merged; {
		merged = false

		for i := 0; i < len(out) && !merged; i++ {
			for j := i + 1; j < len(out); j++ {
				if !out[i].Concatenable(out[j]) {
					continue
				}

				out[i] = out[i].Concatenate(out[j])
				out = append(out[:j], out[j+1:]...)
				merged = true

				break
			}
		}
	}

	return out
}

// TotalVolume sums the volumes of rects.
func TotalVolume(rects []*Rectangle) float64 {
	var total float64

	for _, r := range rects {
		total += r.Volume()
	}

	return total
}

// OverlappingVolume sums the pairwise overlap volumes within rects.
func OverlappingVolume(rects []*Rectangle) float64 {
	var total float64

	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			total += rects[i].OverlapVolume(rects[j])
		}
	}

	return total
}
