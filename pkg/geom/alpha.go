package geom

import (
	"slices"
	"sync"
)

// Cone symbols select, per axis, which slab of a cell a sub-box spans
// relative to a transition segment (yL, yH) inside it.
const (
	// Below selects [cell.Min, yL].
	Below = 0
	// Above selects [yH, cell.Max].
	Above = 1
	// Straddle selects [yL, yH].
	Straddle = 2
)

// Alpha is a cone index: one symbol per axis.
type Alpha []int

// tableKind names a cached alpha table.
type tableKind int

const (
	tableIncomp tableKind = iota
	tableIncompSegment
	tableIncompSegmentPos
	tableIncompSegmentNegUp
	tableIncompSegmentNegDown
)

type tableKey struct {
	kind tableKind
	n    int
}

var (
	tablesMu sync.Mutex
	tables   = map[tableKey][]Alpha{}
)

// Comp returns the two comparable cones: all-Below (dominated by yL) and
// all-Above (dominating yH).
func Comp(n int) []Alpha {
	return []Alpha{constAlpha(n, Below), constAlpha(n, Above)}
}

// Incomp returns the 3^n-2 cone indices that are neither all-Below nor
// all-Above. Their cones tile a cell minus the two comparable cones.
func Incomp(n int) []Alpha {
	return table(tableIncomp, n, func(a Alpha) bool {
		return !a.all(Below) && !a.all(Above)
	})
}

// IncompSegment returns the cone indices holding both a Below and an Above
// symbol. After a certified separating segment these cones remain undecided.
func IncompSegment(n int) []Alpha {
	return table(tableIncompSegment, n, func(a Alpha) bool {
		return a.has(Below) && a.has(Above)
	})
}

// IncompSegmentPos returns the 3^n-1 cone indices other than all-Straddle.
// After a certified inside segment these cones remain undecided.
func IncompSegmentPos(n int) []Alpha {
	return table(tableIncompSegmentPos, n, func(a Alpha) bool {
		return !a.all(Straddle)
	})
}

// IncompSegmentNegUp returns the cones made of Above and Straddle symbols with
// at least one Above: the part of [yL, cell.Max] outside [cell.Min, yH].
func IncompSegmentNegUp(n int) []Alpha {
	return table(tableIncompSegmentNegUp, n, func(a Alpha) bool {
		return !a.has(Below) && a.has(Above)
	})
}

// IncompSegmentNegDown returns the cones made of Below and Straddle symbols
// with at least one Below: the part of [cell.Min, yH] outside [yL, cell.Max].
func IncompSegmentNegDown(n int) []Alpha {
	return table(tableIncompSegmentNegDown, n, func(a Alpha) bool {
		return !a.has(Above) && a.has(Below)
	})
}

// Tuples enumerates {0,1,2}^n recursively, first axis slowest.
func Tuples(n int) []Alpha {
	if n == 0 {
		return []Alpha{{}}
	}

	tails := Tuples(n - 1)
	out := make([]Alpha, 0, 3*len(tails))

	for _, head := range []int{Below, Above, Straddle} {
		for _, tail := range tails {
			a := make(Alpha, 0, n)
			a = append(a, head)
			a = append(a, tail...)
			out = append(out, a)
		}
	}

	return out
}

// Cone returns the sub-box of cell selected by alpha relative to seg.
// seg must lie inside the closure of cell.
func Cone(alpha Alpha, cell *Rectangle, seg Segment) *Rectangle {
	n := cell.Dim()
	mustSameDim(n, len(alpha))

	lo := make(Point, n)
	hi := make(Point, n)

	for i, sym := range alpha {
		switch sym {
		case Below:
			lo[i], hi[i] = cell.min[i], seg.Low[i]
		case Above:
			lo[i], hi[i] = seg.High[i], cell.max[i]
		default:
			lo[i], hi[i] = seg.Low[i], seg.High[i]
		}
	}

	return NewRectangle(lo, hi)
}

// Cones returns the non-empty cones of cell for every index in alphas.
// Cones of zero volume are dropped.
func Cones(alphas []Alpha, cell *Rectangle, seg Segment) []*Rectangle {
	out := make([]*Rectangle, 0, len(alphas))

	for _, a := range alphas {
		c := Cone(a, cell, seg)
		if c.Volume() > 0 {
			out = append(out, c)
		}
	}

	return out
}

func table(kind tableKind, n int, keep func(Alpha) bool) []Alpha {
	tablesMu.Lock()
	defer tablesMu.Unlock()

	key := tableKey{kind: kind, n: n}
	if t, ok := tables[key]; ok {
		return t
	}

	var t []Alpha

	for _, a := range Tuples(n) {
		if keep(a) {
			t = append(t, a)
		}
	}

	tables[key] = t

	return t
}

func constAlpha(n, sym int) Alpha {
	a := make(Alpha, n)
	for i := range a {
		a[i] = sym
	}

	return a
}

func (a Alpha) all(sym int) bool {
	for _, s := range a {
		if s != sym {
			return false
		}
	}

	return true
}

func (a Alpha) has(sym int) bool {
	return slices.Contains(a, sym)
}
