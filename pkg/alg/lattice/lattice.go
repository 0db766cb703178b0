// Package lattice indexes rectangles by one of their corners so that
// dominance queries ("which boxes have a min corner below p?") avoid a full
// scan. The index keeps one google/btree projection per axis; a query walks
// the prefix or suffix of the most selective axis and checks the remaining
// coordinates directly.
package lattice

import (
	"math"

	"github.com/google/btree"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// degree is the B-tree branching factor.
const degree = 16

// Corner selects which rectangle corner is indexed.
type Corner int

// Indexed corners.
const (
	MinCorner Corner = iota
	MaxCorner
)

// Op is a componentwise comparison of an indexed corner against a point.
type Op int

// Supported comparisons of an indexed corner against a query point.
const (
	LessEq Op = iota
	Less
	GreaterEq
	Greater
)

type item struct {
	coord float64
	id    uint64
	rect  *geom.Rectangle
}

func itemLess(a, b item) bool {
	if a.coord != b.coord {
		return a.coord < b.coord
	}

	return a.id < b.id
}

// Index is a set of rectangles projected on every axis of one corner.
type Index struct {
	corner Corner
	axes   []*btree.BTreeG[item]
	ids    map[*geom.Rectangle]uint64
	nextID uint64
}

// New creates an empty n-dimensional index on the given corner.
func New(n int, corner Corner) *Index {
	axes := make([]*btree.BTreeG[item], n)
	for i := range axes {
		axes[i] = btree.NewG(degree, itemLess)
	}

	return &Index{
		corner: corner,
		axes:   axes,
		ids:    make(map[*geom.Rectangle]uint64),
	}
}

// Len returns the number of indexed rectangles.
func (x *Index) Len() int {
	return len(x.ids)
}

// Add indexes r. Adding a rectangle twice is a no-op.
func (x *Index) Add(r *geom.Rectangle) {
	if _, ok := x.ids[r]; ok {
		return
	}

	id := x.nextID
	x.nextID++
	x.ids[r] = id

	p := x.key(r)
	for i, axis := range x.axes {
		axis.ReplaceOrInsert(item{coord: p[i], id: id, rect: r})
	}
}

// Remove drops r from the index and reports whether it was present.
func (x *Index) Remove(r *geom.Rectangle) bool {
	id, ok := x.ids[r]
	if !ok {
		return false
	}

	delete(x.ids, r)

	p := x.key(r)
	for i, axis := range x.axes {
		axis.Delete(item{coord: p[i], id: id})
	}

	return true
}

// LessEq returns the rectangles whose indexed corner is <= p.
func (x *Index) LessEq(p geom.Point) []*geom.Rectangle {
	return x.Query(LessEq, p)
}

// Less returns the rectangles whose indexed corner is strictly < p.
func (x *Index) Less(p geom.Point) []*geom.Rectangle {
	return x.Query(Less, p)
}

// GreaterEq returns the rectangles whose indexed corner is >= p.
func (x *Index) GreaterEq(p geom.Point) []*geom.Rectangle {
	return x.Query(GreaterEq, p)
}

// Greater returns the rectangles whose indexed corner is strictly > p.
func (x *Index) Greater(p geom.Point) []*geom.Rectangle {
	return x.Query(Greater, p)
}

// Query returns the rectangles whose indexed corner compares to p under op
// on every axis.
func (x *Index) Query(op Op, p geom.Point) []*geom.Rectangle {
	if len(x.ids) == 0 {
		return nil
	}

	axis := x.selective(op, p)

	var out []*geom.Rectangle

	x.scan(op, axis, p[axis], func(it item) bool {
		if x.matches(op, x.key(it.rect), p) {
			out = append(out, it.rect)
		}

		return true
	})

	return out
}

// selective picks the axis whose range holds the fewest candidates.
// Counting stops once it exceeds the best count seen so far.
func (x *Index) selective(op Op, p geom.Point) int {
	best, bestCount := 0, len(x.ids)+1

	for i := range x.axes {
		count := 0

		x.scan(op, i, p[i], func(item) bool {
			count++

			return count < bestCount
		})

		if count < bestCount {
			best, bestCount = i, count
		}
	}

	return best
}

func (x *Index) scan(op Op, axis int, v float64, fn func(item) bool) {
	tree := x.axes[axis]

	// Pivots with id 0 sort before every item at coordinate v and pivots
	// with the maximal id after them.
	switch op {
	case LessEq:
		tree.AscendLessThan(item{coord: v, id: math.MaxUint64}, fn)
	case Less:
		tree.AscendLessThan(item{coord: v}, fn)
	case GreaterEq:
		tree.AscendGreaterOrEqual(item{coord: v}, fn)
	case Greater:
		tree.AscendGreaterOrEqual(item{coord: v, id: math.MaxUint64}, fn)
	}
}

func (x *Index) matches(op Op, corner, p geom.Point) bool {
	switch op {
	case LessEq:
		return corner.LessEq(p)
	case Less:
		return corner.Less(p)
	case GreaterEq:
		return corner.GreaterEq(p)
	default:
		return corner.Greater(p)
	}
}

func (x *Index) key(r *geom.Rectangle) geom.Point {
	if x.corner == MinCorner {
		return r.Min()
	}

	return r.Max()
}
