package learn

import (
	"github.com/Sumatoshi-tech/paretolearn/pkg/alg/lattice"
	"github.com/Sumatoshi-tech/paretolearn/pkg/alg/worklist"
	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

// boundary is the set of undecided cells. It keeps the volume-ordered
// worklist and, when indexed, lattice indexes on both corners so that cells
// overlapping a corner cone are found without a scan.
type boundary struct {
	list *worklist.List
	mins *lattice.Index
	maxs *lattice.Index
}

func newBoundary(n int, indexed bool) *boundary {
	b := &boundary{list: worklist.New()}

	if indexed {
		b.mins = lattice.New(n, lattice.MinCorner)
		b.maxs = lattice.New(n, lattice.MaxCorner)
	}

	return b
}

func (b *boundary) len() int {
	return b.list.Len()
}

func (b *boundary) volume() float64 {
	return b.list.Volume()
}

func (b *boundary) cells() []*geom.Rectangle {
	return b.list.Slice()
}

// push adds the cells of positive volume.
func (b *boundary) push(cells ...*geom.Rectangle) {
	for _, c := range cells {
		if c.Volume() <= 0 || b.list.Contains(c) {
			continue
		}

		b.list.Push(c)

		if b.mins != nil {
			b.mins.Add(c)
			b.maxs.Add(c)
		}
	}
}

// popN removes and returns the k largest cells.
func (b *boundary) popN(k int) []*geom.Rectangle {
	cells := b.list.PopN(k)

	if b.mins != nil {
		for _, c := range cells {
			b.mins.Remove(c)
			b.maxs.Remove(c)
		}
	}

	return cells
}

func (b *boundary) remove(c *geom.Rectangle) {
	if !b.list.Remove(c) {
		return
	}

	if b.mins != nil {
		b.mins.Remove(c)
		b.maxs.Remove(c)
	}
}

// overlapping returns the cells whose interior meets cone. A lower cone
// [space.Min, y] meets exactly the cells with Min < y; an upper cone
// [y, space.Max] meets exactly the cells with Max > y.
func (b *boundary) overlapping(cone *geom.Rectangle, lower bool) []*geom.Rectangle {
	var candidates []*geom.Rectangle

	switch {
	case b.mins != nil && lower:
		candidates = b.mins.Less(cone.Max())
	case b.maxs != nil:
		candidates = b.maxs.Greater(cone.Min())
	default:
		candidates = b.cells()
	}

	out := candidates[:0:0]

	for _, c := range candidates {
		if c.Overlaps(cone) {
			out = append(out, c)
		}
	}

	return out
}

// absorb moves the part of every border cell covered by cone out of the
// border and returns it. The uncovered remainders go back to the border.
func (b *boundary) absorb(cone *geom.Rectangle, lower bool) []*geom.Rectangle {
	if cone.Volume() <= 0 {
		return nil
	}

	var taken []*geom.Rectangle

	for _, c := range b.overlapping(cone, lower) {
		b.remove(c)
		taken = append(taken, c.Intersection(cone))
		b.push(c.MinimalSetDifference(cone)...)
	}

	return taken
}

// state is the partition grown by a run. It lives on the coordinating
// goroutine.
type state struct {
	space  *geom.Rectangle
	yup    []*geom.Rectangle
	ylow   []*geom.Rectangle
	border *boundary
}

func newState(space *geom.Rectangle, indexed bool) *state {
	return &state{space: space, border: newBoundary(space.Dim(), indexed)}
}

func (s *state) addYup(boxes ...*geom.Rectangle) {
	for _, b := range boxes {
		if b.Volume() > 0 {
			s.yup = append(s.yup, b)
		}
	}
}

func (s *state) addYlow(boxes ...*geom.Rectangle) {
	for _, b := range boxes {
		if b.Volume() > 0 {
			s.ylow = append(s.ylow, b)
		}
	}
}

func (s *state) borderRatio() float64 {
	return s.border.volume() / s.space.Volume()
}

// resultSet copies the current families into a result set.
func (s *state) resultSet() *resultset.ResultSet {
	yup := make([]*geom.Rectangle, len(s.yup))
	copy(yup, s.yup)

	ylow := make([]*geom.Rectangle, len(s.ylow))
	copy(ylow, s.ylow)

	return resultset.New(s.space, yup, ylow, s.border.cells())
}
