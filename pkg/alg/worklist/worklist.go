// Package worklist provides the volume-ordered set of boundary cells consumed
// by the learners. The largest cell is always popped first; cells of equal
// volume leave in insertion order.
//
// The list is backed by a google/btree B-tree, giving O(log N) push, pop and
// remove, and tracks the total volume of the cells it holds. It is not safe
// for concurrent use: the learners keep it on the coordinating goroutine.
package worklist

import (
	"iter"

	"github.com/google/btree"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// degree is the B-tree branching factor.
const degree = 16

// entry is one cell with its ordering key.
type entry struct {
	cell *geom.Rectangle
	vol  float64
	seq  uint64
}

// less orders entries so that the tree maximum is the next cell to pop:
// larger volume first, then earlier insertion.
func less(a, b entry) bool {
	if a.vol != b.vol {
		return a.vol < b.vol
	}

	return a.seq > b.seq
}

// List is a max-volume priority set of rectangles.
type List struct {
	tree    *btree.BTreeG[entry]
	index   map[*geom.Rectangle]entry
	nextSeq uint64
	volume  float64
}

// New creates an empty list.
func New() *List {
	return &List{
		tree:  btree.NewG(degree, less),
		index: make(map[*geom.Rectangle]entry),
	}
}

// From creates a list holding cells.
func From(cells []*geom.Rectangle) *List {
	l := New()
	l.PushAll(cells)

	return l
}

// Len returns the number of cells.
func (l *List) Len() int {
	return l.tree.Len()
}

// Volume returns the summed volume of all cells.
func (l *List) Volume() float64 {
	return l.volume
}

// Push adds cell. Pushing a cell that is already present is a no-op.
func (l *List) Push(cell *geom.Rectangle) {
	if _, ok := l.index[cell]; ok {
		return
	}

	e := entry{cell: cell, vol: cell.Volume(), seq: l.nextSeq}
	l.nextSeq++

	l.tree.ReplaceOrInsert(e)
	l.index[cell] = e
	l.volume += e.vol
}

// PushAll adds every cell in cells.
func (l *List) PushAll(cells []*geom.Rectangle) {
	for _, c := range cells {
		l.Push(c)
	}
}

// Peek returns the largest cell without removing it.
func (l *List) Peek() (*geom.Rectangle, bool) {
	e, ok := l.tree.Max()
	if !ok {
		return nil, false
	}

	return e.cell, true
}

// Pop removes and returns the largest cell.
func (l *List) Pop() (*geom.Rectangle, bool) {
	e, ok := l.tree.DeleteMax()
	if !ok {
		return nil, false
	}

	l.forget(e)

	return e.cell, true
}

// PopN removes and returns up to k of the largest cells, largest first.
func (l *List) PopN(k int) []*geom.Rectangle {
	out := make([]*geom.Rectangle, 0, min(k, l.Len()))

	for range k {
		c, ok := l.Pop()
		if !ok {
			break
		}

		out = append(out, c)
	}

	return out
}

// Remove deletes cell and reports whether it was present.
func (l *List) Remove(cell *geom.Rectangle) bool {
	e, ok := l.index[cell]
	if !ok {
		return false
	}

	l.tree.Delete(e)
	l.forget(e)

	return true
}

// Contains reports whether cell is in the list.
func (l *List) Contains(cell *geom.Rectangle) bool {
	_, ok := l.index[cell]

	return ok
}

// All yields the cells from largest to smallest.
func (l *List) All() iter.Seq[*geom.Rectangle] {
	return func(yield func(*geom.Rectangle) bool) {
		l.tree.Descend(func(e entry) bool {
			return yield(e.cell)
		})
	}
}

// Slice returns the cells from largest to smallest.
func (l *List) Slice() []*geom.Rectangle {
	out := make([]*geom.Rectangle, 0, l.Len())
	for c := range l.All() {
		out = append(out, c)
	}

	return out
}

func (l *List) forget(e entry) {
	delete(l.index, e.cell)

	l.volume -= e.vol
	if l.tree.Len() == 0 {
		l.volume = 0
	}
}
