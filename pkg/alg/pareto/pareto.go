// Package pareto maintains archives of mutually non-dominated points under the
// product order. The learners use them to skip cone absorptions already
// covered by an earlier, larger cone, and result sets use them to extract the
// Pareto front from the corners of their certified boxes.
package pareto

import (
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// Sense selects which points an archive keeps.
type Sense int

const (
	// Minimize keeps the minimal points: q dominates p when q <= p.
	Minimize Sense = iota
	// Maximize keeps the maximal points: q dominates p when q >= p.
	Maximize
)

// Archive is a set of pairwise non-dominated points. It is safe for
// concurrent use.
type Archive struct {
	mu     sync.RWMutex
	sense  Sense
	points []geom.Point
}

// New creates an empty archive.
func New(sense Sense) *Archive {
	return &Archive{sense: sense}
}

// FromPoints builds an archive from an arbitrary point list.
func FromPoints(sense Sense, points []geom.Point) *Archive {
	a := New(sense)
	for _, p := range points {
		a.Add(p)
	}

	return a
}

// Add inserts p unless an archived point weakly dominates it, and evicts the
// archived points p dominates. It reports whether p was inserted.
func (a *Archive) Add(p geom.Point) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, q := range a.points {
		if a.covers(q, p) {
			return false
		}
	}

	a.points = slices.DeleteFunc(a.points, func(q geom.Point) bool {
		return a.covers(p, q)
	})
	a.points = append(a.points, p)

	return true
}

// Dominated reports whether some archived point weakly dominates p.
func (a *Archive) Dominated(p geom.Point) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, q := range a.points {
		if a.covers(q, p) {
			return true
		}
	}

	return false
}

// Len returns the number of archived points.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.points)
}

// Points returns a copy of the archived points in insertion order.
func (a *Archive) Points() []geom.Point {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return slices.Clone(a.points)
}

// Reset drops every archived point.
func (a *Archive) Reset() {
	a.mu.Lock()
	a.points = nil
	a.mu.Unlock()
}

// covers reports whether q weakly dominates p under the archive's sense.
func (a *Archive) covers(q, p geom.Point) bool {
	if a.sense == Minimize {
		return q.LessEq(p)
	}

	return q.GreaterEq(p)
}
