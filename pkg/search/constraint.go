package search

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// ErrConstraintDim is returned when a constraint and a space disagree in dimension.
var ErrConstraintDim = errors.New("constraint dimension mismatch")

// Constraint is the affine half-space Coeffs·x <= Bound.
type Constraint struct {
	Coeffs []float64 `json:"coeffs" yaml:"coeffs" validate:"required,min=1"`
	Bound  float64   `json:"bound"  yaml:"bound"`
}

// Constraints is a conjunction of half-spaces.
type Constraints []Constraint

// Validate checks that every constraint has dimension n.
func (cs Constraints) Validate(n int) error {
	for i, c := range cs {
		if len(c.Coeffs) != n {
			return fmt.Errorf("%w: constraint %d has %d coefficients, space has %d", ErrConstraintDim, i, len(c.Coeffs), n)
		}
	}

	return nil
}

// Satisfied reports whether p lies in every half-space.
func (cs Constraints) Satisfied(p geom.Point) bool {
	for _, c := range cs {
		if floats.Dot(c.Coeffs, p) > c.Bound {
			return false
		}
	}

	return true
}

// Feasible reports whether some point of cell satisfies each constraint.
// A cell failing this check lies outside the feasible polytope.
func (cs Constraints) Feasible(cell *geom.Rectangle) bool {
	for _, c := range cs {
		if extreme(c.Coeffs, cell, false) > c.Bound {
			return false
		}
	}

	return true
}

// Contains reports whether every vertex, and hence every point, of cell is
// feasible.
func (cs Constraints) Contains(cell *geom.Rectangle) bool {
	for _, c := range cs {
		if extreme(c.Coeffs, cell, true) > c.Bound {
			return false
		}
	}

	return true
}

// Restrict clips seg to the feasible polytope. It returns false when no
// point of seg, or only a single point, is feasible.
func (cs Constraints) Restrict(seg geom.Segment) (geom.Segment, bool) {
	lo, hi := 0.0, 1.0
	dir := seg.Diag()

	for _, c := range cs {
		slope := floats.Dot(c.Coeffs, dir)
		slack := c.Bound - floats.Dot(c.Coeffs, seg.Low)

		switch {
		case slope > 0:
			hi = math.Min(hi, slack/slope)
		case slope < 0:
			lo = math.Max(lo, slack/slope)
		case slack < 0:
			return seg, false
		}
	}

	if lo >= hi {
		return seg, false
	}

	if lo == 0 && hi == 1 {
		return seg, true
	}

	return geom.NewSegment(seg.At(lo), seg.At(hi)), true
}

// extreme returns the maximum (or minimum) of coeffs·x over cell.
func extreme(coeffs []float64, cell *geom.Rectangle, maximum bool) float64 {
	var sum float64

	lo, hi := cell.Min(), cell.Max()

	for i, a := range coeffs {
		if (a >= 0) == maximum {
			sum += a * hi[i]
		} else {
			sum += a * lo[i]
		}
	}

	return sum
}
