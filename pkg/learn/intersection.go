package learn

import (
	"context"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

// Extra labels for cells the constraints decide before any search.
const (
	labelInfeasible = "INFEASIBLE"
	labelSplit      = "SPLIT"
)

// interStep is the outcome of one intersection search. sub is the part of
// the cell that was searched; it differs from the cell when the diagonal had
// to be clipped to the constraints.
type interStep struct {
	search.Result

	sub        *geom.Rectangle
	infeasible bool
	split      bool
}

// intersection learns the region where an upward-closed oracle up and a
// downward-closed oracle down both hold. Y↑ collects boxes certified inside
// both; Y↓ collects boxes certified outside at least one.
type intersection struct {
	st          *state
	eps         float64
	level       int
	constraints search.Constraints
}

func newIntersection(st *state, opts Options, cs search.Constraints) *intersection {
	return &intersection{st: st, eps: opts.Epsilon, level: opts.OptLevel, constraints: cs}
}

func (l *intersection) search(ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle) (interStep, error) {
	sub := cell

	if len(l.constraints) > 0 {
		if !l.constraints.Feasible(cell) {
			return interStep{infeasible: true}, nil
		}

		seg, ok := l.constraints.Restrict(cell.Diag())
		if !ok {
			return interStep{split: true}, nil
		}

		if !seg.Low.Equal(cell.Min()) || !seg.High.Equal(cell.Max()) {
			sub = geom.RectangleFromSegment(seg)
			if sub.Volume() <= 0 {
				return interStep{split: true}, nil
			}
		}
	}

	res, err := search.IntersectionExpansionSearch(ctx, oracles[0], oracles[1], sub.Diag(), l.eps, l.level >= InterExpand)
	if err != nil {
		return interStep{}, err
	}

	return interStep{Result: res, sub: sub}, nil
}

func (l *intersection) place(cell *geom.Rectangle, r interStep) string {
	switch {
	case r.infeasible:
		l.st.addYlow(cell)

		return labelInfeasible
	case r.split:
		l.st.border.push(cell.CellPartitionBin()...)

		return labelSplit
	}

	if r.sub != cell {
		l.st.border.push(cell.DifferenceList(r.sub)...)
	}

	c := r.sub
	n := c.Dim()

	switch r.Outcome {
	case search.InterFull:
		l.certify(c)
	case search.InterNull:
		l.st.addYlow(c)
	case search.Inter:
		in := geom.RectangleFromSegment(r.In)
		if in.Volume() > 0 {
			l.certify(in)
		}

		l.st.border.push(geom.Cones(geom.IncompSegmentPos(n), c, r.In)...)
	case search.NoInter:
		l.st.addYlow(geom.Cones(outsideCones(n), c, r.Cover)...)
		l.st.border.push(geom.Cones(geom.IncompSegment(n), c, r.Cover)...)
	case search.Straddle:
		l.st.addYlow(
			geom.NewRectangle(c.Min(), r.Cover.Low),
			geom.NewRectangle(r.Cover.High, c.Max()),
		)
		l.st.border.push(geom.Cones(geom.Incomp(n), c, r.Cover)...)
	}

	return r.Outcome.String()
}

// certify moves box into Y↑ when the constraints hold on all of it and
// splits it back into the border otherwise.
func (l *intersection) certify(box *geom.Rectangle) {
	if l.constraints.Contains(box) {
		l.st.addYup(box)

		return
	}

	l.st.border.push(box.CellPartitionBin()...)
}

// absorb cuts the extended negated cones of a NO_INTER cell out of the
// border: everything below Cover.High fails up, everything above Cover.Low
// fails down.
func (l *intersection) absorb(_ *geom.Rectangle, r interStep) {
	if l.level < InterAbsorb || r.infeasible || r.split || r.Outcome != search.NoInter {
		return
	}

	space := l.st.space

	l.st.addYlow(l.st.border.absorb(geom.NewRectangle(space.Min(), r.Cover.High), true)...)
	l.st.addYlow(l.st.border.absorb(geom.NewRectangle(r.Cover.Low, space.Max()), false)...)
}

// outsideCones returns the cones of a NO_INTER cell lying below Cover.High
// or above Cover.Low: those without an Above symbol or without a Below one.
func outsideCones(n int) []geom.Alpha {
	all := make(geom.Alpha, n)
	for i := range all {
		all[i] = geom.Straddle
	}

	out := make([]geom.Alpha, 0, 2*len(geom.IncompSegmentNegUp(n))+1)
	out = append(out, geom.IncompSegmentNegDown(n)...)
	out = append(out, geom.IncompSegmentNegUp(n)...)

	return append(out, all)
}
