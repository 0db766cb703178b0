package learn

import (
	"context"

	"github.com/Sumatoshi-tech/paretolearn/pkg/alg/pareto"
	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
	"github.com/Sumatoshi-tech/paretolearn/pkg/search"
)

// partition learns the upward-closed region of a single oracle.
//
// Each step bisects the diagonal of a cell down to a segment (yL, yH) of
// length at most epsilon with the oracle false at yL and true at yH. Then
// [cell.Min, yL] is certified false, [yH, cell.Max] certified true, and the
// 3^n-2 incomparable cones return to the border.
//
// From OptShadow on, the extended cones [space.Min, yL] and [yH, space.Max]
// are certified as well and their shadow is cut out of every overlapping
// border cell.
type partition struct {
	st    *state
	eps   float64
	level int

	// lows holds the maximal yL absorbed so far, ups the minimal yH. A
	// cone whose apex is dominated by an archived one is already absorbed.
	lows *pareto.Archive
	ups  *pareto.Archive
}

func newPartition(st *state, opts Options) *partition {
	return &partition{
		st:    st,
		eps:   opts.Epsilon,
		level: opts.OptLevel,
		lows:  pareto.New(pareto.Maximize),
		ups:   pareto.New(pareto.Minimize),
	}
}

func (l *partition) search(ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle) (geom.Segment, error) {
	seg, _, err := search.Bisect(ctx, oracles[0], cell.Diag(), l.eps)

	return seg, err
}

func (l *partition) place(cell *geom.Rectangle, seg geom.Segment) string {
	l.st.addYlow(geom.NewRectangle(cell.Min(), seg.Low))
	l.st.addYup(geom.NewRectangle(seg.High, cell.Max()))
	l.st.border.push(geom.Cones(geom.Incomp(cell.Dim()), cell, seg)...)

	return ""
}

func (l *partition) absorb(cell *geom.Rectangle, seg geom.Segment) {
	if l.level < OptShadow {
		return
	}

	space := l.st.space
	lowFalse, highTrue := certified(cell, seg)

	if lowFalse && (l.level < OptArchive || l.lows.Add(seg.Low)) {
		l.st.addYlow(l.st.border.absorb(geom.NewRectangle(space.Min(), seg.Low), true)...)
	}

	if highTrue && (l.level < OptArchive || l.ups.Add(seg.High)) {
		l.st.addYup(l.st.border.absorb(geom.NewRectangle(seg.High, space.Max()), false)...)
	}
}

// certified reports which ends of a bisection result were answered by the
// oracle. A degenerate segment at cell.Min means the whole diagonal is true,
// so its Low is a true point; one at cell.Max means the diagonal is false,
// so its High is a false point.
func certified(cell *geom.Rectangle, seg geom.Segment) (lowFalse, highTrue bool) {
	if !seg.Degenerate() {
		return true, true
	}

	return !seg.Low.Equal(cell.Min()), !seg.High.Equal(cell.Max())
}
