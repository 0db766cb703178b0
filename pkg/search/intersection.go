package search

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

// Outcome classifies a cell after the two-sided diagonal search.
type Outcome int

const (
	// InterNull means the cell cannot meet the joint region.
	InterNull Outcome = iota
	// InterFull means the whole cell lies in the joint region.
	InterFull
	// Inter means a point of the joint region was found; see Result.In.
	Inter
	// NoInter means a point outside both predicates was found; see Result.Cover.
	NoInter
	// Straddle means the search narrowed to eps without a decision; Result.Cover
	// holds the final bracket.
	Straddle
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case InterNull:
		return "INTERNULL"
	case InterFull:
		return "INTERFULL"
	case Inter:
		return "INTER"
	case NoInter:
		return "NO_INTER"
	case Straddle:
		return "STRADDLE"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the outcome of IntersectionExpansionSearch.
//
// For Inter, every point of the box spanned by In satisfies both predicates.
// For NoInter, everything <= Cover.High fails the upward predicate and
// everything >= Cover.Low fails the downward one; every point of Cover lies
// outside both. For Straddle, everything <= Cover.Low fails the upward
// predicate and everything >= Cover.High fails the downward one.
type Result struct {
	Outcome Outcome
	In      geom.Segment
	Cover   geom.Segment
	Steps   int
}

// IntersectionExpansionSearch runs the two-sided search along seg.
//
// up is upward-closed and down is downward-closed: down.Member is true on
// the lower region. The search walks the diagonal keeping up false and down
// true at the lower end, and up true and down false at the upper end, until
// the midpoint satisfies both (Inter) or neither (NoInter). With expand set,
// the certifying midpoint is grown along the current bracket with one-sided
// bisections so that In and Cover span as much of the diagonal as the
// predicates allow.
func IntersectionExpansionSearch(
	ctx context.Context, up, down oracle.Oracle, seg geom.Segment, eps float64, expand bool,
) (Result, error) {
	if eps <= 0 {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidEpsilon, eps)
	}

	s := &twoSided{ctx: ctx, up: up, down: down, eps: eps, expand: expand}

	return s.run(seg)
}

type twoSided struct {
	ctx    context.Context
	up     oracle.Oracle
	down   oracle.Oracle
	eps    float64
	expand bool
	steps  int
}

func (s *twoSided) run(seg geom.Segment) (Result, error) {
	low, high := seg.Low, seg.High

	upLow, downLow, err := s.query(low)
	if err != nil {
		return Result{}, err
	}

	upHigh, downHigh, err := s.query(high)
	if err != nil {
		return Result{}, err
	}

	switch {
	case upLow && downHigh:
		return Result{Outcome: InterFull, In: seg, Cover: seg, Steps: s.steps}, nil
	case !upHigh || !downLow:
		return Result{Outcome: InterNull, In: seg, Cover: seg, Steps: s.steps}, nil
	case upLow && downLow:
		return s.inter(low, low, high, true)
	case upHigh && downHigh:
		return s.inter(high, low, high, true)
	}

	// From here up is false and down true at low, and the reverse at high.
	for low.Distance(high) > s.eps {
		err = s.ctx.Err()
		if err != nil {
			return Result{}, err
		}

		mid := low.Mid(high)
		if mid.Equal(low) || mid.Equal(high) {
			break
		}

		upMid, downMid, err := s.query(mid)
		if err != nil {
			return Result{}, err
		}

		switch {
		case upMid && downMid:
			return s.inter(mid, low, high, s.expand)
		case !upMid && !downMid:
			return s.noInter(mid, low, high)
		case upMid:
			high = mid
		default:
			low = mid
		}
	}

	bracket := geom.NewSegment(low, high)

	return Result{Outcome: Straddle, In: bracket, Cover: bracket, Steps: s.steps}, nil
}

// inter expands the joint point m inside the bracket (low, high). A joint
// point on a corner of the cell is always expanded, since the cones around a
// corner point would reproduce the whole cell.
func (s *twoSided) inter(m, low, high geom.Point, expand bool) (Result, error) {
	in := geom.NewSegment(m, m)

	if expand {
		first, err := s.bisect(s.up, geom.NewSegment(low, m))
		if err != nil {
			return Result{}, err
		}

		last, err := s.bisect(oracle.Negate(s.down), geom.NewSegment(m, high))
		if err != nil {
			return Result{}, err
		}

		in = geom.NewSegment(first.High, last.Low)
	}

	return Result{Outcome: Inter, In: in, Cover: in, Steps: s.steps}, nil
}

// noInter expands the point m, outside both predicates, inside (low, high).
func (s *twoSided) noInter(m, low, high geom.Point) (Result, error) {
	cover := geom.NewSegment(m, m)

	if s.expand {
		lastNotUp, err := s.bisect(s.up, geom.NewSegment(m, high))
		if err != nil {
			return Result{}, err
		}

		firstNotDown, err := s.bisect(oracle.Negate(s.down), geom.NewSegment(low, m))
		if err != nil {
			return Result{}, err
		}

		cover = geom.NewSegment(firstNotDown.High, lastNotUp.Low)
	}

	return Result{Outcome: NoInter, In: cover, Cover: cover, Steps: s.steps}, nil
}

func (s *twoSided) bisect(o oracle.Oracle, seg geom.Segment) (geom.Segment, error) {
	out, steps, err := Bisect(s.ctx, o, seg, s.eps)
	s.steps += steps

	return out, err
}

func (s *twoSided) query(p geom.Point) (bool, bool, error) {
	u, err := s.up.Member(s.ctx, p)
	if err != nil {
		return false, false, fmt.Errorf("query %s: %w", p, err)
	}

	d, err := s.down.Member(s.ctx, p)
	if err != nil {
		return false, false, fmt.Errorf("query %s: %w", p, err)
	}

	s.steps++

	return u, d, nil
}
