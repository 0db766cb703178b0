// Package search implements the searches run along the main diagonal of a
// cell: the one-sided bisection that locates the transition of a monotone
// predicate, and the two-sided search that looks for a point jointly
// satisfying an upward-closed and a downward-closed predicate.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

// ErrInvalidEpsilon is returned for a non-positive stop distance.
var ErrInvalidEpsilon = errors.New("epsilon must be positive")

// Bisect locates the transition of the upward-closed predicate o along seg.
//
// When o holds at seg.Low the whole segment is true and (Low, Low) is
// returned; when o fails at seg.High the whole segment is false and
// (High, High) is returned. Otherwise the segment is halved until its length
// is at most eps, and the result (last false, first true) straddles the
// transition: everything <= Low is false and everything >= High is true.
// The second result is the number of halvings.
func Bisect(ctx context.Context, o oracle.Oracle, seg geom.Segment, eps float64) (geom.Segment, int, error) {
	if eps <= 0 {
		return seg, 0, fmt.Errorf("%w: %g", ErrInvalidEpsilon, eps)
	}

	atLow, err := o.Member(ctx, seg.Low)
	if err != nil {
		return seg, 0, fmt.Errorf("query %s: %w", seg.Low, err)
	}

	if atLow {
		return geom.NewSegment(seg.Low, seg.Low), 0, nil
	}

	atHigh, err := o.Member(ctx, seg.High)
	if err != nil {
		return seg, 0, fmt.Errorf("query %s: %w", seg.High, err)
	}

	if !atHigh {
		return geom.NewSegment(seg.High, seg.High), 0, nil
	}

	return narrow(ctx, o, seg, eps)
}

// narrow halves seg while keeping o false at Low and true at High.
func narrow(ctx context.Context, o oracle.Oracle, seg geom.Segment, eps float64) (geom.Segment, int, error) {
	low, high := seg.Low, seg.High
	steps := 0

	for low.Distance(high) > eps {
		err := ctx.Err()
		if err != nil {
			return geom.NewSegment(low, high), steps, err
		}

		mid := low.Mid(high)
		if mid.Equal(low) || mid.Equal(high) {
			break
		}

		in, err := o.Member(ctx, mid)
		if err != nil {
			return geom.NewSegment(low, high), steps, fmt.Errorf("query %s: %w", mid, err)
		}

		if in {
			high = mid
		} else {
			low = mid
		}

		steps++
	}

	return geom.NewSegment(low, high), steps, nil
}
