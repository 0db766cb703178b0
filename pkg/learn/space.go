package learn

import (
	"fmt"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

// Interval is a closed range [Min, Max] on one axis.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Space returns the box spanned by one interval per axis.
func Space(intervals []Interval) (*geom.Rectangle, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: no axes", ErrInvalidInterval)
	}

	lo := make(geom.Point, len(intervals))
	hi := make(geom.Point, len(intervals))

	for i, iv := range intervals {
		if !(iv.Min < iv.Max) {
			return nil, fmt.Errorf("%w: axis %d is [%g, %g]", ErrInvalidInterval, i, iv.Min, iv.Max)
		}

		lo[i], hi[i] = iv.Min, iv.Max
	}

	return geom.NewRectangle(lo, hi), nil
}

// Uniform returns n copies of [lo, hi].
func Uniform(n int, lo, hi float64) []Interval {
	out := make([]Interval, n)
	for i := range out {
		out[i] = Interval{Min: lo, Max: hi}
	}

	return out
}

func checkOracles(space *geom.Rectangle, oracles ...oracle.Oracle) error {
	if len(oracles) == 0 {
		return ErrNoOracles
	}

	for i, o := range oracles {
		if o == nil {
			return fmt.Errorf("%w: oracle %d is nil", ErrNoOracles, i)
		}
	}

	err := oracle.CheckDim(space.Dim(), oracles...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	return nil
}
