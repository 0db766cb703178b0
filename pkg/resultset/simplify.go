package resultset

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// Simplification methods.
const (
	// MethodMonotone assumes the upward-closed semantics of the partition
	// learner: Y↑ and Y↓ are sound and only need their internal overlaps
	// removed.
	MethodMonotone = 0
	// MethodIntersection assumes the semantics of the intersection learner:
	// Y↑ already tiles the joint region and takes precedence over Y↓.
	MethodIntersection = 1
)

// ErrUnknownMethod is returned for an unsupported simplification method.
var ErrUnknownMethod = errors.New("unknown simplification method")

// Simplify rebuilds Y↑, Y↓ and the border so that the boxes of all three
// families are pairwise non-overlapping and fused. The border loses whatever
// Y↑ and Y↓ cover.
func (rs *ResultSet) Simplify(method int) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var yup, ylow []*geom.Rectangle

	switch method {
	case MethodMonotone:
		yup = disjoint(rs.yup)
		ylow = disjoint(rs.ylow)
	case MethodIntersection:
		yup = rs.yup
		ylow = disjoint(subtract(rs.ylow, yup))
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMethod, method)
	}

	border := disjoint(subtract(subtract(rs.border, yup), ylow))

	rs.yup = geom.Fusion(yup)
	rs.ylow = geom.Fusion(ylow)
	rs.border = geom.Fusion(border)
	rs.invalidate()
	rs.simplified = true

	return nil
}

// Fusion merges concatenable boxes within each family.
func (rs *ResultSet) Fusion() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	simplified := rs.simplified

	rs.yup = geom.Fusion(rs.yup)
	rs.ylow = geom.Fusion(rs.ylow)
	rs.border = geom.Fusion(rs.border)
	rs.invalidate()
	rs.simplified = simplified
}

// disjoint rewrites boxes so that no two overlap while covering the same
// union. Earlier boxes are kept whole; later ones lose what earlier ones
// cover.
func disjoint(boxes []*geom.Rectangle) []*geom.Rectangle {
	var kept []*geom.Rectangle

	for _, b := range boxes {
		if b.Volume() == 0 {
			continue
		}

		kept = append(kept, subtract([]*geom.Rectangle{b}, kept)...)
	}

	return kept
}

// subtract removes every box of cut from every box of boxes.
func subtract(boxes, cut []*geom.Rectangle) []*geom.Rectangle {
	pieces := boxes

	for _, c := range cut {
		var next []*geom.Rectangle

		for _, p := range pieces {
			if !p.Overlaps(c) {
				next = append(next, p)

				continue
			}

			for sub := range p.Difference(c) {
				if sub.Volume() > 0 {
					next = append(next, sub)
				}
			}
		}

		pieces = next
	}

	return pieces
}
