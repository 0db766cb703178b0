package resultset

import (
	"math"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// Champion picks the vertex of this Y↑ that lies farthest from the Y↑ of
// every other result set: the argmax, over the vertices of the own boxes, of
// the distance to the nearest vertex of the others (a directed Hausdorff
// distance). Own boxes covered by the union of the other sets are shared and
// do not compete.
//
// It returns false when no own box remains. When the others have no Y↑
// boxes at all the distance is +Inf and the minimal corner of the largest own
// box is returned.
func (rs *ResultSet) Champion(others []*ResultSet) (geom.Point, float64, bool) {
	var theirs []*geom.Rectangle
	for _, o := range others {
		theirs = append(theirs, o.Yup()...)
	}

	own := unshared(rs.Yup(), theirs)
	if len(own) == 0 {
		return nil, 0, false
	}

	if len(theirs) == 0 {
		return largest(own).Min(), math.Inf(1), true
	}

	var targets []geom.Point
	for _, b := range theirs {
		targets = append(targets, b.Vertices()...)
	}

	var (
		best     geom.Point
		bestDist = -1.0
	)

	for _, b := range own {
		for _, v := range b.Vertices() {
			d := nearest(v, targets)
			if d > bestDist {
				best, bestDist = v, d
			}
		}
	}

	return best, bestDist, true
}

// Hausdorff returns the directed Hausdorff distance from the Y↑ vertices of
// rs to the Y↑ vertices of other, ignoring shared boxes. It is zero when
// the Y↑ of rs is contained in the Y↑ of other.
func (rs *ResultSet) Hausdorff(other *ResultSet) float64 {
	_, d, ok := rs.Champion([]*ResultSet{other})
	if !ok {
		return 0
	}

	return d
}

// unshared returns the own boxes not covered by the union of theirs. A box
// may be covered jointly by several of theirs.
func unshared(own, theirs []*geom.Rectangle) []*geom.Rectangle {
	var out []*geom.Rectangle

	for _, b := range own {
		if len(subtract([]*geom.Rectangle{b}, theirs)) > 0 {
			out = append(out, b)
		}
	}

	return out
}

func nearest(p geom.Point, targets []geom.Point) float64 {
	best := math.Inf(1)

	for _, q := range targets {
		best = math.Min(best, p.Distance(q))
	}

	return best
}

func largest(boxes []*geom.Rectangle) *geom.Rectangle {
	best := boxes[0]

	for _, b := range boxes[1:] {
		if b.Volume() > best.Volume() {
			best = b
		}
	}

	return best
}
