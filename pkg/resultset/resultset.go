// Package resultset holds the outcome of a learner run: the ambient space and
// the three families of boxes partitioning it, Y↑ (certified true), Y↓
// (certified false) and the border (undecided).
//
// Right after a run Y↑ and Y↓ may contain overlapping boxes, because cone
// absorption appends certified cones that can cover earlier ones. Simplify
// rebuilds the three families into pairwise non-overlapping, fused boxes;
// [ResultSet.Simplified] reports whether that has happened.
package resultset

import (
	"sync"

	"github.com/Sumatoshi-tech/paretolearn/pkg/alg/pareto"
	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// ResultSet is the (space, Y↑, Y↓, border) quadruple. Box slices returned by
// the accessors are owned by the result set and must not be modified.
type ResultSet struct {
	mu sync.Mutex

	space  *geom.Rectangle
	yup    []*geom.Rectangle
	ylow   []*geom.Rectangle
	border []*geom.Rectangle

	simplified bool
	frontUp    *pareto.Archive
	frontLow   *pareto.Archive
}

// New creates a result set over space.
func New(space *geom.Rectangle, yup, ylow, border []*geom.Rectangle) *ResultSet {
	return &ResultSet{space: space, yup: yup, ylow: ylow, border: border}
}

// Space returns the ambient box.
func (rs *ResultSet) Space() *geom.Rectangle {
	return rs.space
}

// Dim returns the dimension of the ambient box.
func (rs *ResultSet) Dim() int {
	return rs.space.Dim()
}

// Yup returns the boxes certified true.
func (rs *ResultSet) Yup() []*geom.Rectangle {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.yup
}

// Ylow returns the boxes certified false.
func (rs *ResultSet) Ylow() []*geom.Rectangle {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.ylow
}

// Border returns the undecided boxes.
func (rs *ResultSet) Border() []*geom.Rectangle {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.border
}

// SetYup replaces Y↑ and invalidates the derived Pareto fronts.
func (rs *ResultSet) SetYup(boxes []*geom.Rectangle) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.yup = boxes
	rs.invalidate()
}

// SetYlow replaces Y↓ and invalidates the derived Pareto fronts.
func (rs *ResultSet) SetYlow(boxes []*geom.Rectangle) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ylow = boxes
	rs.invalidate()
}

// SetBorder replaces the border.
func (rs *ResultSet) SetBorder(boxes []*geom.Rectangle) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.border = boxes
	rs.invalidate()
}

// Simplified reports whether Simplify has run since the families were last
// replaced. Only then are the boxes of each family pairwise non-overlapping.
func (rs *ResultSet) Simplified() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.simplified
}

// VolumeSpace returns the volume of the ambient box.
func (rs *ResultSet) VolumeSpace() float64 {
	return rs.space.Volume()
}

// VolumeYup returns the summed volume of Y↑.
func (rs *ResultSet) VolumeYup() float64 {
	return geom.TotalVolume(rs.Yup())
}

// VolumeYlow returns the summed volume of Y↓.
func (rs *ResultSet) VolumeYlow() float64 {
	return geom.TotalVolume(rs.Ylow())
}

// VolumeBorder returns the summed volume of the border.
func (rs *ResultSet) VolumeBorder() float64 {
	return geom.TotalVolume(rs.Border())
}

// OverlappingVolumeYup returns the pairwise overlap volume within Y↑.
func (rs *ResultSet) OverlappingVolumeYup() float64 {
	return geom.OverlappingVolume(rs.Yup())
}

// OverlappingVolumeYlow returns the pairwise overlap volume within Y↓.
func (rs *ResultSet) OverlappingVolumeYlow() float64 {
	return geom.OverlappingVolume(rs.Ylow())
}

// OverlappingVolumeBorder returns the pairwise overlap volume within the border.
func (rs *ResultSet) OverlappingVolumeBorder() float64 {
	return geom.OverlappingVolume(rs.Border())
}

// MemberYup reports whether p lies in the closure of some Y↑ box.
func (rs *ResultSet) MemberYup(p geom.Point) bool {
	return closureMember(rs.Yup(), p)
}

// MemberYlow reports whether p lies in the closure of some Y↓ box.
func (rs *ResultSet) MemberYlow(p geom.Point) bool {
	return closureMember(rs.Ylow(), p)
}

// MemberBorder reports whether p lies in the closure of some border box.
func (rs *ResultSet) MemberBorder(p geom.Point) bool {
	return closureMember(rs.Border(), p)
}

// ParetoFrontUp returns the non-dominated minimal corners of Y↑.
func (rs *ResultSet) ParetoFrontUp() []geom.Point {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frontUp == nil {
		rs.frontUp = pareto.FromPoints(pareto.Minimize, corners(rs.yup, (*geom.Rectangle).Min))
	}

	return rs.frontUp.Points()
}

// ParetoFrontLow returns the non-dominated maximal corners of Y↓.
func (rs *ResultSet) ParetoFrontLow() []geom.Point {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.frontLow == nil {
		rs.frontLow = pareto.FromPoints(pareto.Maximize, corners(rs.ylow, (*geom.Rectangle).Max))
	}

	return rs.frontLow.Points()
}

// Summary is a volume report of a result set.
type Summary struct {
	Dim          int     `json:"dim"           yaml:"dim"`
	Space        float64 `json:"space"         yaml:"space"`
	Yup          float64 `json:"yup"           yaml:"yup"`
	Ylow         float64 `json:"ylow"          yaml:"ylow"`
	Border       float64 `json:"border"        yaml:"border"`
	BoxesYup     int     `json:"boxes_yup"     yaml:"boxes_yup"`
	BoxesYlow    int     `json:"boxes_ylow"    yaml:"boxes_ylow"`
	BoxesBorder  int     `json:"boxes_border"  yaml:"boxes_border"`
	BorderRatio  float64 `json:"border_ratio"  yaml:"border_ratio"`
	Simplified   bool    `json:"simplified"    yaml:"simplified"`
	FrontUpSize  int     `json:"front_up"      yaml:"front_up"`
	FrontLowSize int     `json:"front_low"     yaml:"front_low"`
}

// Summarize computes the volume report.
func (rs *ResultSet) Summarize() Summary {
	s := Summary{
		Dim:          rs.Dim(),
		Space:        rs.VolumeSpace(),
		Yup:          rs.VolumeYup(),
		Ylow:         rs.VolumeYlow(),
		Border:       rs.VolumeBorder(),
		BoxesYup:     len(rs.Yup()),
		BoxesYlow:    len(rs.Ylow()),
		BoxesBorder:  len(rs.Border()),
		Simplified:   rs.Simplified(),
		FrontUpSize:  len(rs.ParetoFrontUp()),
		FrontLowSize: len(rs.ParetoFrontLow()),
	}

	if s.Space > 0 {
		s.BorderRatio = s.Border / s.Space
	}

	return s
}

func (rs *ResultSet) invalidate() {
	rs.simplified = false
	rs.frontUp = nil
	rs.frontLow = nil
}

func closureMember(boxes []*geom.Rectangle, p geom.Point) bool {
	for _, b := range boxes {
		if b.ContainsClosed(p) {
			return true
		}
	}

	return false
}

func corners(boxes []*geom.Rectangle, pick func(*geom.Rectangle) geom.Point) []geom.Point {
	out := make([]geom.Point, len(boxes))
	for i, b := range boxes {
		out[i] = pick(b)
	}

	return out
}
