package learn

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/oracle"
)

// Mining cell labels.
const (
	labelGreen = "green"
	labelRed   = "red"
)

// SampleSize returns N = ceil(log(alpha) / log(1-p0)), the number of uniform
// samples that hit a region covering a p0 fraction of a cell with
// probability at least 1-alpha.
func SampleSize(p0, alpha float64) (int, error) {
	if !(p0 > 0 && p0 < 1) || !(alpha > 0 && alpha < 1) {
		return 0, ErrInvalidProbability
	}

	return int(math.Ceil(math.Log(alpha) / math.Log(1-p0))), nil
}

// sampling is the outcome of sampling one cell.
type sampling struct {
	hits  int
	drawn int
}

func (s sampling) ratio() float64 {
	if s.drawn == 0 {
		return 0
	}

	return float64(s.hits) / float64(s.drawn)
}

// mining classifies cells by sampling them: a cell where some sample
// satisfies every oracle is green (Y↑), one where none does is red (Y↓).
// The adaptive variant keeps splitting cells whose success ratio is below
// SuccessRatio until they reach the granularity.
type mining struct {
	st       *state
	samples  int
	adaptive bool
	ratio    float64
	grain    geom.Point
	seed     uint64

	ratios []float64
}

func newMining(st *state, opts MineOptions, samples int) *mining {
	grain := geom.Point(opts.Granularity)
	if len(grain) == 0 {
		grain = geom.Fill(st.space.Dim(), opts.Epsilon)
	}

	return &mining{
		st:       st,
		samples:  samples,
		adaptive: opts.OptLevel == MineAdaptive,
		ratio:    opts.SuccessRatio,
		grain:    grain,
		seed:     opts.Seed,
	}
}

// search draws samples from cell. The fixed variant stops at the first hit.
// The generator is seeded from the run seed and the cell, so results do not
// depend on which worker picks the cell.
func (l *mining) search(ctx context.Context, oracles []oracle.Oracle, cell *geom.Rectangle) (sampling, error) {
	rng := rand.New(rand.NewPCG(l.seed, cellHash(cell)))

	var s sampling

	for range l.samples {
		p := cell.Sample(rng)
		s.drawn++

		ok, err := satisfiesAll(ctx, oracles, p)
		if err != nil {
			return sampling{}, err
		}

		if !ok {
			continue
		}

		s.hits++

		if !l.adaptive {
			break
		}
	}

	return s, nil
}

func (l *mining) place(cell *geom.Rectangle, s sampling) string {
	l.ratios = append(l.ratios, s.ratio())

	switch {
	case s.hits == 0:
		l.st.addYlow(cell)

		return labelRed
	case !l.adaptive, s.ratio() >= l.ratio, cell.DiagVector().LessEq(l.grain):
		l.st.addYup(cell)

		return labelGreen
	default:
		l.st.border.push(cell.CellPartitionBin()...)

		return ""
	}
}

func (l *mining) absorb(*geom.Rectangle, sampling) {}

func (l *mining) finish(stats *Stats) {
	if len(l.ratios) == 0 {
		return
	}

	stats.SuccessMean, stats.SuccessStdDev = stat.MeanStdDev(l.ratios, nil)
	if math.IsNaN(stats.SuccessStdDev) {
		stats.SuccessStdDev = 0
	}
}

func satisfiesAll(ctx context.Context, oracles []oracle.Oracle, p geom.Point) (bool, error) {
	for _, o := range oracles {
		ok, err := o.Member(ctx, p)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func cellHash(cell *geom.Rectangle) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cell.Min().Key()))
	_, _ = h.Write([]byte(cell.Max().Key()))

	return h.Sum64()
}
