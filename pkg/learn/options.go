// Package learn approximates the boundary between the true and false
// regions of monotone predicates over an axis-aligned box.
//
// Three learners share one step loop. The partition learner
// (Search2D/3D/ND) bisects cell diagonals of one upward-closed oracle. The
// intersection learner (SearchIntersection*) locates the region where an
// upward-closed and a downward-closed oracle hold together. The mining
// learner (Mine2D/3D/ND) samples cells to find where several oracles are
// jointly satisfied. All of them grow a [resultset.ResultSet] from the
// largest undecided cell first until the border volume falls below Delta
// of the space, MaxSteps cells have been processed, or the border is empty.
package learn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/paretolearn/pkg/observability"
)

// Precondition failures.
var (
	ErrInvalidOptions     = errors.New("invalid learner options")
	ErrDimensionMismatch  = errors.New("oracle dimension mismatch")
	ErrNoOracles          = errors.New("no oracles")
	ErrInvalidInterval    = errors.New("invalid interval")
	ErrInvalidProbability = errors.New("probability must lie in (0, 1)")
)

// Default option values.
const (
	DefaultEpsilon  = 1e-5
	DefaultDelta    = 1e-5
	DefaultMaxSteps = 10000

	// DefaultP0 and DefaultAlpha give N = 299 samples per mined cell.
	DefaultP0           = 0.01
	DefaultAlpha        = 0.05
	DefaultNumCells     = 25
	DefaultSuccessRatio = 0.5
)

// Partition learner optimisation levels.
const (
	// OptBaseline pops a cell, bisects and splits.
	OptBaseline = 0
	// OptShadow also absorbs the shadow of every certified extended cone
	// from the overlapping border cells.
	OptShadow = 1
	// OptArchive skips absorption for cones already covered by an earlier
	// one, tracked in Pareto archives of certified corners.
	OptArchive = 2
	// OptLattice finds overlapping border cells through corner indexes
	// instead of a scan.
	OptLattice = 3
)

// Intersection learner optimisation levels.
const (
	// InterPlain certifies only the midpoint found by the search.
	InterPlain = 0
	// InterExpand grows the certified point into a segment.
	InterExpand = 1
	// InterAbsorb also absorbs the negated cones of NO_INTER cells from
	// the border.
	InterAbsorb = 2
)

// Mining variants.
const (
	// MineFixed classifies a fixed grid of cells.
	MineFixed = 0
	// MineAdaptive refines undecided cells down to a granularity.
	MineAdaptive = 1
)

// Observer receives progress after every batch of steps. With Options.Blocking
// the learner waits for it to return before continuing; otherwise it runs on a
// separate goroutine and updates arriving while it is busy are dropped.
type Observer func(ctx context.Context, p Progress)

// Options configures a learner run. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// Epsilon is the bisection stop distance along a cell diagonal.
	Epsilon float64 `validate:"gt=0"`

	// Delta stops the run once the border volume drops below Delta times the
	// space volume.
	Delta float64 `validate:"gte=0,lte=1"`

	// MaxSteps caps the number of processed cells. Failed cells count.
	MaxSteps int `validate:"gt=0"`

	// OptLevel selects the optimisation level; its range depends on the
	// learner.
	OptLevel int `validate:"gte=0,lte=3"`

	// Parallel processes batches of cells on a worker pool with one oracle
	// clone per worker.
	Parallel bool

	// Workers bounds the pool size. Zero means runtime.NumCPU.
	Workers int `validate:"gte=0"`

	// Observer, Blocking and Sleep pace the run for an external viewer.
	Observer Observer
	Blocking bool
	Sleep    time.Duration `validate:"gte=0"`

	// Logging writes a result bundle per batch into a fresh directory under
	// LogDir (os.TempDir when empty). The directory is reported in Stats.
	Logging bool
	LogDir  string

	// Simplify runs simplify and fusion on the returned result set.
	Simplify bool

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.LearnerMetrics
}

// MineOptions configures the mining learner. OptLevel selects MineFixed or
// MineAdaptive.
type MineOptions struct {
	Options

	// P0 is the minimum volume fraction of a cell worth detecting.
	P0 float64 `validate:"gt=0,lt=1"`

	// Alpha is the accepted probability of missing such a fraction.
	Alpha float64 `validate:"gt=0,lt=1"`

	// NumCells is the approximate number of fixed grid cells.
	NumCells int `validate:"gt=0"`

	// SuccessRatio turns an adaptive cell green once this fraction of its
	// samples satisfies every oracle.
	SuccessRatio float64 `validate:"gt=0,lte=1"`

	// Granularity turns an adaptive cell green once its diagonal vector is
	// componentwise at most this. Empty means no granularity floor beyond
	// Epsilon on every axis.
	Granularity []float64 `validate:"omitempty,dive,gt=0"`

	// Seed makes sampling reproducible.
	Seed uint64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Epsilon:  DefaultEpsilon,
		Delta:    DefaultDelta,
		MaxSteps: DefaultMaxSteps,
		Simplify: true,
	}
}

// DefaultMineOptions returns mining options around DefaultOptions.
func DefaultMineOptions() MineOptions {
	return MineOptions{
		Options:      DefaultOptions(),
		P0:           DefaultP0,
		Alpha:        DefaultAlpha,
		NumCells:     DefaultNumCells,
		SuccessRatio: DefaultSuccessRatio,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the option ranges.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return nil
}

// Validate checks the option ranges, including the sampling probabilities.
func (o MineOptions) Validate() error {
	if o.P0 <= 0 || o.P0 >= 1 || o.Alpha <= 0 || o.Alpha >= 1 {
		return fmt.Errorf("%w: %w: p0=%g alpha=%g", ErrInvalidOptions, ErrInvalidProbability, o.P0, o.Alpha)
	}

	err := validate.Struct(o)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	if o.OptLevel > MineAdaptive {
		return fmt.Errorf("%w: mining level %d", ErrInvalidOptions, o.OptLevel)
	}

	return nil
}

func (o Options) validateLevel(maxLevel int) error {
	err := o.Validate()
	if err != nil {
		return err
	}

	if o.OptLevel > maxLevel {
		return fmt.Errorf("%w: level %d above %d", ErrInvalidOptions, o.OptLevel, maxLevel)
	}

	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}
