package learn

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
	"github.com/Sumatoshi-tech/paretolearn/pkg/persist"
	"github.com/Sumatoshi-tech/paretolearn/pkg/resultset"
)

const (
	snapshotDirPrefix = "paretolearn-"
	snapshotPattern   = "step-%06d.zip"
	finalSnapshot     = "result.zip"
	statsBasename     = "stats"
	snapshotDirPerm   = 0o750
)

// Stats describes a finished run.
type Stats struct {
	RunID   string `json:"run_id"`
	Learner string `json:"learner"`
	Workers int    `json:"workers"`

	// Steps is the number of processed cells, failed ones included.
	Steps int `json:"steps"`
	// Failures is the number of cells returned to the border after an
	// oracle error.
	Failures int `json:"failures"`

	Queries       int64 `json:"queries"`
	QueryFailures int64 `json:"query_failures"`

	// Outcomes counts cells per classification: intersection outcomes for
	// the intersection learner, green and red for the mining learner.
	Outcomes map[string]int `json:"outcomes,omitempty"`

	// SuccessMean and SuccessStdDev summarize the per-cell sample success
	// ratios of a mining run.
	SuccessMean   float64 `json:"success_mean,omitempty"`
	SuccessStdDev float64 `json:"success_stddev,omitempty"`

	BorderRatio float64       `json:"border_ratio"`
	Elapsed     time.Duration `json:"elapsed"`
	SnapshotDir string        `json:"snapshot_dir,omitempty"`
}

// Progress is handed to the Observer after every batch.
type Progress struct {
	Step  int
	Cells []*geom.Rectangle
	// Result is a snapshot of the partition after the batch. It shares the
	// boxes with the running learner, which never mutates them.
	Result *resultset.ResultSet
}

// pacer delivers progress to the observer and sleeps between batches.
type pacer struct {
	observer Observer
	blocking bool
	sleep    time.Duration

	queue chan Progress
	done  chan struct{}
}

func newPacer(ctx context.Context, opts Options) *pacer {
	p := &pacer{observer: opts.Observer, blocking: opts.Blocking, sleep: opts.Sleep}

	if p.observer != nil && !p.blocking {
		p.queue = make(chan Progress, 1)
		p.done = make(chan struct{})

		go func() {
			defer close(p.done)

			for prog := range p.queue {
				p.observer(ctx, prog)
			}
		}()
	}

	return p
}

func (p *pacer) wants() bool {
	return p.observer != nil
}

func (p *pacer) notify(ctx context.Context, prog Progress) error {
	switch {
	case p.observer == nil:
	case p.blocking:
		p.observer(ctx, prog)
	default:
		select {
		case p.queue <- prog:
		default:
		}
	}

	if p.sleep <= 0 {
		return nil
	}

	timer := time.NewTimer(p.sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// close waits for the asynchronous observer to drain.
func (p *pacer) close() {
	if p.queue == nil {
		return
	}

	close(p.queue)
	<-p.done
}

// snapshotter writes one bundle per batch and the final stats into a run
// directory.
type snapshotter struct {
	dir   string
	stats *persist.Persister[Stats]
}

func newSnapshotter(parent, runID string) (*snapshotter, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	dir := filepath.Join(parent, snapshotDirPrefix+runID)

	err := os.MkdirAll(dir, snapshotDirPerm)
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	return &snapshotter{dir: dir, stats: persist.NewPersister[Stats](statsBasename, persist.NewJSONCodec())}, nil
}

func (s *snapshotter) step(step int, rs *resultset.ResultSet) error {
	err := rs.Save(filepath.Join(s.dir, fmt.Sprintf(snapshotPattern, step)), resultset.LZ4)
	if err != nil {
		return fmt.Errorf("snapshot step %d: %w", step, err)
	}

	return nil
}

func (s *snapshotter) finish(rs *resultset.ResultSet, stats Stats) error {
	err := rs.Save(filepath.Join(s.dir, finalSnapshot), resultset.Deflate)
	if err != nil {
		return fmt.Errorf("snapshot result: %w", err)
	}

	err = s.stats.Save(s.dir, &stats)
	if err != nil {
		return fmt.Errorf("snapshot stats: %w", err)
	}

	return nil
}

// LoadStats reads the stats written by a logged run from its snapshot dir.
func LoadStats(dir string) (*Stats, error) {
	return persist.NewPersister[Stats](statsBasename, persist.NewJSONCodec()).Load(dir)
}
