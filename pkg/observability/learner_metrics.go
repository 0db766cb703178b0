package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricStepsTotal       = "paretolearn.steps.total"
	metricQueriesTotal     = "paretolearn.oracle.queries.total"
	metricFailuresTotal    = "paretolearn.oracle.failures.total"
	metricStepDuration     = "paretolearn.step.duration.seconds"
	metricBorderVolumeRate = "paretolearn.border.volume.ratio"

	attrLearner = "learner"
	attrStatus  = "status"

	statusOK     = "ok"
	statusFailed = "failed"
)

// stepBucketBoundaries covers 100µs to 60s: a step is one diagonal search,
// from an in-memory predicate to an external monitor run.
var stepBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60}

// LearnerMetrics holds OTel instruments for learner runs.
// A nil *LearnerMetrics records nothing.
type LearnerMetrics struct {
	stepsTotal   metric.Int64Counter
	queriesTotal metric.Int64Counter
	failures     metric.Int64Counter
	stepDuration metric.Float64Histogram
	borderRatio  metric.Float64Gauge
}

// NewLearnerMetrics creates learner metric instruments from the given meter.
func NewLearnerMetrics(mt metric.Meter) (*LearnerMetrics, error) {
	steps, err := mt.Int64Counter(metricStepsTotal,
		metric.WithDescription("Total cells processed by the learner"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStepsTotal, err)
	}

	queries, err := mt.Int64Counter(metricQueriesTotal,
		metric.WithDescription("Total oracle membership queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesTotal, err)
	}

	failures, err := mt.Int64Counter(metricFailuresTotal,
		metric.WithDescription("Total oracle membership queries that returned an error"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFailuresTotal, err)
	}

	stepDur, err := mt.Float64Histogram(metricStepDuration,
		metric.WithDescription("Per-cell search duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stepBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStepDuration, err)
	}

	ratio, err := mt.Float64Gauge(metricBorderVolumeRate,
		metric.WithDescription("Border volume as a fraction of the search space"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBorderVolumeRate, err)
	}

	return &LearnerMetrics{
		stepsTotal:   steps,
		queriesTotal: queries,
		failures:     failures,
		stepDuration: stepDur,
		borderRatio:  ratio,
	}, nil
}

// RecordStep records one processed cell and how long its search took.
func (m *LearnerMetrics) RecordStep(ctx context.Context, learner string, d time.Duration, failed bool) {
	if m == nil {
		return
	}

	status := statusOK
	if failed {
		status = statusFailed
	}

	attrs := metric.WithAttributes(
		attribute.String(attrLearner, learner),
		attribute.String(attrStatus, status),
	)

	m.stepsTotal.Add(ctx, 1, attrs)
	m.stepDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordQueries adds oracle query and failure counts.
func (m *LearnerMetrics) RecordQueries(ctx context.Context, learner string, queries, failures int64) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrLearner, learner))

	if queries > 0 {
		m.queriesTotal.Add(ctx, queries, attrs)
	}

	if failures > 0 {
		m.failures.Add(ctx, failures, attrs)
	}
}

// RecordBorderRatio sets the current border volume ratio.
func (m *LearnerMetrics) RecordBorderRatio(ctx context.Context, learner string, ratio float64) {
	if m == nil {
		return
	}

	m.borderRatio.Record(ctx, ratio, metric.WithAttributes(attribute.String(attrLearner, learner)))
}
