package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
	attrLearner = "learner"
	attrRunID   = "run_id"
)

// Run identifies one learner run in log records.
type Run struct {
	Learner string
	ID      string
}

type runKey struct{}

// WithRun returns a context carrying run. Records logged through a
// TracingHandler with that context are tagged with learner and run_id.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// RunFromContext returns the run attached by WithRun.
func RunFromContext(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey{}).(Run)

	return run, ok
}

func (r Run) attrs() []slog.Attr {
	return []slog.Attr{slog.String(attrLearner, r.Learner), slog.String(attrRunID, r.ID)}
}

// RunLogger returns a logger that tags records with the run in ctx. Loggers
// backed by a TracingHandler already read the run from the record context
// and are returned unchanged.
func RunLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if _, ok := logger.Handler().(*TracingHandler); ok {
		return logger
	}

	run, ok := RunFromContext(ctx)
	if !ok {
		return logger
	}

	return slog.New(logger.Handler().WithAttrs(run.attrs()))
}

// TracingHandler is an [slog.Handler] that tags every record with the
// service metadata, the OpenTelemetry span of the record context and the
// learner run carried by that context.
//
// Service attributes are attached at construction so they stay at the top
// level under WithGroup. Span and run attributes are resolved per record,
// which lets one logger serve concurrent runs.
type TracingHandler struct {
	root  slog.Handler
	inner slog.Handler
	// ops replays WithAttrs/WithGroup on root. Only needed once a group is
	// open, since context attributes must stay outside the group.
	ops     []handlerOp
	grouped bool
}

// handlerOp is one WithAttrs (group empty) or WithGroup call.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

// NewTracingHandler wraps inner with service metadata and per-record trace
// and run context.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	root := inner.WithAttrs(attrs)

	return &TracingHandler{root: root, inner: root}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle tags record with the span and run found in ctx, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	extra := contextAttrs(ctx)
	target := th.inner

	switch {
	case len(extra) == 0:
	case th.grouped:
		target = replay(th.root.WithAttrs(extra), th.ops)
	default:
		record.AddAttrs(extra...)
	}

	err := target.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a handler with attrs added to the inner handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return th.derive(handlerOp{attrs: attrs}, th.inner.WithAttrs(attrs))
}

// WithGroup returns a handler that nests later attributes under name.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return th
	}

	next := th.derive(handlerOp{group: name}, th.inner.WithGroup(name))
	next.grouped = true

	return next
}

func (th *TracingHandler) derive(op handlerOp, inner slog.Handler) *TracingHandler {
	ops := make([]handlerOp, len(th.ops), len(th.ops)+1)
	copy(ops, th.ops)

	return &TracingHandler{root: th.root, inner: inner, ops: append(ops, op), grouped: th.grouped}
}

func replay(h slog.Handler, ops []handlerOp) slog.Handler {
	for _, op := range ops {
		if op.group != "" {
			h = h.WithGroup(op.group)
		} else {
			h = h.WithAttrs(op.attrs)
		}
	}

	return h
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var out []slog.Attr

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		out = append(out,
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if run, ok := RunFromContext(ctx); ok {
		out = append(out, run.attrs()...)
	}

	return out
}
