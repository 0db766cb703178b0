package oracle

import (
	"context"
	"sync/atomic"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// Func adapts a Go function to the Oracle interface. It is stateless and is
// shared between workers.
type Func struct {
	dim   int
	names []string
	fn    func(ctx context.Context, p geom.Point) (bool, error)
}

// FromPredicate wraps an infallible predicate.
func FromPredicate(dim int, pred func(p geom.Point) bool) *Func {
	return &Func{
		dim: dim,
		fn: func(_ context.Context, p geom.Point) (bool, error) {
			return pred(p), nil
		},
	}
}

// FromFunc wraps a predicate that may fail.
func FromFunc(dim int, fn func(ctx context.Context, p geom.Point) (bool, error)) *Func {
	return &Func{dim: dim, fn: fn}
}

// WithNames sets the axis labels and returns f.
func (f *Func) WithNames(names ...string) *Func {
	f.names = names

	return f
}

// Member implements Oracle.
func (f *Func) Member(ctx context.Context, p geom.Point) (bool, error) {
	return f.fn(ctx, p)
}

// Dim implements Oracle.
func (f *Func) Dim() int {
	return f.dim
}

// VarNames implements Named.
func (f *Func) VarNames() []string {
	return f.names
}

// negated flips the answer of another oracle. A borrowed inner oracle is
// not closed.
type negated struct {
	inner    Oracle
	borrowed bool
}

// Negate returns the complement of o. A downward-closed predicate becomes an
// upward-closed one, which is what the learners expect. Cloning and closing
// are forwarded to o.
func Negate(o Oracle) Oracle {
	return &negated{inner: o}
}

func (n *negated) Member(ctx context.Context, p geom.Point) (bool, error) {
	ok, err := n.inner.Member(ctx, p)
	if err != nil {
		return false, err
	}

	return !ok, nil
}

func (n *negated) Dim() int {
	return n.inner.Dim()
}

func (n *negated) VarNames() []string {
	return VarNames(n.inner)
}

func (n *negated) Clone() (Oracle, error) {
	cloner, ok := n.inner.(Cloner)
	if !ok {
		return &negated{inner: n.inner, borrowed: true}, nil
	}

	c, err := cloner.Clone()
	if err != nil {
		return nil, err
	}

	return Negate(c), nil
}

func (n *negated) Close() error {
	if n.borrowed {
		return nil
	}

	return Close(n.inner)
}

// Counting counts the membership queries and failures of a wrapped oracle.
// Clones share the counters, so a run's total is visible on the original.
type Counting struct {
	inner    Oracle
	borrowed bool
	queries  *atomic.Int64
	failures *atomic.Int64
}

// NewCounting wraps o.
func NewCounting(o Oracle) *Counting {
	return &Counting{inner: o, queries: new(atomic.Int64), failures: new(atomic.Int64)}
}

// Member implements Oracle.
func (c *Counting) Member(ctx context.Context, p geom.Point) (bool, error) {
	c.queries.Add(1)

	ok, err := c.inner.Member(ctx, p)
	if err != nil {
		c.failures.Add(1)
	}

	return ok, err
}

// Dim implements Oracle.
func (c *Counting) Dim() int {
	return c.inner.Dim()
}

// VarNames implements Named.
func (c *Counting) VarNames() []string {
	return VarNames(c.inner)
}

// Clone implements Cloner. The clone shares the counters.
func (c *Counting) Clone() (Oracle, error) {
	clone := &Counting{inner: c.inner, borrowed: true, queries: c.queries, failures: c.failures}

	if cloner, ok := c.inner.(Cloner); ok {
		inner, err := cloner.Clone()
		if err != nil {
			return nil, err
		}

		clone.inner, clone.borrowed = inner, false
	}

	return clone, nil
}

// Close releases the wrapped oracle unless it is shared with the original.
func (c *Counting) Close() error {
	if c.borrowed {
		return nil
	}

	return Close(c.inner)
}

// Queries returns the number of Member calls.
func (c *Counting) Queries() int64 {
	return c.queries.Load()
}

// Failures returns the number of Member calls that returned an error.
func (c *Counting) Failures() int64 {
	return c.failures.Load()
}
