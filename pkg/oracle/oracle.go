// Package oracle defines the membership-query contract consumed by the
// learners and a few generic oracle adapters.
//
// An oracle answers whether a point belongs to the upward-closed set Y↑ of a
// monotone predicate: if Member(p) is true and p <= q then Member(q) is true.
// Downward-closed predicates are adapted with [Negate]. Monotonicity is the
// caller's contract and is never checked.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// Sentinel errors.
var (
	// ErrDimensionMismatch is returned when a point or file disagrees with
	// the oracle dimension.
	ErrDimensionMismatch = errors.New("oracle dimension mismatch")
	// ErrParse is returned for malformed oracle text files.
	ErrParse = errors.New("oracle parse error")
)

// Oracle is a monotone membership predicate.
type Oracle interface {
	// Member reports whether p lies in the upward-closed region.
	Member(ctx context.Context, p geom.Point) (bool, error)
	// Dim returns the dimension of the points the oracle accepts.
	Dim() int
}

// Named is implemented by oracles that label their axes.
type Named interface {
	VarNames() []string
}

// Cloner is implemented by stateful oracles that must not be shared between
// goroutines. Each clone owns its resources and is released with Close when
// it implements io.Closer.
type Cloner interface {
	Clone() (Oracle, error)
}

// Persistent is implemented by oracles that can be loaded from and stored to
// files, either as UTF-8 text or as a binary stream.
type Persistent interface {
	FromFile(path string, humanReadable bool) error
	ToFile(path string, appendMode, humanReadable bool) error
}

// VarNames returns the axis labels of o, defaulting to x0..x{n-1}.
func VarNames(o Oracle) []string {
	if named, ok := o.(Named); ok {
		if names := named.VarNames(); len(names) == o.Dim() {
			return names
		}
	}

	names := make([]string, o.Dim())
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}

	return names
}

// CheckDim returns ErrDimensionMismatch unless every oracle has dimension n.
func CheckDim(n int, oracles ...Oracle) error {
	for _, o := range oracles {
		if o.Dim() != n {
			return fmt.Errorf("%w: oracle has dimension %d, space has %d", ErrDimensionMismatch, o.Dim(), n)
		}
	}

	return nil
}

// CloneN returns n oracles for n workers. Oracles implementing Cloner are
// cloned n times; the rest are shared. The release function closes every
// clone it created and never touches o itself.
func CloneN(o Oracle, n int) ([]Oracle, func() error, error) {
	out := make([]Oracle, n)

	cloner, ok := o.(Cloner)
	if !ok {
		for i := range out {
			out[i] = o
		}

		return out, func() error { return nil }, nil
	}

	for i := range out {
		c, err := cloner.Clone()
		if err != nil {
			closeErr := closeAll(out[:i])

			return nil, nil, errors.Join(fmt.Errorf("clone oracle: %w", err), closeErr)
		}

		out[i] = c
	}

	return out, func() error { return closeAll(out) }, nil
}

// Close releases o when it implements io.Closer.
func Close(o Oracle) error {
	if c, ok := o.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

func closeAll(oracles []Oracle) error {
	var errs []error

	for _, o := range oracles {
		err := Close(o)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
