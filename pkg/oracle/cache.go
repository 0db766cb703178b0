package oracle

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sumatoshi-tech/paretolearn/pkg/geom"
)

// queryCache is a thread-safe LRU map from point keys to answers, with hit
// and miss counters.
type queryCache struct {
	answers *lru.Cache[string, bool]

	hits   atomic.Int64
	misses atomic.Int64
}

func (c *queryCache) get(key string) (bool, bool) {
	in, ok := c.answers.Get(key)
	if !ok {
		c.misses.Add(1)

		return false, false
	}

	c.hits.Add(1)

	return in, true
}

// Cached memoizes the answers of a wrapped oracle. Neighbouring cells share
// corners and diagonal points, so a learner asks the same point repeatedly.
// Errors are never cached. Clones share the cache.
type Cached struct {
	inner    Oracle
	borrowed bool
	cache    *queryCache
}

// NewCached wraps o with a cache of at most maxEntries answers. A
// non-positive maxEntries returns o unchanged.
func NewCached(o Oracle, maxEntries int) Oracle {
	if maxEntries <= 0 {
		return o
	}

	answers, err := lru.New[string, bool](maxEntries)
	if err != nil {
		return o
	}

	return &Cached{inner: o, cache: &queryCache{answers: answers}}
}

// Member implements Oracle.
func (c *Cached) Member(ctx context.Context, p geom.Point) (bool, error) {
	key := p.Key()

	if in, ok := c.cache.get(key); ok {
		return in, nil
	}

	in, err := c.inner.Member(ctx, p)
	if err != nil {
		return false, err
	}

	c.cache.answers.Add(key, in)

	return in, nil
}

// Dim implements Oracle.
func (c *Cached) Dim() int {
	return c.inner.Dim()
}

// VarNames implements Named.
func (c *Cached) VarNames() []string {
	return VarNames(c.inner)
}

// Clone implements Cloner. The clone shares the cache.
func (c *Cached) Clone() (Oracle, error) {
	clone := &Cached{inner: c.inner, borrowed: true, cache: c.cache}

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
func (c *Cached) Close() error {
	if c.borrowed {
		return nil
	}

	return Close(c.inner)
}

// Hits returns the number of answers served from the cache.
func (c *Cached) Hits() int64 { return c.cache.hits.Load() }

// Misses returns the number of answers computed by the wrapped oracle.
func (c *Cached) Misses() int64 { return c.cache.misses.Load() }

// Len returns the number of cached answers.
func (c *Cached) Len() int {
	return c.cache.answers.Len()
}
