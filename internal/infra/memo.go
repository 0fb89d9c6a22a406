package infra

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/olgasafonova/stash-mcp-server/metrics"
)

type outcome[V any] struct {
	value    V
	err      error
	panicked any
}

// Memo memoizes a function by string key. Both values and errors are cached
// until evicted; context cancellation is never cached. Concurrent misses for
// the same key share one call, which runs detached from any caller's
// cancellation so one caller giving up does not fail the others.
type Memo[V any] struct {
	name  string
	cache *Cache[outcome[V]]
	group singleflight.Group
}

// NewMemo creates a memoizer named for metrics, holding at most capacity outcomes
func NewMemo[V any](name string, capacity int) *Memo[V] {
	return &Memo[V]{
		name:  name,
		cache: NewCache[outcome[V]](capacity),
	}
}

// Do returns the cached outcome for key, calling fn on a miss. A panic in fn
// is re-raised in every caller sharing the flight and is not cached.
func (m *Memo[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if o, ok := m.cache.Get(key); ok {
		metrics.RecordCacheAccess(m.name, true)
		return o.value, o.err
	}
	metrics.RecordCacheAccess(m.name, false)

	flightCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		// A flight for this key may have finished between Get and DoChan.
		if o, ok := m.cache.peek(key); ok {
			return o, nil
		}
		o := m.call(flightCtx, fn)
		if o.panicked == nil && !isContextErr(o.err) {
			m.cache.Set(key, o)
			metrics.SetCacheSize(m.name, m.cache.Size())
		}
		return o, nil
	})

	select {
	case r := <-ch:
		o := r.Val.(outcome[V])
		if o.panicked != nil {
			panic(o.panicked)
		}
		return o.value, o.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// call runs fn, capturing a panic in the outcome instead of unwinding the flight
func (m *Memo[V]) call(ctx context.Context, fn func(context.Context) (V, error)) (o outcome[V]) {
	defer func() {
		if rec := recover(); rec != nil {
			o = outcome[V]{panicked: rec}
		}
	}()
	v, err := fn(ctx)
	return outcome[V]{value: v, err: err}
}

// Stats returns the underlying cache statistics
func (m *Memo[V]) Stats() CacheStats {
	return m.cache.Stats()
}

// Clear drops every cached outcome
func (m *Memo[V]) Clear() {
	m.cache.Clear()
	metrics.SetCacheSize(m.name, 0)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
