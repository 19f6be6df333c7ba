package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/archlog/pkg/observability"
)

// Memo is a run-scoped, populate-on-miss map. Each key is computed at most
// once while it succeeds: concurrent callers for the same key share a single
// in-flight computation, and later callers get the stored value.
//
// Errors are returned to every waiter of the failing computation but are not
// stored, so a later call retries.
//
// The shared computation is detached from the callers' contexts and bound by
// Timeout instead, so a caller that gives up never fails the others; it just
// stops waiting.
//
// The zero value is ready to use. A Memo must not be copied after first use.
type Memo[V any] struct {
	// Name labels cache hooks (e.g. "ref", "tags").
	Name string
	// Timeout bounds one computation. Zero uses DefaultMemoTimeout.
	Timeout time.Duration

	mu    sync.Mutex
	vals  map[string]V
	group singleflight.Group
}

// DefaultMemoTimeout bounds a memo computation no caller is waiting on.
const DefaultMemoTimeout = 2 * time.Minute

// NewMemo returns an empty memo labelled name.
func NewMemo[V any](name string) *Memo[V] {
	return &Memo[V]{Name: name}
}

// Do returns the value for key, calling fn on a miss.
func (m *Memo[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := m.Load(key); ok {
		observability.Cache().OnCacheHit(ctx, m.Name)
		return v, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		if v, ok := m.Load(key); ok {
			return v, nil
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout())
		defer cancel()
		observability.Cache().OnCacheMiss(cctx, m.Name)
		v, err := fn(cctx)
		if err != nil {
			return v, err
		}
		m.mu.Lock()
		if m.vals == nil {
			m.vals = make(map[string]V)
		}
		m.vals[key] = v
		m.mu.Unlock()
		return v, nil
	})
	select {
	case res := <-ch:
		v, _ := res.Val.(V)
		return v, res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (m *Memo[V]) timeout() time.Duration {
	if m.Timeout <= 0 {
		return DefaultMemoTimeout
	}
	return m.Timeout
}

// Load returns the stored value for key without computing it.
func (m *Memo[V]) Load(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	return v, ok
}

// Len reports how many keys are stored.
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vals)
}
