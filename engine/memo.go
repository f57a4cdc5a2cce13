package engine

import (
	"github.com/go-logr/logr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ============================================================================
// MEMO - bounded memoization keyed by (function, argument hash)
// ============================================================================

type memoKey struct {
	fn   string
	args string
}

// Memo caches computed results with least-recently-used eviction.
// A nil *Memo is valid and caches nothing.
type Memo[V any] struct {
	cache *lru.Cache[memoKey, V]
	log   logr.Logger
}

// NewMemo creates a memo holding at most size entries. It returns nil, a
// disabled memo, when size is zero or less.
func NewMemo[V any](size int, log logr.Logger) *Memo[V] {
	if size <= 0 {
		return nil
	}
	m := &Memo[V]{log: log}
	// lru.NewWithEvict only fails for non-positive sizes
	m.cache, _ = lru.NewWithEvict[memoKey, V](size, func(k memoKey, _ V) {
		m.log.V(2).Info("memo entry evicted", "fn", k.fn, "key", k.args)
	})
	return m
}

// Do returns the cached value for (fn, args), computing and storing it on a
// miss.
func (m *Memo[V]) Do(fn, args string, compute func() V) V {
	if m == nil {
		return compute()
	}
	k := memoKey{fn: fn, args: args}
	if v, ok := m.cache.Get(k); ok {
		m.log.V(2).Info("memo hit", "fn", fn, "key", args)
		return v
	}
	v := compute()
	m.cache.Add(k, v)
	return v
}

// Len returns the number of cached entries.
func (m *Memo[V]) Len() int {
	if m == nil {
		return 0
	}
	return m.cache.Len()
}

// Purge drops every cached entry.
func (m *Memo[V]) Purge() {
	if m == nil {
		return
	}
	m.cache.Purge()
}
