package engine

import "strings"

// ============================================================================
// ADAPTER - typed values to records
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewAdapter[Run]().
//	    Field("run.hash", func(r Run) any { return r.Hash }).
//	    Field("run.hparams.lr", func(r Run) any { return r.LearningRate })
//
//	records := adapter.Bind(runs)
//	result := eng.Group("color", records, engine.ByFieldPaths("run.hparams.lr"), "")
//
// ============================================================================

// Adapter builds records from typed values through registered accessors.
// Declare once, bind many times.
type Adapter[T any] struct {
	order  []string
	fields map[string]func(T) any
}

// NewAdapter creates a new adapter for type T.
func NewAdapter[T any]() *Adapter[T] {
	return &Adapter[T]{fields: make(map[string]func(T) any)}
}

// Field registers an accessor for a dot path. Registering a path again
// replaces its accessor.
func (a *Adapter[T]) Field(path string, fn func(T) any) *Adapter[T] {
	if _, exists := a.fields[path]; !exists {
		a.order = append(a.order, path)
	}
	a.fields[path] = fn
	return a
}

// Paths returns the registered paths in registration order.
func (a *Adapter[T]) Paths() []string { return a.order }

// Bind converts data into normalized records, one per element.
func (a *Adapter[T]) Bind(data []T) []Record {
	records := make([]Record, len(data))
	for i, v := range data {
		r := Record{}
		for _, path := range a.order {
			SetPath(r, strings.Split(path, "."), Normalize(a.fields[path](v)))
		}
		records[i] = r
	}
	return records
}

// SetPath stores v under the nested keys of path, creating intermediate
// objects and replacing non-object intermediates.
func SetPath(r Record, path []string, v any) {
	if len(path) == 0 {
		return
	}
	m := map[string]any(r)
	for _, seg := range path[:len(path)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
