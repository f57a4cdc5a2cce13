package layout

import (
	"maps"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
)

// ============================================================================
// LAYOUT - ordered cells keyed by "key", mirrored to a Sink
// ============================================================================
// A cell is whatever a block or component renders. Rendering the same key
// again replaces the cell in place; new keys append. Every change pushes the
// full snapshot to the sink.
// ============================================================================

// Cell is one rendered layout entry. It always carries a string "key".
type Cell map[string]any

// Key returns the cell key, "" when missing.
func (c Cell) Key() string {
	k, _ := c["key"].(string)
	return k
}

// Sink receives layout snapshots.
type Sink interface {
	UpdateLayout(cells []Cell) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(cells []Cell) error

// UpdateLayout calls f.
func (f SinkFunc) UpdateLayout(cells []Cell) error { return f(cells) }

// ErrNoKey is returned for cells without a string key.
var ErrNoKey = errors.New("layout cell has no key")

// Layout holds the current cells.
type Layout struct {
	mu    sync.Mutex
	cells []Cell
	sink  Sink
	log   logr.Logger
}

// New creates an empty layout. A nil sink discards snapshots.
func New(sink Sink, log logr.Logger) *Layout {
	return &Layout{sink: sink, log: log}
}

// Upsert replaces the cell with the same key, or appends it.
func (l *Layout) Upsert(cell Cell) error {
	key := cell.Key()
	if key == "" {
		return ErrNoKey
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for i, c := range l.cells {
		if c.Key() == key {
			l.cells[i] = cell
			found = true
		}
	}
	if !found {
		l.cells = append(l.cells, cell)
	}
	l.log.V(2).Info("render", "key", key, "replaced", found, "cells", len(l.cells))
	return l.publish()
}

// Remove drops the cells with the given keys.
func (l *Layout) Remove(keys ...string) error {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.cells[:0]
	for _, c := range l.cells {
		if !drop[c.Key()] {
			kept = append(kept, c)
		}
	}
	clear(l.cells[len(kept):])
	l.cells = kept
	return l.publish()
}

// Cells returns a snapshot of the current cells.
func (l *Layout) Cells() []Cell {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Len returns the number of cells.
func (l *Layout) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cells)
}

func (l *Layout) snapshot() []Cell {
	out := make([]Cell, len(l.cells))
	for i, c := range l.cells {
		out[i] = maps.Clone(c)
	}
	return out
}

func (l *Layout) publish() error {
	if l.sink == nil {
		return nil
	}
	return errors.Wrap(l.sink.UpdateLayout(l.snapshot()), "update layout")
}
