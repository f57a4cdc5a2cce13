package layout

import (
	"maps"
	"sync"
)

// MemorySink records every layout snapshot and state update it receives.
type MemorySink struct {
	mu      sync.Mutex
	layouts [][]Cell
	updates []map[string]map[string]any
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// UpdateLayout records a snapshot.
func (m *MemorySink) UpdateLayout(cells []Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts = append(m.layouts, cells)
	return nil
}

// SetState records a state update.
func (m *MemorySink) SetState(update map[string]map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, maps.Clone(update))
	return nil
}

// Last returns the latest layout snapshot.
func (m *MemorySink) Last() []Cell {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.layouts) == 0 {
		return nil
	}
	return m.layouts[len(m.layouts)-1]
}

// Snapshots returns how many layout snapshots were received.
func (m *MemorySink) Snapshots() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.layouts)
}

// Updates returns the state updates in arrival order.
func (m *MemorySink) Updates() []map[string]map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]map[string]any(nil), m.updates...)
}
