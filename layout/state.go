package layout

import (
	"maps"
	"sync"

	"github.com/cockroachdb/errors"
)

// StateSink receives component state updates, keyed by component key.
type StateSink interface {
	SetState(update map[string]map[string]any) error
}

// State keeps per-component state. Updates merge shallowly.
type State struct {
	mu     sync.Mutex
	values map[string]map[string]any
	sink   StateSink
}

// NewState creates an empty store. A nil sink keeps updates local.
func NewState(sink StateSink) *State {
	return &State{values: make(map[string]map[string]any), sink: sink}
}

// Get returns a copy of a component's state, empty when unset.
func (s *State) Get(key string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return maps.Clone(v)
	}
	return map[string]any{}
}

// Set merges partial into the state of key and forwards the partial update.
func (s *State) Set(key string, partial map[string]any) error {
	s.mu.Lock()
	cur, ok := s.values[key]
	if !ok {
		cur = make(map[string]any, len(partial))
		s.values[key] = cur
	}
	maps.Copy(cur, partial)
	s.mu.Unlock()

	if s.sink == nil {
		return nil
	}
	update := map[string]map[string]any{key: maps.Clone(partial)}
	return errors.Wrapf(s.sink.SetState(update), "set state of %s", key)
}
