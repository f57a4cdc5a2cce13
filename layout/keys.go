package layout

import (
	"strconv"
	"sync"
)

// KeyAllocator hands out component keys per component type: the first
// LineChart is "LineChart0", the next "LineChart1".
type KeyAllocator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewKeyAllocator creates an allocator with all counters unset.
func NewKeyAllocator() *KeyAllocator {
	return &KeyAllocator{counters: make(map[string]int)}
}

// Next returns explicit when it is set, otherwise the next key for typ.
// Explicit keys do not advance the counter.
func (a *KeyAllocator) Next(typ, explicit string) string {
	if explicit != "" {
		return explicit
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.counters[typ]
	if ok {
		n++
	}
	a.counters[typ] = n
	return typ + strconv.Itoa(n)
}
