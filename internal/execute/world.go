package execute

import (
	"sort"
	"sync"

	"github.com/joeycumines/one-shot-planner/internal/planner"
)

// World is a thread-safe, mutable fact store that plans are executed
// against. Unlike a planner.State it is not part of a search space; rules
// change it in place.
//
// The zero value is an empty world.
type World struct {
	mu   sync.RWMutex
	data planner.Facts
}

// NewWorld returns a world holding the merged fragments.
func NewWorld(fragments ...planner.Facts) (*World, error) {
	facts, err := planner.Merge(fragments...)
	if err != nil {
		return nil, err
	}
	return &World{data: facts}, nil
}

func (w *World) init() {
	if w.data == nil {
		w.data = make(planner.Facts)
	}
}

// Get returns the value of key, or nil if it is absent.
func (w *World) Get(key string) any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.data[key]
}

// Set stores a normalized value under key.
func (w *World) Set(key string, value any) error {
	v, err := planner.Normalize(value)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()
	w.data[key] = v
	return nil
}

// Has reports whether key is set, including explicit nils.
func (w *World) Has(key string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.data[key]
	return ok
}

// Delete removes key.
func (w *World) Delete(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.data, key)
}

// Keys returns the set keys in sorted order.
func (w *World) Keys() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	keys := make([]string, 0, len(w.data))
	for k := range w.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of set keys.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.data)
}

// Snapshot returns a copy of the facts. Fact values are immutable scalars,
// so the copy is independent of the world.
func (w *World) Snapshot() planner.Facts {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(planner.Facts, len(w.data))
	for k, v := range w.data {
		out[k] = v
	}
	return out
}

// Matches reports whether every key of pattern has an equal value in the
// world. Absent keys compare as nil.
func (w *World) Matches(pattern planner.Facts) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for k, want := range pattern {
		if !planner.Equal(w.data[k], want) {
			return false
		}
	}
	return true
}

// apply writes an already-normalized patch under a single lock.
func (w *World) apply(patch planner.Facts) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()
	for k, v := range patch {
		w.data[k] = v
	}
}
