package view

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownMode is returned by Get for a mode nothing registered.
var ErrUnknownMode = errors.New("unknown view mode")

var (
	registry = make(map[Mode]View)
	mu       sync.RWMutex
)

// Register adds a view to the registry.
func Register(v View) {
	mu.Lock()
	defer mu.Unlock()
	registry[v.Name()] = v
}

// Get retrieves a view by mode.
func Get(mode Mode) (View, error) {
	mu.RLock()
	defer mu.RUnlock()

	v, ok := registry[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	return v, nil
}

// List returns all registered modes, sorted.
func List() []Mode {
	mu.RLock()
	defer mu.RUnlock()

	modes := make([]Mode, 0, len(registry))
	for m := range registry {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// All returns all registered views, sorted by mode.
func All() []View {
	modes := List()

	mu.RLock()
	defer mu.RUnlock()

	views := make([]View, 0, len(modes))
	for _, m := range modes {
		views = append(views, registry[m])
	}
	return views
}
