package model

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/treekit-dev/treekit/tree"
)

// composedEntry is the private schema tag recorded for a composed type. It
// is discoverable only through this package and drives the extension case.
type composedEntry struct {
	name   string
	schema *tree.Model
}

type typeRegistry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*composedEntry
}

var composedTypes = &typeRegistry{entries: make(map[reflect.Type]*composedEntry)}

func (r *typeRegistry) lookup(t reflect.Type) (*composedEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	return e, ok
}

func (r *typeRegistry) register(t reflect.Type, e *composedEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[t]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyComposed, t)
	}
	r.entries[t] = e
	return nil
}

// reset clears the registry. Tests only.
func (r *typeRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[reflect.Type]*composedEntry)
}
