package tree

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Storage holds a node's property values. The default store is map-backed;
// Adopt swaps in a replacement store (for example one backed by a caller's
// struct) after migrating the current values into it.
type Storage interface {
	Get(name string) (any, bool)
	Set(name string, v any) error
}

// mapStorage is the default property store.
type mapStorage struct {
	values map[string]any
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: make(map[string]any)}
}

func (s *mapStorage) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *mapStorage) Set(name string, v any) error {
	s.values[name] = v
	return nil
}

// Node is a managed instance of a Model.
type Node struct {
	id    uuid.UUID
	model *Model

	// dispatch serializes action execution on this node.
	dispatch sync.Mutex

	mu       sync.RWMutex
	storage  Storage
	volatile map[string]any
	actions  map[string]Action
	views    map[string]View
	version  int64
	changes  []FieldChange
}

// ID returns the node's unique identifier.
func (n *Node) ID() uuid.UUID { return n.id }

// ModelName returns the name of the model that created this node.
func (n *Node) ModelName() string { return n.model.name }

// Snapshot returns a deep copy of the node's current property values.
// Volatile state is never part of a snapshot.
func (n *Node) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.snapshotLocked()
}

func (n *Node) snapshotLocked() Snapshot {
	out := make(Snapshot, len(n.model.props))
	for name := range n.model.props {
		if v, ok := n.storage.Get(name); ok {
			out[name] = deepCopyValue(v)
		}
	}
	return out
}

// Call dispatches the named action. Actions on a node run one at a time;
// each dispatch that mutates state records the field changes and bumps the
// node version.
func (n *Node) Call(name string, args ...any) (any, error) {
	n.mu.RLock()
	act, ok := n.actions[name]
	n.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tree: model %s has no action %q", n.model.name, name)
	}
	return n.run(name, act, args)
}

// run executes act under the node's dispatch serialization, diffing the
// property state around the invocation.
func (n *Node) run(name string, act Action, args []any) (any, error) {
	n.dispatch.Lock()
	defer n.dispatch.Unlock()

	n.mu.RLock()
	before := n.snapshotLocked()
	n.mu.RUnlock()

	out, err := act(args...)

	n.mu.Lock()
	after := n.snapshotLocked()
	if changes := diffSnapshots(before, after); len(changes) > 0 {
		n.changes = changes
		n.version++
	}
	n.mu.Unlock()

	if err != nil {
		return out, fmt.Errorf("tree: action %s.%s: %w", n.model.name, name, err)
	}
	return out, nil
}

// Serialized returns an action that runs act exactly as Call runs a
// registered action: one at a time per node, with change tracking. Work
// executed outside Call, such as a scheduled flow body, goes through it so
// it never touches the node's state concurrently with another action.
func (n *Node) Serialized(name string, act Action) Action {
	return func(args ...any) (any, error) {
		return n.run(name, act, args)
	}
}

// Actions returns the names of the node's dispatchable actions.
func (n *Node) Actions() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.actions))
	for name := range n.actions {
		names = append(names, name)
	}
	return names
}

// View returns the named bound view, if present.
func (n *Node) View(name string) (View, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.views[name]
	return v, ok
}

// Views returns a fresh carrier holding all bound views.
func (n *Node) Views() map[string]View {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]View, len(n.views))
	for name, v := range n.views {
		out[name] = v
	}
	return out
}

// Volatile returns the named volatile value recorded at creation.
func (n *Node) Volatile(name string) (any, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.volatile[name]
	return v, ok
}

// Adopt migrates the node's property values into s and makes it the node's
// store. State ownership stays with the node; only the backing store moves.
func (n *Node) Adopt(s Storage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for name := range n.model.props {
		v, ok := n.storage.Get(name)
		if !ok {
			continue
		}
		if err := s.Set(name, v); err != nil {
			return fmt.Errorf("tree: model %s: adopt storage: property %q: %w", n.model.name, name, err)
		}
	}
	n.storage = s
	return nil
}

// Storage returns the node's current backing store.
func (n *Node) Storage() Storage {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.storage
}

// Version returns the number of state-changing action dispatches so far.
func (n *Node) Version() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.version
}

// Changes returns the field changes recorded by the most recent
// state-changing action dispatch.
func (n *Node) Changes() []FieldChange {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]FieldChange(nil), n.changes...)
}
