package tree

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Action is a bound behavior invocable on a node.
type Action func(args ...any) (any, error)

// View is a bound accessor triple exposed on a node's view carrier.
// Any of the three components may be nil when the member does not supply it.
type View struct {
	Get  func() any
	Set  func(v any)
	Call func(args ...any) (any, error)
}

// ActionsFunc produces the bound action table for a node.
type ActionsFunc func(n *Node) map[string]Action

// ViewsFunc produces the bound view carrier for a node.
type ViewsFunc func(n *Node) map[string]View

// VolatileFunc produces a node's initial volatile (non-snapshot) state.
type VolatileFunc func(n *Node) map[string]any

// HookAfterCreate names the action invoked exactly once, immediately after
// Create constructs a node and before any other action can run.
const HookAfterCreate = "afterCreate"

// Model describes a node type: its typed properties, volatile state,
// actions, views, and snapshot normalization.
//
// Models are immutable builders: every method returns a derived copy, so a
// model can be extended into a new named model without disturbing the
// original.
type Model struct {
	name       string
	props      map[string]Type
	volatiles  []VolatileFunc
	actions    []ActionsFunc
	views      []ViewsFunc
	preProcess func(Snapshot) Snapshot
}

// Named creates a new empty model with the given name.
func Named(name string) *Model {
	return &Model{name: name, props: make(map[string]Type)}
}

func (m *Model) clone() *Model {
	out := &Model{
		name:       m.name,
		props:      make(map[string]Type, len(m.props)),
		volatiles:  append([]VolatileFunc(nil), m.volatiles...),
		actions:    append([]ActionsFunc(nil), m.actions...),
		views:      append([]ViewsFunc(nil), m.views...),
		preProcess: m.preProcess,
	}
	for k, v := range m.props {
		out.props[k] = v
	}
	return out
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Named returns a derived copy of the model under a new name. The copy
// carries the original's properties, initializers, and snapshot hooks.
func (m *Model) Named(name string) *Model {
	out := m.clone()
	out.name = name
	return out
}

// Props returns a derived model with the given property types merged in.
// A property declared here replaces one of the same name.
func (m *Model) Props(fields map[string]Type) *Model {
	out := m.clone()
	for name, typ := range fields {
		out.props[name] = typ
	}
	return out
}

// PropTypes returns a copy of the model's property types.
func (m *Model) PropTypes() map[string]Type {
	out := make(map[string]Type, len(m.props))
	for k, v := range m.props {
		out[k] = v
	}
	return out
}

// Volatile returns a derived model with an additional volatile initializer.
func (m *Model) Volatile(init VolatileFunc) *Model {
	out := m.clone()
	out.volatiles = append(out.volatiles, init)
	return out
}

// Actions returns a derived model with an additional action factory.
// Factories run in registration order; a later factory's action replaces an
// earlier one of the same name.
func (m *Model) Actions(factory ActionsFunc) *Model {
	out := m.clone()
	out.actions = append(out.actions, factory)
	return out
}

// Views returns a derived model with an additional view factory.
func (m *Model) Views(factory ViewsFunc) *Model {
	out := m.clone()
	out.views = append(out.views, factory)
	return out
}

// PreProcessSnapshot returns a derived model whose snapshot normalization
// runs fn before any previously registered hook; the prior hook is applied
// to fn's result. Hooks wrap, they never replace.
func (m *Model) PreProcessSnapshot(fn func(Snapshot) Snapshot) *Model {
	out := m.clone()
	prior := out.preProcess
	if prior == nil {
		out.preProcess = fn
	} else {
		out.preProcess = func(s Snapshot) Snapshot {
			return prior(fn(s))
		}
	}
	return out
}

// Create validates the snapshot against the model's property types, seeds a
// node, runs the volatile initializers and the action/view factories, and
// finally invokes the afterCreate hook if one was attached.
//
// A nil snapshot is treated as empty. Properties absent from the normalized
// snapshot fall back to their type-level default; a property with neither a
// value nor a default fails creation.
func (m *Model) Create(snap Snapshot) (*Node, error) {
	snap = snap.Clone()
	if m.preProcess != nil {
		snap = m.preProcess(snap)
	}

	storage := newMapStorage()
	for name, typ := range m.props {
		v, ok := snap[name]
		if !ok {
			d, has := typ.Default()
			if !has {
				return nil, fmt.Errorf("tree: model %s: missing value for property %q", m.name, name)
			}
			v = d
		}
		if err := typ.Validate(v); err != nil {
			return nil, fmt.Errorf("tree: model %s: property %q: %w", m.name, name, err)
		}
		storage.values[name] = deepCopyValue(v)
	}

	n := &Node{
		id:       uuid.New(),
		model:    m,
		storage:  storage,
		volatile: make(map[string]any),
		actions:  make(map[string]Action),
		views:    make(map[string]View),
	}

	for _, init := range m.volatiles {
		for name, v := range init(n) {
			n.volatile[name] = v
		}
	}
	for _, factory := range m.actions {
		for name, act := range factory(n) {
			n.actions[name] = act
		}
	}
	for _, factory := range m.views {
		for name, view := range factory(n) {
			n.views[name] = view
		}
	}

	// The afterCreate hook runs once per node and is then removed so it
	// cannot be dispatched again through Call.
	if hook, ok := n.actions[HookAfterCreate]; ok {
		delete(n.actions, HookAfterCreate)
		if _, err := hook(); err != nil {
			return nil, fmt.Errorf("tree: model %s: afterCreate: %w", m.name, err)
		}
	}

	log().Debug("node created",
		zap.String("model", m.name),
		zap.String("node", n.id.String()))

	return n, nil
}
