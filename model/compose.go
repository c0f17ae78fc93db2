package model

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/treekit-dev/treekit/tree"
)

// Initializer lets a composed struct set constructor defaults. Compose
// invokes Init once on a throwaway zero value before reading default field
// values; a panic inside Init propagates to the caller.
type Initializer interface {
	Init()
}

// Model is the enhanced form of a composed struct type T: it exposes the
// composed schema and a Create factory for managed instances.
type Model[T any] struct {
	name   string
	schema *tree.Model
}

// Name returns the model name.
func (m *Model[T]) Name() string { return m.name }

// Schema returns the composed runtime schema.
func (m *Model[T]) Schema() *tree.Model { return m.schema }

// Create constructs a managed instance from the given snapshot (nil for
// defaults only). Snapshot values win over struct-level defaults.
func (m *Model[T]) Create(snap tree.Snapshot) (*Instance[T], error) {
	node, err := m.schema.Create(snap)
	if err != nil {
		return nil, fmt.Errorf("model: create %s: %w", m.name, err)
	}
	st, ok := node.Storage().(targeter)
	if !ok {
		return nil, fmt.Errorf("model: create %s: node storage was not adopted", m.name)
	}
	target, ok := st.Target().(*T)
	if !ok {
		return nil, fmt.Errorf("model: create %s: unexpected target type %T", m.name, st.Target())
	}
	return &Instance[T]{node: node, target: target}, nil
}

// Instance pairs a managed node with its restored *T target. The runtime
// owns the node's state; the target is the same state viewed through the
// original struct type.
type Instance[T any] struct {
	node   *tree.Node
	target *T
}

// Target returns the instance as the original struct type. Plain methods
// declared on T are reachable through it.
func (i *Instance[T]) Target() *T { return i.target }

// Node returns the underlying managed node.
func (i *Instance[T]) Node() *tree.Node { return i.node }

// ID returns the managed node's identifier.
func (i *Instance[T]) ID() uuid.UUID { return i.node.ID() }

// Call dispatches a bound action or flow by name.
func (i *Instance[T]) Call(name string, args ...any) (any, error) {
	return i.node.Call(name, args...)
}

// Snapshot returns the instance's current property state.
func (i *Instance[T]) Snapshot() tree.Snapshot { return i.node.Snapshot() }

// View returns the named bound view, if present.
func (i *Instance[T]) View(name string) (tree.View, bool) { return i.node.View(name) }

// Views returns a fresh carrier holding all bound views.
func (i *Instance[T]) Views() map[string]tree.View { return i.node.Views() }

// Version returns the number of state-changing action dispatches so far.
func (i *Instance[T]) Version() int64 { return i.node.Version() }

// Changes returns the field changes from the most recent state-changing
// action dispatch.
func (i *Instance[T]) Changes() []tree.FieldChange { return i.node.Changes() }

// MustCompose is Compose, panicking on composition failure. Intended for
// package-level model variables.
func MustCompose[T any](name string, opts ...Option) *Model[T] {
	m, err := Compose[T](name, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Compose assembles the annotations for struct type T into a composed
// schema and returns the enhanced model.
//
// Composition runs the options into a fresh build context, reads default
// member values from a single zero-argument instantiation, verifies every
// action and flow member is callable, builds the schema (extending an
// embedded composed parent when present), binds actions, flows, and views,
// installs snapshot normalization (struct defaults merged under incoming
// snapshots), and registers an after-construction hook that moves the
// node's state into a fresh *T.
//
// Composition is one-shot and fail-fast: it happens at most once per type,
// and no schema is produced when any member fails to resolve.
func Compose[T any](name string, opts ...Option) (*Model[T], error) {
	rtype := reflect.TypeOf((*T)(nil)).Elem()
	if rtype.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, rtype)
	}
	if _, exists := composedTypes.lookup(rtype); exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyComposed, rtype)
	}

	ctx := newBuildContext()
	for _, opt := range opts {
		if err := opt(ctx); err != nil {
			return nil, fmt.Errorf("model: compose %s: %w", name, err)
		}
	}

	// Read constructor defaults from a single throwaway instance.
	defaults := new(T)
	if init, ok := any(defaults).(Initializer); ok {
		init.Init()
	}
	dv := reflect.ValueOf(defaults).Elem()
	ptrType := reflect.TypeOf(defaults)

	// Merge each field's default into its descriptor. A plain descriptor
	// becomes optional-with-default; a specialized descriptor keeps its own
	// defaulting behavior.
	props := ctx.takeProps()
	fields := make(map[string]tree.Type, len(props))
	defaultSnap := make(tree.Snapshot, len(props))
	for fname, d := range props {
		fv := dv.FieldByName(fname)
		if !fv.IsValid() {
			return nil, fmt.Errorf("model: compose %s: %w: field %q", name, ErrUnknownMember, fname)
		}
		def := fv.Interface()
		typ := d.typ
		if d.plain {
			typ = tree.Optional(typ, def)
		}
		fields[fname] = typ
		// A nil slice/map/pointer field carries no struct-level default;
		// the descriptor's own defaulting (or the snapshot) must supply
		// the value. Likewise a zero value never shadows a specialized
		// descriptor's default: only a value the author set survives.
		if isNilDefault(fv) {
			continue
		}
		if d.plain || !fv.IsZero() {
			defaultSnap[fname] = def
		}
	}

	// Behaviors and flows must resolve to callable methods before any
	// schema attachment happens.
	actionMethods, err := callableMethods(ptrType, name, ctx.takeNames(catActions))
	if err != nil {
		return nil, err
	}
	flowMethods, err := callableMethods(ptrType, name, ctx.takeNames(catFlows))
	if err != nil {
		return nil, err
	}

	// Volatile defaults come off the same throwaway instance.
	volatileNames := ctx.takeNames(catVolatile)
	volatileDefaults := make(map[string]any, len(volatileNames))
	for _, vname := range volatileNames {
		fv := dv.FieldByName(vname)
		if !fv.IsValid() {
			return nil, fmt.Errorf("model: compose %s: %w: volatile %q", name, ErrUnknownMember, vname)
		}
		volatileDefaults[vname] = fv.Interface()
	}

	// Views resolve against the type's own method set, or a func-valued
	// field for the value form.
	viewMembers := make(map[string]viewMember)
	for _, vname := range ctx.takeNames(catViews) {
		member := viewMember{}
		if m, ok := ptrType.MethodByName(vname); ok {
			member.getter = &m
			if s, found := ptrType.MethodByName("Set" + vname); found {
				member.setter = &s
			}
		} else if f, ok := rtype.FieldByName(vname); ok && f.Type.Kind() == reflect.Func {
			member.field = vname
		} else {
			return nil, fmt.Errorf("model: compose %s: %w: view %q", name, ErrNotCallable, vname)
		}
		viewMembers[vname] = member
	}

	// Derive from an embedded composed parent when present, otherwise start
	// fresh. The derived schema's property set is the union of both, with
	// this type winning on name collisions.
	schema := parentSchema(rtype)
	if schema != nil {
		schema = schema.Named(name).Props(fields)
	} else {
		schema = tree.Named(name).Props(fields)
	}

	if len(volatileDefaults) > 0 {
		schema = schema.Volatile(func(n *tree.Node) map[string]any {
			out := make(map[string]any, len(volatileDefaults))
			for k, v := range volatileDefaults {
				out[k] = v
			}
			return out
		})
	}
	if len(actionMethods) > 0 {
		schema = schema.Actions(newActionBinder(ptrType, actionMethods, nil))
	}
	if len(flowMethods) > 0 {
		schema = schema.Actions(newActionBinder(ptrType, flowMethods, wrapFlow))
	}
	if len(viewMembers) > 0 {
		schema = schema.Views(newViewBinder(ptrType, viewMembers))
	}

	// Struct-level defaults sit under every incoming snapshot; snapshot
	// values win.
	schema = schema.PreProcessSnapshot(func(s tree.Snapshot) tree.Snapshot {
		merged := defaultSnap.Clone()
		for k, v := range s {
			merged[k] = v
		}
		return merged
	})

	// Identity restoration: once the runtime has constructed the node,
	// move its state into a fresh *T and adopt it as the backing store.
	schema = schema.Actions(func(n *tree.Node) map[string]tree.Action {
		return map[string]tree.Action{
			tree.HookAfterCreate: func(...any) (any, error) {
				target := new(T)
				st := newStructStorage(target)
				if err := n.Adopt(st); err != nil {
					return nil, err
				}
				for vname, v := range volatileDefaults {
					if err := st.Set(vname, v); err != nil {
						return nil, err
					}
				}
				return nil, nil
			},
		}
	})

	if err := composedTypes.register(rtype, &composedEntry{name: name, schema: schema}); err != nil {
		return nil, err
	}
	return &Model[T]{name: name, schema: schema}, nil
}

func isNilDefault(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return fv.IsNil()
	default:
		return false
	}
}

// callableMethods resolves member names to methods on ptrType, failing with
// the offending member's name when one is missing or not callable.
func callableMethods(ptrType reflect.Type, model string, names []string) (map[string]reflect.Method, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make(map[string]reflect.Method, len(names))
	for _, mname := range names {
		m, ok := ptrType.MethodByName(mname)
		if !ok {
			return nil, fmt.Errorf("model: compose %s: %w: %q", model, ErrNotCallable, mname)
		}
		out[mname] = m
	}
	return out, nil
}

// parentSchema returns the composed schema of the first embedded composed
// type, if any. Deeper or additional composed embeds are not supported.
func parentSchema(rtype reflect.Type) *tree.Model {
	for i := 0; i < rtype.NumField(); i++ {
		f := rtype.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}
		if entry, ok := composedTypes.lookup(f.Type); ok {
			return entry.schema
		}
	}
	return nil
}
