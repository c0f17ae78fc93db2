package model

import (
	"fmt"

	"github.com/treekit-dev/treekit/tree"
)

// Descriptor is a composable field-type annotation wrapping a runtime type.
// A plain descriptor is the bare built-in constructor; composing one through
// ArrayOf, OptionalOf, and friends produces a specialized descriptor.
// Descriptors are immutable and nest to arbitrary depth:
//
//	model.ArrayOf(model.MaybeOf(model.String))
//
// An invalid composition is carried as a deferred error and surfaces when
// the descriptor is used in a Prop annotation.
type Descriptor struct {
	typ   tree.Type
	plain bool
	err   error
}

// Type returns the underlying runtime type.
func (d Descriptor) Type() tree.Type { return d.typ }

// Built-in field type annotations, one per runtime primitive.
var (
	String  = Descriptor{typ: tree.String, plain: true}
	Number  = Descriptor{typ: tree.Number, plain: true}
	Integer = Descriptor{typ: tree.Integer, plain: true}
	Boolean = Descriptor{typ: tree.Boolean, plain: true}
	Frozen  = Descriptor{typ: tree.Frozen, plain: true}
)

// resolveType unwraps v to its underlying runtime type: descriptors unwrap
// to the type they carry, raw tree.Type values pass through.
func resolveType(v any) (tree.Type, error) {
	switch t := v.(type) {
	case Descriptor:
		if t.err != nil {
			return nil, t.err
		}
		if t.typ == nil {
			return nil, fmt.Errorf("%w: empty descriptor", ErrInvalidDescriptor)
		}
		return t.typ, nil
	case tree.Type:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a type annotation", ErrInvalidDescriptor, v)
	}
}

// ArrayOf annotates a field as a sequence of elem values.
func ArrayOf(elem any) Descriptor {
	t, err := resolveType(elem)
	if err != nil {
		return Descriptor{err: err}
	}
	return Descriptor{typ: tree.Array(t)}
}

// MapOf annotates a field as a string-keyed map of value values.
func MapOf(value any) Descriptor {
	t, err := resolveType(value)
	if err != nil {
		return Descriptor{err: err}
	}
	return Descriptor{typ: tree.Map(t)}
}

// UnionOf annotates a field as accepting any of the member types.
func UnionOf(members ...any) Descriptor {
	types := make([]tree.Type, len(members))
	for i, m := range members {
		t, err := resolveType(m)
		if err != nil {
			return Descriptor{err: err}
		}
		types[i] = t
	}
	return Descriptor{typ: tree.Union(types...)}
}

// OptionalOf annotates a field with an explicit default value. The
// descriptor is fully specified: a struct-level default never overrides it.
func OptionalOf(t any, def any) Descriptor {
	inner, err := resolveType(t)
	if err != nil {
		return Descriptor{err: err}
	}
	return Descriptor{typ: tree.Optional(inner, def)}
}

// MaybeOf annotates a field as nullable, defaulting to nil.
func MaybeOf(t any) Descriptor {
	inner, err := resolveType(t)
	if err != nil {
		return Descriptor{err: err}
	}
	return Descriptor{typ: tree.Maybe(inner)}
}

// EnumOf annotates a field as one of a fixed set of strings.
func EnumOf(values ...string) Descriptor {
	return Descriptor{typ: tree.Enumeration(values...)}
}

// LiteralOf annotates a field as holding exactly the given value.
func LiteralOf(v any) Descriptor {
	return Descriptor{typ: tree.Literal(v)}
}
