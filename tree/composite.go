package tree

import (
	"fmt"
	"reflect"
	"strings"
)

// arrayType accepts a sequence whose elements all validate against elem.
type arrayType struct {
	elem Type
}

// Array returns a type accepting a sequence of elem values.
func Array(elem Type) Type {
	return arrayType{elem: elem}
}

func (a arrayType) Name() string         { return fmt.Sprintf("array<%s>", a.elem.Name()) }
func (a arrayType) Default() (any, bool) { return nil, false }

func (a arrayType) Validate(v any) error {
	if v == nil {
		return fmt.Errorf("tree: nil is not a valid %s", a.Name())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("tree: value %v (%T) is not a valid %s", v, v, a.Name())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := a.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("tree: element %d of %s: %w", i, a.Name(), err)
		}
	}
	return nil
}

// mapType accepts a string-keyed mapping whose values validate against value.
type mapType struct {
	value Type
}

// Map returns a type accepting a string-keyed map of value values.
func Map(value Type) Type {
	return mapType{value: value}
}

func (m mapType) Name() string         { return fmt.Sprintf("map<%s>", m.value.Name()) }
func (m mapType) Default() (any, bool) { return nil, false }

func (m mapType) Validate(v any) error {
	if v == nil {
		return fmt.Errorf("tree: nil is not a valid %s", m.Name())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("tree: value %v (%T) is not a valid %s", v, v, m.Name())
	}
	for _, key := range rv.MapKeys() {
		if err := m.value.Validate(rv.MapIndex(key).Interface()); err != nil {
			return fmt.Errorf("tree: entry %q of %s: %w", key.String(), m.Name(), err)
		}
	}
	return nil
}

// unionType accepts a value matching any of its member types.
type unionType struct {
	members []Type
}

// Union returns a type accepting values matching any member type.
func Union(members ...Type) Type {
	return unionType{members: append([]Type(nil), members...)}
}

func (u unionType) Name() string {
	names := make([]string, len(u.members))
	for i, m := range u.members {
		names[i] = m.Name()
	}
	return fmt.Sprintf("union<%s>", strings.Join(names, " | "))
}

// Default returns the first member default, if any member declares one.
func (u unionType) Default() (any, bool) {
	for _, m := range u.members {
		if d, ok := m.Default(); ok {
			return d, true
		}
	}
	return nil, false
}

func (u unionType) Validate(v any) error {
	for _, m := range u.members {
		if m.Validate(v) == nil {
			return nil
		}
	}
	return fmt.Errorf("tree: value %v (%T) matches no member of %s", v, v, u.Name())
}

// optionalType wraps a type with a declared default value.
type optionalType struct {
	inner Type
	def   any
}

// Optional wraps t with a default value used when a snapshot omits the
// property. The default is deep-copied on every use.
func Optional(t Type, def any) Type {
	return optionalType{inner: t, def: def}
}

func (o optionalType) Name() string         { return fmt.Sprintf("optional<%s>", o.inner.Name()) }
func (o optionalType) Default() (any, bool) { return deepCopyValue(o.def), true }
func (o optionalType) Validate(v any) error { return o.inner.Validate(v) }

// maybeType wraps a type so that nil is also acceptable, defaulting to nil.
type maybeType struct {
	inner Type
}

// Maybe wraps t so that nil is acceptable and is the default.
func Maybe(t Type) Type {
	return maybeType{inner: t}
}

func (m maybeType) Name() string         { return fmt.Sprintf("maybe<%s>", m.inner.Name()) }
func (m maybeType) Default() (any, bool) { return nil, true }

func (m maybeType) Validate(v any) error {
	if v == nil {
		return nil
	}
	return m.inner.Validate(v)
}
