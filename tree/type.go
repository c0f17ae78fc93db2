package tree

import (
	"fmt"
	"math"
	"reflect"
)

// Type describes a single value slot in a model tree.
type Type interface {
	// Name returns the type name used in error messages and introspection.
	Name() string
	// Validate reports whether v is an acceptable value for this type.
	Validate(v any) error
	// Default returns the type-level default value, if one is declared.
	Default() (any, bool)
}

// primitive is a leaf type backed by an acceptance predicate.
type primitive struct {
	name  string
	check func(v any) bool
}

func (p primitive) Name() string         { return p.name }
func (p primitive) Default() (any, bool) { return nil, false }

func (p primitive) Validate(v any) error {
	if !p.check(v) {
		return fmt.Errorf("tree: value %v (%T) is not a valid %s", v, v, p.name)
	}
	return nil
}

// Built-in primitive types.
var (
	// String accepts string values.
	String Type = primitive{name: "string", check: isString}
	// Number accepts any numeric value.
	Number Type = primitive{name: "number", check: isNumber}
	// Integer accepts integral numeric values, including whole floats so
	// that JSON-decoded snapshots validate.
	Integer Type = primitive{name: "integer", check: isInteger}
	// Boolean accepts bool values.
	Boolean Type = primitive{name: "boolean", check: isBoolean}
	// Frozen accepts any value and stores it verbatim.
	Frozen Type = primitive{name: "frozen", check: func(any) bool { return true }}
)

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isInteger(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == math.Trunc(f)
	default:
		return false
	}
}

// literalType accepts exactly one value and defaults to it.
type literalType struct {
	value any
}

// Literal returns a type that accepts exactly the given value.
// The value also serves as the type's default.
func Literal(v any) Type {
	return literalType{value: v}
}

func (l literalType) Name() string         { return fmt.Sprintf("literal<%v>", l.value) }
func (l literalType) Default() (any, bool) { return l.value, true }

func (l literalType) Validate(v any) error {
	if !reflect.DeepEqual(v, l.value) {
		return fmt.Errorf("tree: value %v (%T) does not match %s", v, v, l.Name())
	}
	return nil
}

// enumType accepts one of a fixed set of string values.
type enumType struct {
	values []string
}

// Enumeration returns a string type restricted to the given values.
func Enumeration(values ...string) Type {
	return enumType{values: append([]string(nil), values...)}
}

func (e enumType) Name() string         { return fmt.Sprintf("enumeration%v", e.values) }
func (e enumType) Default() (any, bool) { return nil, false }

func (e enumType) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("tree: value %v (%T) is not a valid %s", v, v, e.Name())
	}
	for _, allowed := range e.values {
		if s == allowed {
			return nil
		}
	}
	return fmt.Errorf("tree: value %q is not a member of %s", s, e.Name())
}
