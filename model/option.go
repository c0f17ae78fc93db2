package model

import "fmt"

// Option is a member annotation applied while composing a model.
type Option func(c *buildContext) error

// Prop records a field's type annotation. The type may be a built-in
// descriptor, a composed descriptor, or a raw tree.Type.
func Prop(name string, t any) Option {
	return func(c *buildContext) error {
		d, ok := t.(Descriptor)
		if !ok {
			typ, err := resolveType(t)
			if err != nil {
				return fmt.Errorf("prop %q: %w", name, err)
			}
			d = Descriptor{typ: typ}
		}
		if d.err != nil {
			return fmt.Errorf("prop %q: %w", name, d.err)
		}
		if d.typ == nil {
			return fmt.Errorf("prop %q: %w: empty descriptor", name, ErrInvalidDescriptor)
		}
		c.addProp(name, d)
		return nil
	}
}

// tagger builds the annotation factory for a list-valued category. All
// category annotations behave identically, differing only in target slot.
func tagger(cat category) func(names ...string) Option {
	return func(names ...string) Option {
		return func(c *buildContext) error {
			c.appendNames(cat, names...)
			return nil
		}
	}
}

var (
	// Action marks methods on *T as state-mutating behaviors.
	Action = tagger(catActions)
	// Flow marks methods on *T as asynchronously scheduled procedures.
	Flow = tagger(catFlows)
	// Volatile marks struct fields as non-snapshot state.
	Volatile = tagger(catVolatile)
	// View marks derived accessors: a getter method X with an optional
	// SetX setter, or a func-valued struct field.
	View = tagger(catViews)
)
