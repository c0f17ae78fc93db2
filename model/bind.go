package model

import (
	"fmt"
	"reflect"

	"github.com/treekit-dev/treekit/tree"
)

// targeter is implemented by stores that expose their backing object.
type targeter interface {
	Target() any
}

// structStorage backs a node's properties with the exported fields of a
// caller struct.
type structStorage struct {
	ptr reflect.Value // pointer to struct
}

func newStructStorage(ptr any) *structStorage {
	return &structStorage{ptr: reflect.ValueOf(ptr)}
}

// Target returns the backing struct pointer.
func (s *structStorage) Target() any { return s.ptr.Interface() }

func (s *structStorage) field(name string) (reflect.Value, bool) {
	f := s.ptr.Elem().FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, false
	}
	return f, true
}

func (s *structStorage) Get(name string) (any, bool) {
	f, ok := s.field(name)
	if !ok {
		return nil, false
	}
	return f.Interface(), true
}

func (s *structStorage) Set(name string, v any) error {
	f, ok := s.field(name)
	if !ok {
		return fmt.Errorf("%w: field %q", ErrUnknownMember, name)
	}
	return assign(f, v)
}

// assign stores v into field, converting compatible shapes: JSON numbers
// into numeric fields, []any into typed slices, map[string]any into typed
// maps.
func assign(field reflect.Value, v any) error {
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	ft := field.Type()
	if rv.Type().AssignableTo(ft) {
		field.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(ft) && compatibleKinds(rv.Type(), ft) {
		field.Set(rv.Convert(ft))
		return nil
	}
	switch ft.Kind() {
	case reflect.Slice:
		if rv.Kind() != reflect.Slice {
			break
		}
		out := reflect.MakeSlice(ft, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := assign(out.Index(i), rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		field.Set(out)
		return nil
	case reflect.Map:
		if rv.Kind() != reflect.Map {
			break
		}
		out := reflect.MakeMapWithSize(ft, rv.Len())
		for _, key := range rv.MapKeys() {
			kv := reflect.New(ft.Key()).Elem()
			if err := assign(kv, key.Interface()); err != nil {
				return fmt.Errorf("key %v: %w", key, err)
			}
			vv := reflect.New(ft.Elem()).Elem()
			if err := assign(vv, rv.MapIndex(key).Interface()); err != nil {
				return fmt.Errorf("entry %v: %w", key, err)
			}
			out.SetMapIndex(kv, vv)
		}
		field.Set(out)
		return nil
	}
	return fmt.Errorf("model: cannot assign %T to field of type %s", v, ft)
}

// compatibleKinds restricts reflect conversions to same-family kinds so a
// numeric value never silently converts into a string field.
func compatibleKinds(from, to reflect.Type) bool {
	if isNumericKind(from.Kind()) && isNumericKind(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// receiverOf resolves the live receiver for methods declared on recvType.
// When the node's adopted target is a derived type, the embedded value of
// the declaring type is addressed instead.
func receiverOf(n *tree.Node, recvType reflect.Type) (reflect.Value, error) {
	st, ok := n.Storage().(targeter)
	if !ok {
		return reflect.Value{}, fmt.Errorf("model: node %s has no bound target", n.ID())
	}
	v := reflect.ValueOf(st.Target())
	if v.Type() == recvType {
		return v, nil
	}
	if rv, found := embeddedReceiver(v.Elem(), recvType); found {
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("model: node target %s does not embed %s", v.Type(), recvType.Elem())
}

// embeddedReceiver searches v's embedded fields, depth first, for an
// addressable value of recvType's element type.
func embeddedReceiver(v reflect.Value, recvType reflect.Type) (reflect.Value, bool) {
	want := recvType.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type.Kind() != reflect.Struct {
			continue
		}
		fv := v.Field(i)
		if f.Type == want {
			return fv.Addr(), true
		}
		if rv, found := embeddedReceiver(fv, recvType); found {
			return rv, true
		}
	}
	return reflect.Value{}, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callFunc invokes fn with recv (when valid) and args, assigning each
// argument into the parameter's type. It returns the first non-error result
// and the error result, either of which may be absent.
func callFunc(fn reflect.Value, recv reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	in := make([]reflect.Value, 0, ft.NumIn())
	if recv.IsValid() {
		in = append(in, recv)
	}
	for i, arg := range args {
		idx := len(in)
		if idx >= ft.NumIn() && !ft.IsVariadic() {
			return nil, fmt.Errorf("model: too many arguments: got %d", len(args))
		}
		var pt reflect.Type
		if ft.IsVariadic() && idx >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else {
			pt = ft.In(idx)
		}
		av := reflect.New(pt).Elem()
		if err := assign(av, arg); err != nil {
			return nil, fmt.Errorf("model: argument %d: %w", i, err)
		}
		in = append(in, av)
	}
	if !ft.IsVariadic() && len(in) != ft.NumIn() {
		want := ft.NumIn()
		if recv.IsValid() {
			want--
		}
		return nil, fmt.Errorf("model: expected %d arguments, got %d", want, len(args))
	}

	out := fn.Call(in)
	var result any
	var err error
	for _, o := range out {
		if o.Type().Implements(errorType) {
			if !o.IsNil() {
				err = o.Interface().(error)
			}
			continue
		}
		if result == nil {
			result = o.Interface()
		}
	}
	return result, err
}

// bindMethod rebinds a method to the node's live target. The receiver is
// resolved on each invocation so the binding follows storage adoption.
func bindMethod(n *tree.Node, recvType reflect.Type, m reflect.Method) tree.Action {
	return func(args ...any) (any, error) {
		recv, err := receiverOf(n, recvType)
		if err != nil {
			return nil, err
		}
		return callFunc(m.Func, recv, args)
	}
}

// newActionBinder builds the actions factory for the given bound methods,
// applying transform (identity when nil) to each.
func newActionBinder(recvType reflect.Type, methods map[string]reflect.Method, transform func(n *tree.Node, name string, act tree.Action) tree.Action) tree.ActionsFunc {
	return func(n *tree.Node) map[string]tree.Action {
		out := make(map[string]tree.Action, len(methods))
		for name, m := range methods {
			act := bindMethod(n, recvType, m)
			if transform != nil {
				act = transform(n, name, act)
			}
			out[name] = act
		}
		return out
	}
}

// wrapFlow schedules a bound method as a flow. The scheduled body goes back
// through the node's serialized dispatch, so a flow never mutates instance
// state concurrently with another action or flow, and its mutations are
// change-tracked like any other dispatch.
func wrapFlow(n *tree.Node, name string, act tree.Action) tree.Action {
	return tree.Flow(name, n.Serialized(name, act))
}

// viewMember captures the accessor components collected for a view name:
// a getter/setter method pair or a func-valued field.
type viewMember struct {
	getter *reflect.Method
	setter *reflect.Method
	field  string
}

// newViewBinder builds the views factory: each accessor component is
// rebound to the node's live target and defined on a fresh carrier.
func newViewBinder(recvType reflect.Type, members map[string]viewMember) tree.ViewsFunc {
	return func(n *tree.Node) map[string]tree.View {
		out := make(map[string]tree.View, len(members))
		for name, member := range members {
			view := tree.View{}
			if member.getter != nil {
				g := member.getter.Func
				view.Get = func() any {
					recv, err := receiverOf(n, recvType)
					if err != nil {
						return nil
					}
					res, _ := callFunc(g, recv, nil)
					return res
				}
			}
			if member.setter != nil {
				s := member.setter.Func
				view.Set = func(v any) {
					recv, err := receiverOf(n, recvType)
					if err != nil {
						return
					}
					_, _ = callFunc(s, recv, []any{v})
				}
			}
			if member.field != "" {
				fieldName := member.field
				view.Call = func(args ...any) (any, error) {
					recv, err := receiverOf(n, recvType)
					if err != nil {
						return nil, err
					}
					fv := recv.Elem().FieldByName(fieldName)
					if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
						return nil, fmt.Errorf("%w: %q", ErrNotCallable, fieldName)
					}
					return callFunc(fv, reflect.Value{}, args)
				}
			}
			out[name] = view
		}
		return out
	}
}
