package tree

import (
	"reflect"
	"sort"
)

// Snapshot is the serializable state of a node: property name to value.
type Snapshot map[string]any

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue deep-copies slices and maps; primitives and structs are
// returned as-is since they are copied by value.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(reflect.ValueOf(deepCopyValue(rv.Index(i).Interface())))
		}
		return out.Interface()
	case reflect.Map:
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for _, key := range rv.MapKeys() {
			out.SetMapIndex(key, reflect.ValueOf(deepCopyValue(rv.MapIndex(key).Interface())))
		}
		return out.Interface()
	default:
		return v
	}
}

// FieldChange records a change to a single property across an action.
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// diffSnapshots returns the per-field changes from before to after, ordered
// by field name.
func diffSnapshots(before, after Snapshot) []FieldChange {
	var changes []FieldChange
	for field, newValue := range after {
		oldValue, existed := before[field]
		if !existed || !reflect.DeepEqual(oldValue, newValue) {
			changes = append(changes, FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}
	for field, oldValue := range before {
		if _, exists := after[field]; !exists {
			changes = append(changes, FieldChange{Field: field, OldValue: oldValue, NewValue: nil})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}
