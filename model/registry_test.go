package model

import (
	"errors"
	"reflect"
	"testing"
)

type registryProbe struct{ A string }

func TestTypeRegistry(t *testing.T) {
	r := &typeRegistry{entries: make(map[reflect.Type]*composedEntry)}
	rt := reflect.TypeOf(registryProbe{})

	if _, ok := r.lookup(rt); ok {
		t.Fatal("lookup on empty registry must miss")
	}

	if err := r.register(rt, &composedEntry{name: "Probe"}); err != nil {
		t.Fatalf("register error = %v", err)
	}
	e, ok := r.lookup(rt)
	if !ok || e.name != "Probe" {
		t.Fatalf("lookup = %v, %v", e, ok)
	}

	err := r.register(rt, &composedEntry{name: "ProbeAgain"})
	if !errors.Is(err, ErrAlreadyComposed) {
		t.Fatalf("re-register error = %v, want ErrAlreadyComposed", err)
	}

	r.reset()
	if _, ok := r.lookup(rt); ok {
		t.Error("lookup after reset must miss")
	}
}
