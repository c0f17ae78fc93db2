package model

import (
	"reflect"
	"testing"
)

func TestSlotKeysAreDistinct(t *testing.T) {
	cats := []category{catProps, catActions, catFlows, catVolatile, catViews}
	seen := make(map[category]bool, len(cats))
	for _, c := range cats {
		if seen[c] {
			t.Fatalf("duplicate slot key %q", c)
		}
		seen[c] = true
	}
}

func TestSlotsConsumeOnce(t *testing.T) {
	c := newBuildContext()
	c.appendNames(catActions, "Toggle")

	if got := c.takeNames(catActions); !reflect.DeepEqual(got, []string{"Toggle"}) {
		t.Fatalf("takeNames = %v, want [Toggle]", got)
	}
	if got := c.takeNames(catActions); got != nil {
		t.Errorf("second takeNames = %v, want nil", got)
	}
}

func TestAppendNamesPreservesOrder(t *testing.T) {
	c := newBuildContext()
	c.appendNames(catViews, "B", "A")
	c.appendNames(catViews, "C")

	want := []string{"B", "A", "C"}
	if got := c.takeNames(catViews); !reflect.DeepEqual(got, want) {
		t.Errorf("takeNames = %v, want %v", got, want)
	}
}

func TestAddPropMergesAndOverwrites(t *testing.T) {
	c := newBuildContext()
	c.addProp("Title", String)
	c.addProp("Count", Integer)
	c.addProp("Title", Boolean)

	props := c.takeProps()
	if len(props) != 2 {
		t.Fatalf("len(props) = %d, want 2", len(props))
	}
	if props["Title"].Type().Name() != "boolean" {
		t.Error("later annotation of the same field must win")
	}
	if c.takeProps() != nil {
		t.Error("props slot must be cleared after take")
	}
}
