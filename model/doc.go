// Package model composes annotated Go structs into managed tree schemas.
//
// An author writes an ordinary struct and describes its members once with
// declarative annotations: typed properties, actions, flows, volatile fields,
// and views. Compose assembles those annotations into a schema owned by the
// tree runtime and returns an enhanced model whose Create produces managed
// instances. After the runtime constructs an instance, its state is moved
// into a fresh value of the original struct type, so plain methods and *T
// identity keep working.
//
//	type Todo struct {
//		Title string
//		Done  bool
//	}
//
//	func (t *Todo) Init()        { t.Title = "untitled" }
//	func (t *Todo) Toggle()      { t.Done = !t.Done }
//	func (t *Todo) Summary() string {
//		return fmt.Sprintf("%s (%v)", t.Title, t.Done)
//	}
//
//	var TodoModel = model.MustCompose[Todo]("Todo",
//		model.Prop("Title", model.String),
//		model.Prop("Done", model.Boolean),
//		model.Action("Toggle"),
//		model.View("Summary"),
//	)
//
//	inst, err := TodoModel.Create(tree.Snapshot{"Title": "write docs"})
//	todo := inst.Target() // *Todo
//
// Annotated members must be exported: properties and volatile members are
// struct fields, actions and flows are methods on *T, and views are a getter
// method X with an optional SetX setter, or a func-valued field.
//
// Composition runs exactly once per type; composing the same type twice
// fails with ErrAlreadyComposed. A struct embedding an already-composed type
// extends that type's schema: the property set is the union of both, with
// the embedding type winning on name collisions.
package model
