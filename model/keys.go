package model

// category identifies a metadata slot on a build context.
type category string

// slotKey derives the slot identifier for a category label. Keys are a pure
// function of the label, stable for the process lifetime, and cannot collide
// across distinct labels.
func slotKey(label string) category {
	return category("treekit/" + label)
}

var (
	catProps    = slotKey("props")
	catActions  = slotKey("actions")
	catFlows    = slotKey("flows")
	catVolatile = slotKey("volatile")
	catViews    = slotKey("views")
)
