package model

// buildContext accumulates per-category metadata while a Compose call's
// options run. Each slot is read and cleared exactly once during
// composition.
type buildContext struct {
	slots map[category]any
}

func newBuildContext() *buildContext {
	return &buildContext{slots: make(map[category]any)}
}

// addProp records a field's resolved descriptor, merging with any props
// already collected.
func (c *buildContext) addProp(name string, d Descriptor) {
	slot, _ := c.slots[catProps].(map[string]Descriptor)
	if slot == nil {
		slot = make(map[string]Descriptor)
		c.slots[catProps] = slot
	}
	slot[name] = d
}

// appendNames extends a list-valued slot, preserving declaration order.
func (c *buildContext) appendNames(cat category, names ...string) {
	slot, _ := c.slots[cat].([]string)
	c.slots[cat] = append(slot, names...)
}

// takeProps reads and clears the props slot.
func (c *buildContext) takeProps() map[string]Descriptor {
	slot, _ := c.slots[catProps].(map[string]Descriptor)
	delete(c.slots, catProps)
	return slot
}

// takeNames reads and clears a list-valued slot.
func (c *buildContext) takeNames(cat category) []string {
	slot, _ := c.slots[cat].([]string)
	delete(c.slots, cat)
	return slot
}
