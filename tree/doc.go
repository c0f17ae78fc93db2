// Package tree implements a small managed state-tree runtime.
//
// A Model describes a node type: its typed properties, volatile (non-snapshot)
// state, actions, views, and snapshot normalization. Models are immutable
// builders: every builder method returns a derived copy, so an existing model
// can be extended into a new named model without disturbing the original.
//
// Create validates a snapshot against the model's property types, constructs a
// Node, and runs the registered initializers. Nodes own their state through a
// pluggable Storage; actions are the only sanctioned mutation path and each
// dispatch records the resulting field changes.
//
// The Flow transform turns an action into a cooperatively scheduled procedure:
// invoking it enqueues the work onto a worker-pool executor and returns a
// Promise instead of blocking.
package tree
