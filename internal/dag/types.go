package dag

import "sync"

// Graph is a collection of build steps and their dependencies, representing
// a DAG. All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all steps in the graph, keyed by their unique ID.
	nodes map[string]*node
}

// node represents a single build step. It is un-exported to enforce
// interaction with the graph via the public API (using string IDs), not by
// direct struct manipulation.
type node struct {
	// id is the unique identifier for the step.
	id string
	// deps holds the steps this step depends on (predecessors).
	deps map[string]*node
	// dependents holds the steps that depend on this step (successors).
	dependents map[string]*node
}
