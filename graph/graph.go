package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

// DefaultRecursionLimit bounds the number of node executions in a single run.
const DefaultRecursionLimit = 25

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrMultipleEdges is returned by Compile when a node has more than one static
	// outgoing edge. Execution is strictly sequential, so fan-out is not allowed.
	ErrMultipleEdges = errors.New("node has more than one outgoing edge")

	// ErrInvalidRoute is returned when a conditional edge yields a route that is not
	// part of its declared path map, or an empty route.
	ErrInvalidRoute = errors.New("conditional edge returned an invalid route")

	// ErrRecursionLimit is returned when a run exceeds its recursion limit.
	ErrRecursionLimit = errors.New("recursion limit reached")
)

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function receives the current state and returns a state update.
	// How the update is folded into the state is decided by the graph schema.
	Function func(ctx context.Context, state S) (S, error)
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// conditionalEdge routes from a node to one of several targets at runtime.
type conditionalEdge[S any] struct {
	condition func(ctx context.Context, state S) string
	// pathMap maps route keys returned by condition to node names.
	// A nil map means the route is the node name itself.
	pathMap map[string]string
}
