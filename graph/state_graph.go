package graph

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// StateGraph represents a generic state-based graph with compile-time type safety.
// The type parameter S represents the state type, which is typically a struct.
//
// Nodes run one at a time: after a node finishes, its update is merged into the
// state and exactly one successor is chosen, either from the node's static edge or
// from its conditional edge.
//
// Example usage:
//
//	type MyState struct {
//	    Count int
//	    Name  string
//	}
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node[S]

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges contains a map between "From" node, while "To" node is derived based on the condition
	conditionalEdges map[string]conditionalEdge[S]

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// Schema defines the state structure and update logic
	Schema StateSchema[S]
}

// NewStateGraph creates a new instance of StateGraph with type safety.
// The type parameter S specifies the state type.
//
// Example:
//
//	g := graph.NewStateGraph[MyState]()
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]conditionalEdge[S]),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdges adds a conditional edge whose condition returns a route key
// that is resolved through pathMap. Compile checks that every target exists, and
// at runtime a key outside pathMap fails the run with ErrInvalidRoute. With a nil
// pathMap the condition returns the next node name (or END) directly.
//
// Example:
//
//	g.AddConditionalEdges("reflect", decide, map[string]string{
//	    "retry":  "research",
//	    "finish": graph.END,
//	})
func (g *StateGraph[S]) AddConditionalEdges(from string, condition func(ctx context.Context, state S) string, pathMap map[string]string) {
	g.conditionalEdges[from] = conditionalEdge[S]{
		condition: condition,
		pathMap:   maps.Clone(pathMap),
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.Schema = schema
}

// Nodes returns the node names in sorted order.
func (g *StateGraph[S]) Nodes() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// StateRunnable represents a compiled state graph that can be invoked with type safety.
type StateRunnable[S any] struct {
	graph  *StateGraph[S]
	tracer *Tracer
}

// Compile validates the state graph and returns a StateRunnable instance.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	outgoing := make(map[string]int)
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, edge.From)
		}
		if !g.hasTarget(edge.To) {
			return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, edge.To)
		}
		outgoing[edge.From]++
		if outgoing[edge.From] > 1 {
			return nil, fmt.Errorf("%w: %s", ErrMultipleEdges, edge.From)
		}
	}

	for from, ce := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		for _, to := range ce.pathMap {
			if !g.hasTarget(to) {
				return nil, fmt.Errorf("%w: conditional edge target %s", ErrNodeNotFound, to)
			}
		}
	}

	return &StateRunnable[S]{
		graph: g,
	}, nil
}

func (g *StateGraph[S]) hasTarget(name string) bool {
	if name == END {
		return true
	}
	_, ok := g.nodes[name]
	return ok
}

// WithTracer returns a new StateRunnable with the given tracer.
func (r *StateRunnable[S]) WithTracer(tracer *Tracer) *StateRunnable[S] {
	return &StateRunnable[S]{
		graph:  r.graph,
		tracer: tracer,
	}
}

// Graph returns the graph this runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// Invoke executes the compiled state graph with the given input state.
//
// Example:
//
//	initialState := MyState{Count: 0}
//	finalState, err := app.Invoke(ctx, initialState)
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the compiled state graph with the given input state and config.
// The config is made available to nodes through GetConfig.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	var zero S
	state := initialState

	// If schema is defined, merge initialState into schema's initial state
	if r.graph.Schema != nil {
		var err error
		state, err = r.graph.Schema.Update(r.graph.Schema.Init(), initialState)
		if err != nil {
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.RunID == "" {
		cfg.RunID = generateRunID()
	}
	limit := cfg.RecursionLimit
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}
	ctx = WithConfig(ctx, &cfg)

	var graphSpan *TraceSpan
	if r.tracer != nil {
		graphSpan = r.tracer.StartSpan(ctx, TraceEventGraphStart, "graph")
		graphSpan.State = initialState
		graphSpan.Metadata["run_id"] = cfg.RunID
		ctx = ContextWithSpan(ctx, graphSpan)
	}

	fail := func(err error) (S, error) {
		if graphSpan != nil {
			r.tracer.EndSpan(ctx, graphSpan, state, err)
		}
		return zero, err
	}

	current := r.graph.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= limit {
			return fail(fmt.Errorf("%w: %d", ErrRecursionLimit, limit))
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return fail(fmt.Errorf("%w: %s", ErrNodeNotFound, current))
		}

		update, err := r.executeNode(ctx, node, state)
		if err != nil {
			return fail(fmt.Errorf("error in node %s: %w", current, err))
		}

		state, err = r.mergeState(state, update)
		if err != nil {
			return fail(fmt.Errorf("node %s: %w", current, err))
		}

		next, err := r.determineNextNode(ctx, current, state)
		if err != nil {
			return fail(err)
		}

		if r.tracer != nil {
			r.tracer.TraceEdgeTraversal(ctx, current, next)
		}
		current = next
	}

	if graphSpan != nil {
		r.tracer.EndSpan(ctx, graphSpan, state, nil)
	}

	return state, nil
}

// executeNode runs a single node, converting a panic into an error.
func (r *StateRunnable[S]) executeNode(ctx context.Context, node Node[S], state S) (res S, err error) {
	var nodeSpan *TraceSpan
	if r.tracer != nil {
		nodeSpan = r.tracer.StartSpan(ctx, TraceEventNodeStart, node.Name)
		nodeSpan.State = state
		ctx = ContextWithSpan(ctx, nodeSpan)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in node %s: %v", node.Name, p)
		}
		if nodeSpan != nil {
			r.tracer.EndSpan(ctx, nodeSpan, res, err)
		}
	}()

	return node.Function(ctx, state)
}

// mergeState folds a node update into the current state.
func (r *StateRunnable[S]) mergeState(current, update S) (S, error) {
	if r.graph.Schema == nil {
		// Without a schema the node result replaces the state.
		return update, nil
	}
	state, err := r.graph.Schema.Update(current, update)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("schema update failed: %w", err)
	}
	return state, nil
}

// determineNextNode picks the successor of nodeName from its conditional edge or its static edge.
func (r *StateRunnable[S]) determineNextNode(ctx context.Context, nodeName string, state S) (string, error) {
	if ce, ok := r.graph.conditionalEdges[nodeName]; ok {
		route := ce.condition(ctx, state)
		if route == "" {
			return "", fmt.Errorf("%w: empty route from %s", ErrInvalidRoute, nodeName)
		}
		if ce.pathMap == nil {
			return route, nil
		}
		target, ok := ce.pathMap[route]
		if !ok {
			return "", fmt.Errorf("%w: %q from %s", ErrInvalidRoute, route, nodeName)
		}
		return target, nil
	}

	for _, edge := range r.graph.edges {
		if edge.From == nodeName {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, nodeName)
}

func generateRunID() string {
	return uuid.NewString()
}
