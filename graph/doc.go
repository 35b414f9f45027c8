// Package graph provides the workflow engine that drives a research run.
//
// A StateGraph is a set of named nodes connected by edges. Each node receives
// the current state and returns an update; the graph's StateSchema folds the
// update into the state. Execution is strictly sequential: exactly one node
// runs at a time and every node has a single successor, chosen either by a
// static edge or by a conditional edge evaluated against the merged state.
//
// # Example Usage
//
//	type WorkflowState struct {
//		Input  string
//		Output string
//	}
//
//	g := graph.NewStateGraph[WorkflowState]()
//
//	g.AddNode("process", "Upper-case the input", func(ctx context.Context, state WorkflowState) (WorkflowState, error) {
//		state.Output = strings.ToUpper(state.Input)
//		return state, nil
//	})
//	g.AddNode("review", "Review the output", reviewFunc)
//
//	g.SetEntryPoint("process")
//	g.AddConditionalEdges("process", func(ctx context.Context, state WorkflowState) string {
//		if state.Output == "" {
//			return "skip"
//		}
//		return "review"
//	}, map[string]string{
//		"review": "review",
//		"skip":   graph.END,
//	})
//	g.AddEdge("review", graph.END)
//
//	runnable, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	result, err := runnable.Invoke(ctx, WorkflowState{Input: "hello"})
//
// # Routing
//
// Compile rejects graphs without an entry point, edges that reference unknown
// nodes, and nodes with more than one static edge. A conditional edge declared
// with a path map fails the run with ErrInvalidRoute when its condition returns
// a key outside the map. Runs are bounded by Config.RecursionLimit.
//
// # Configuration and Tracing
//
// InvokeWithConfig makes a Config available to every node through GetConfig.
// A Tracer attached with WithTracer records spans for the run,
// each node and every edge traversal, and forwards them to registered
// TraceHooks.
//
// # Visualization
//
//	exporter := graph.NewExporter(g)
//	fmt.Println(exporter.DrawMermaid())
//	fmt.Println(exporter.DrawDOT())
package graph
