package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualization(t *testing.T) {
	noop := func(ctx context.Context, state map[string]any) (map[string]any, error) { return state, nil }

	g := NewStateGraph[map[string]any]()
	g.AddNode("A", "A", noop)
	g.AddNode("B", "B", noop)
	g.AddNode("C", "C", noop)

	g.SetEntryPoint("A")
	g.AddEdge("A", "B")
	g.AddConditionalEdges("B", func(ctx context.Context, state map[string]any) string { return "C" }, nil)
	g.AddEdge("C", END)

	_, err := g.Compile()
	assert.NoError(t, err)

	exporter := NewExporter(g)

	mermaid := exporter.DrawMermaid()
	assert.Contains(t, mermaid, "flowchart TD")
	assert.Contains(t, mermaid, "START --> A")
	assert.Contains(t, mermaid, "A --> B")
	assert.Contains(t, mermaid, "B -.-> B_condition((?))")
	assert.Contains(t, mermaid, "C --> END")

	mermaidLR := exporter.DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.Contains(t, mermaidLR, "flowchart LR")

	dot := exporter.DrawDOT()
	assert.Contains(t, dot, "A -> B")
	assert.Contains(t, dot, "B -> B_condition [style=dashed, label=\"?\"]")
}

func TestVisualization_PathMap(t *testing.T) {
	noop := func(ctx context.Context, state int) (int, error) { return state, nil }

	g := NewStateGraph[int]()
	g.AddNode("check", "check", noop)
	g.AddNode("work", "work", noop)
	g.SetEntryPoint("check")
	g.AddConditionalEdges("check", func(ctx context.Context, state int) string { return "skip" },
		map[string]string{"skip": END, "do": "work"})
	g.AddEdge("work", END)

	exporter := NewExporter(g)

	mermaid := exporter.DrawMermaid()
	assert.Contains(t, mermaid, "check -.->|do| work")
	assert.Contains(t, mermaid, "check -.->|skip| END")
	assert.Contains(t, mermaid, "END([\"END\"])")

	dot := exporter.DrawDOT()
	assert.Contains(t, dot, "check -> work [style=dashed, label=\"do\"];")
	assert.Contains(t, dot, "check -> END [style=dashed, label=\"skip\"];")
}
