package agent

import (
	"context"

	"github.com/smallnest/researchcast/graph"
)

// NodeFunc is the signature of a research step. It receives the current state
// and returns a patch holding only the fields it writes.
type NodeFunc func(ctx context.Context, state ResearchState) (ResearchState, error)

// Nodes binds an implementation to every step.
type Nodes struct {
	SearchResearch NodeFunc
	AnalyzeVideo   NodeFunc
	CreateReport   NodeFunc
	CreatePodcast  NodeFunc
}

// NewGraph wires the research pipeline:
//
//	search_research -> [analyze_video] -> create_report -> create_podcast -> END
//
// analyze_video is entered only when the state carries a video URL.
func NewGraph(nodes Nodes) *graph.StateGraph[ResearchState] {
	g := graph.NewStateGraph[ResearchState]()
	g.SetSchema(researchSchema)

	g.AddNode(StepSearchResearch.String(), "Web search with grounding", nodes.SearchResearch)
	g.AddNode(StepAnalyzeVideo.String(), "Summarize the supplied video", nodes.AnalyzeVideo)
	g.AddNode(StepCreateReport.String(), "Synthesize the Markdown report", nodes.CreateReport)
	g.AddNode(StepCreatePodcast.String(), "Write the podcast script and render audio", nodes.CreatePodcast)

	g.SetEntryPoint(StepSearchResearch.String())

	g.AddConditionalEdges(StepSearchResearch.String(), func(_ context.Context, state ResearchState) string {
		return Next(StepSearchResearch, state).String()
	}, map[string]string{
		StepAnalyzeVideo.String(): StepAnalyzeVideo.String(),
		StepCreateReport.String(): StepCreateReport.String(),
	})
	g.AddEdge(StepAnalyzeVideo.String(), StepCreateReport.String())
	g.AddEdge(StepCreateReport.String(), StepCreatePodcast.String())
	g.AddEdge(StepCreatePodcast.String(), graph.END)

	return g
}
