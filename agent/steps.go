package agent

import "github.com/smallnest/researchcast/graph"

// Step identifies a node of the research graph.
type Step int

const (
	StepSearchResearch Step = iota
	StepAnalyzeVideo
	StepCreateReport
	StepCreatePodcast
	StepDone
)

var stepNames = [...]string{
	StepSearchResearch: "search_research",
	StepAnalyzeVideo:   "analyze_video",
	StepCreateReport:   "create_report",
	StepCreatePodcast:  "create_podcast",
	StepDone:           graph.END,
}

// String returns the node name of the step. StepDone maps to graph.END.
func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Steps lists the executable steps in declaration order.
func Steps() []Step {
	return []Step{StepSearchResearch, StepAnalyzeVideo, StepCreateReport, StepCreatePodcast}
}

// Next returns the step that follows step given state. Video analysis runs
// only when a video URL is present.
func Next(step Step, state ResearchState) Step {
	switch step {
	case StepSearchResearch:
		if state.VideoURL != nil {
			return StepAnalyzeVideo
		}
		return StepCreateReport
	case StepAnalyzeVideo:
		return StepCreateReport
	case StepCreateReport:
		return StepCreatePodcast
	default:
		return StepDone
	}
}

// Plan returns the steps a run with input would execute, in order. Invalid
// input yields an empty plan.
func Plan(input Input) []Step {
	state, err := input.state()
	if err != nil {
		return nil
	}

	var plan []Step
	for step := StepSearchResearch; step != StepDone; step = Next(step, state) {
		plan = append(plan, step)
	}
	return plan
}
