package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smallnest/researchcast/graph"
)

var (
	// ErrEmptyTopic is returned by Run when the topic is blank.
	ErrEmptyTopic = errors.New("topic must not be empty")

	// ErrFieldReassigned is returned when a step writes a field that already has a value.
	ErrFieldReassigned = errors.New("state field already assigned")
)

// ResearchState is the state threaded through the research graph. Nil fields
// are absent. Every field is assigned at most once per run.
type ResearchState struct {
	Topic    string
	VideoURL *string

	SearchText        *string
	SearchSourcesText *string

	VideoText *string

	Report        *string
	SynthesisText *string

	PodcastScript   *string
	PodcastFilename *string
}

// Input starts a research run.
type Input struct {
	Topic    string
	VideoURL *string
}

// Output is what a finished run hands back.
type Output struct {
	Report          *string
	PodcastScript   *string
	PodcastFilename *string
}

func (in Input) state() (ResearchState, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return ResearchState{}, ErrEmptyTopic
	}

	var videoURL *string
	if in.VideoURL != nil {
		videoURL = optional(*in.VideoURL)
	}
	return ResearchState{Topic: in.Topic, VideoURL: videoURL}, nil
}

func (s ResearchState) output() *Output {
	return &Output{
		Report:          s.Report,
		PodcastScript:   s.PodcastScript,
		PodcastFilename: s.PodcastFilename,
	}
}

// optional trims v and returns nil when nothing is left.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// researchSchema merges step patches into the run state and rejects any patch
// that overwrites a value.
var researchSchema = graph.SchemaFuncs[ResearchState]{
	UpdateFunc: mergeState,
}

func mergeState(current, patch ResearchState) (ResearchState, error) {
	merged := current

	if patch.Topic != "" {
		if current.Topic != "" {
			return current, fmt.Errorf("%w: Topic", ErrFieldReassigned)
		}
		merged.Topic = patch.Topic
	}

	assignments := []struct {
		name string
		dst  **string
		src  *string
	}{
		{"VideoURL", &merged.VideoURL, patch.VideoURL},
		{"SearchText", &merged.SearchText, patch.SearchText},
		{"SearchSourcesText", &merged.SearchSourcesText, patch.SearchSourcesText},
		{"VideoText", &merged.VideoText, patch.VideoText},
		{"Report", &merged.Report, patch.Report},
		{"SynthesisText", &merged.SynthesisText, patch.SynthesisText},
		{"PodcastScript", &merged.PodcastScript, patch.PodcastScript},
		{"PodcastFilename", &merged.PodcastFilename, patch.PodcastFilename},
	}
	for _, a := range assignments {
		if a.src == nil {
			continue
		}
		if *a.dst != nil {
			return current, fmt.Errorf("%w: %s", ErrFieldReassigned, a.name)
		}
		*a.dst = a.src
	}

	return merged, nil
}
