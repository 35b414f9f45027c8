package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/researchcast/config"
	"github.com/smallnest/researchcast/content"
	"github.com/smallnest/researchcast/graph"
	"github.com/smallnest/researchcast/grounding"
	"github.com/smallnest/researchcast/llms/gemini"
)

// Keys of graph.Config.Configurable read by the steps.
const (
	ConfigurationKey   = "configuration"
	PodcastFilenameKey = "podcast_filename"
)

// SearchPrompt is the grounded search request for topic.
func SearchPrompt(topic string) string {
	return "Research this topic and give me an overview: " + topic
}

// configurationFrom returns the run configuration carried by ctx, or the
// defaults when the step runs outside Agent.Run.
func configurationFrom(ctx context.Context) config.Configuration {
	if cfg := graph.GetConfig(ctx); cfg != nil {
		if c, ok := cfg.Configurable[ConfigurationKey].(config.Configuration); ok {
			return c
		}
	}
	return config.Default()
}

func podcastFilenameFrom(ctx context.Context) string {
	if cfg := graph.GetConfig(ctx); cfg != nil {
		if name, ok := cfg.Configurable[PodcastFilenameKey].(string); ok {
			return name
		}
	}
	return ""
}

// steps implements the research nodes over a text model and a content generator.
type steps struct {
	model     llms.Model
	generator gemini.ContentGenerator
	outputDir string
}

func (s *steps) nodes() Nodes {
	return Nodes{
		SearchResearch: s.searchResearch,
		AnalyzeVideo:   s.analyzeVideo,
		CreateReport:   s.createReport,
		CreatePodcast:  s.createPodcast,
	}
}

func (s *steps) searchResearch(ctx context.Context, state ResearchState) (ResearchState, error) {
	cfg := configurationFrom(ctx)

	resp, err := s.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, SearchPrompt(state.Topic))},
		llms.WithModel(cfg.SearchModel),
		llms.WithTemperature(cfg.SearchTemperature),
		llms.WithTools([]llms.Tool{gemini.GoogleSearchTool}),
	)
	if err != nil {
		return ResearchState{}, fmt.Errorf("search: %w", err)
	}

	extraction := grounding.Extract(resp)
	return ResearchState{
		SearchText:        optional(extraction.Text),
		SearchSourcesText: optional(extraction.SourcesText),
	}, nil
}

func (s *steps) analyzeVideo(ctx context.Context, state ResearchState) (ResearchState, error) {
	cfg := configurationFrom(ctx)

	text, err := content.AnalyzeVideo(ctx, s.generator, cfg.VideoModel, state.Topic, state.VideoURL)
	if err != nil {
		return ResearchState{}, err
	}
	return ResearchState{VideoText: &text}, nil
}

func (s *steps) createReport(ctx context.Context, state ResearchState) (ResearchState, error) {
	report, err := content.CreateResearchReport(ctx, s.model, content.ReportArgs{
		Topic:             state.Topic,
		SearchText:        value(state.SearchText),
		VideoText:         value(state.VideoText),
		SearchSourcesText: value(state.SearchSourcesText),
		VideoURL:          state.VideoURL,
		Configuration:     configurationFrom(ctx),
	})
	if err != nil {
		return ResearchState{}, err
	}
	return ResearchState{
		Report:        &report.Report,
		SynthesisText: &report.Synthesis,
	}, nil
}

func (s *steps) createPodcast(ctx context.Context, state ResearchState) (ResearchState, error) {
	podcast, err := content.CreatePodcastDiscussion(ctx, s.model, s.generator, content.PodcastArgs{
		Topic:             state.Topic,
		SearchText:        value(state.SearchText),
		VideoText:         value(state.VideoText),
		SearchSourcesText: value(state.SearchSourcesText),
		VideoURL:          state.VideoURL,
		Filename:          podcastFilenameFrom(ctx),
		OutputDir:         s.outputDir,
		Configuration:     configurationFrom(ctx),
	})
	if err != nil {
		return ResearchState{}, err
	}
	return ResearchState{
		PodcastScript:   &podcast.Script,
		PodcastFilename: &podcast.Filename,
	}, nil
}
