package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/researchcast/config"
	"github.com/smallnest/researchcast/graph"
	"github.com/smallnest/researchcast/llms/gemini"
	"github.com/smallnest/researchcast/log"
)

// Agent runs the research pipeline. An Agent holds no per-run state and may
// serve concurrent runs.
type Agent struct {
	model     llms.Model
	generator gemini.ContentGenerator
	logger    log.Logger
	outputDir string
	tracer    *graph.Tracer
}

// Option configures an Agent.
type Option func(*Agent)

// WithTextModel sets the model used for search, the report and the podcast
// script. By default a Gemini model over the content generator is used.
func WithTextModel(model llms.Model) Option {
	return func(a *Agent) {
		a.model = model
	}
}

// WithContentGenerator sets the multimodal generator used for video analysis
// and speech. By default the shared Gemini client is used.
func WithContentGenerator(generator gemini.ContentGenerator) Option {
	return func(a *Agent) {
		a.generator = generator
	}
}

// WithLogger sets the logger. The package-level logger is used otherwise.
func WithLogger(logger log.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithOutputDir sets the directory podcast audio is written to when no explicit
// filename is given. The working directory is used otherwise.
func WithOutputDir(dir string) Option {
	return func(a *Agent) {
		a.outputDir = dir
	}
}

// WithTracer observes every run with tracer instead of a fresh per-run tracer.
func WithTracer(tracer *graph.Tracer) Option {
	return func(a *Agent) {
		a.tracer = tracer
	}
}

// New creates an Agent. Collaborators that are not supplied are resolved at the
// first run, so a missing API key surfaces from Run.
func New(opts ...Option) *Agent {
	a := &Agent{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.GetDefaultLogger()
	}
	if a.tracer != nil {
		a.tracer.AddHook(newLoggingHook(a.logger))
	}
	return a
}

// Graph returns the research graph bound to this agent's steps. It does not
// resolve any collaborator and is meant for inspection.
func (a *Agent) Graph() *graph.StateGraph[ResearchState] {
	s := &steps{model: a.model, generator: a.generator, outputDir: a.outputDir}
	return NewGraph(s.nodes())
}

type runOptions struct {
	configFile string
	overrides  config.Options
	filename   string
	runID      string
}

// RunOption configures a single run.
type RunOption func(*runOptions)

// WithOverrides applies explicit configuration overrides, which win over the
// config file and the environment.
func WithOverrides(overrides config.Options) RunOption {
	return func(o *runOptions) {
		o.overrides = overrides
	}
}

// WithConfigFile reads configuration from a YAML file.
func WithConfigFile(path string) RunOption {
	return func(o *runOptions) {
		o.configFile = path
	}
}

// WithFilename writes the podcast audio to exactly this path.
func WithFilename(filename string) RunOption {
	return func(o *runOptions) {
		o.filename = filename
	}
}

// WithRunID sets the run id used in traces and logs.
func WithRunID(id string) RunOption {
	return func(o *runOptions) {
		o.runID = id
	}
}

// Run executes the pipeline for input. Steps run one after another and the
// first failure aborts the run; the returned error wraps it.
func (a *Agent) Run(ctx context.Context, input Input, opts ...RunOption) (*Output, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	state, err := input.state()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(ro.configFile, ro.overrides)
	if err != nil {
		return nil, err
	}

	s, err := a.resolveSteps(ctx, cfg)
	if err != nil {
		return nil, err
	}

	runnable, err := NewGraph(s.nodes()).Compile()
	if err != nil {
		return nil, fmt.Errorf("compile research graph: %w", err)
	}

	tracer := a.tracer
	if tracer == nil {
		tracer = graph.NewTracer()
		tracer.AddHook(newLoggingHook(a.logger))
	}

	a.logger.Info("researching %q (video: %t)", state.Topic, state.VideoURL != nil)

	final, err := runnable.WithTracer(tracer).InvokeWithConfig(ctx, state, &graph.Config{
		RunID: ro.runID,
		Configurable: map[string]any{
			ConfigurationKey:   cfg,
			PodcastFilenameKey: ro.filename,
		},
		Metadata: map[string]any{"topic": state.Topic},
		Tags:     []string{"researchcast"},
	})
	if err != nil {
		a.logger.Error("research run failed: %v", err)
		return nil, err
	}

	return final.output(), nil
}

// resolveSteps fills in the collaborators that were not supplied.
func (a *Agent) resolveSteps(ctx context.Context, cfg config.Configuration) (*steps, error) {
	generator := a.generator
	if generator == nil {
		shared, err := gemini.SharedRateLimitedGenerator(ctx, cfg.RequestsPerMinute)
		if err != nil {
			return nil, err
		}
		generator = shared
	}

	model := a.model
	if model == nil {
		llm, err := gemini.New(
			gemini.WithGenerator(generator),
			gemini.WithCallbacks(newLLMLogHandler(a.logger)),
		)
		if err != nil {
			return nil, err
		}
		model = llm
	}

	return &steps{model: model, generator: generator, outputDir: a.outputDir}, nil
}
