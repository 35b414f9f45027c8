package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/smallnest/researchcast/agent"
	"github.com/smallnest/researchcast/audio"
	"github.com/smallnest/researchcast/config"
	"github.com/smallnest/researchcast/content"
	"github.com/smallnest/researchcast/graph"
	"github.com/smallnest/researchcast/render"
)

type runOptions struct {
	topic      string
	videoURL   string
	outputDir  string
	filename   string
	reportFile string
	htmlFile   string
	dryRun     bool
	timings    bool

	searchModel          string
	synthesisModel       string
	videoModel           string
	ttsModel             string
	searchTemperature    float64
	synthesisTemperature float64
	podcastTemperature   float64
	mikeVoice            string
	sarahVoice           string
	requestsPerMinute    int
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Research a topic and produce a report and a podcast",
		Example: `  researchcast run --topic "quantum computing"
  researchcast run --topic "ocean currents" --video-url https://example.com/ocean.mp4 --output-dir out
  researchcast run --topic "fusion" --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.topic) == "" {
				return agent.ErrEmptyTopic
			}
			if opts.dryRun {
				return opts.plan(cmd, root)
			}
			return opts.run(cmd, root)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.topic, "topic", "t", "", "research topic (required)")
	f.StringVar(&opts.videoURL, "video-url", "", "URL of a video to analyze")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for the podcast audio (default: working directory)")
	f.StringVar(&opts.filename, "filename", "", "exact path of the podcast audio file")
	f.StringVar(&opts.reportFile, "report-file", "", "write the Markdown report to this file instead of stdout")
	f.StringVar(&opts.htmlFile, "html", "", "also write the report as an HTML page")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the steps and configuration without calling any model")
	f.BoolVar(&opts.timings, "timings", false, "print how long each step took")

	f.StringVar(&opts.searchModel, "search-model", "", "model used for grounded search")
	f.StringVar(&opts.synthesisModel, "synthesis-model", "", "model used for the report and the podcast script")
	f.StringVar(&opts.videoModel, "video-model", "", "model used for video analysis")
	f.StringVar(&opts.ttsModel, "tts-model", "", "model used for speech synthesis")
	f.Float64Var(&opts.searchTemperature, "search-temperature", 0, "temperature of the search call")
	f.Float64Var(&opts.synthesisTemperature, "synthesis-temperature", 0, "temperature of the report synthesis")
	f.Float64Var(&opts.podcastTemperature, "podcast-temperature", 0, "temperature of the podcast script")
	f.StringVar(&opts.mikeVoice, "mike-voice", "", "prebuilt voice of Mike")
	f.StringVar(&opts.sarahVoice, "sarah-voice", "", "prebuilt voice of Dr. Sarah")
	f.IntVar(&opts.requestsPerMinute, "rpm", 0, "maximum Gemini requests per minute (0: unlimited)")

	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

// overrides maps the flags the user actually set onto config.Options.
func (o *runOptions) overrides(cmd *cobra.Command) config.Options {
	var opts config.Options
	changed := cmd.Flags().Changed

	if changed("search-model") {
		opts.SearchModel = &o.searchModel
	}
	if changed("synthesis-model") {
		opts.SynthesisModel = &o.synthesisModel
	}
	if changed("video-model") {
		opts.VideoModel = &o.videoModel
	}
	if changed("tts-model") {
		opts.TTSModel = &o.ttsModel
	}
	if changed("search-temperature") {
		opts.SearchTemperature = &o.searchTemperature
	}
	if changed("synthesis-temperature") {
		opts.SynthesisTemperature = &o.synthesisTemperature
	}
	if changed("podcast-temperature") {
		opts.PodcastScriptTemperature = &o.podcastTemperature
	}
	if changed("mike-voice") {
		opts.MikeVoice = &o.mikeVoice
	}
	if changed("sarah-voice") {
		opts.SarahVoice = &o.sarahVoice
	}
	if changed("rpm") {
		opts.RequestsPerMinute = &o.requestsPerMinute
	}
	return opts
}

func (o *runOptions) input() agent.Input {
	input := agent.Input{Topic: o.topic}
	if o.videoURL != "" {
		input.VideoURL = &o.videoURL
	}
	return input
}

func (o *runOptions) plan(cmd *cobra.Command, root *rootOptions) error {
	cfg, err := config.Resolve(root.configFile, o.overrides(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTitle(out, "Plan for "+o.topic)
	for i, step := range agent.Plan(o.input()) {
		fmt.Fprintf(out, "  %d. %s\n", i+1, stepStyle.Render(step.String()))
	}
	fmt.Fprintln(out)

	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, boxStyle.Render(strings.TrimRight(string(data), "\n")))
	return nil
}

func (o *runOptions) run(cmd *cobra.Command, root *rootOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	tracer := graph.NewTracer()
	agentOpts := append([]agent.Option{
		agent.WithOutputDir(o.outputDir),
		agent.WithLogger(root.logger),
		agent.WithTracer(tracer),
	}, root.agentOptions...)
	a := agent.New(agentOpts...)

	runOpts := []agent.RunOption{
		agent.WithOverrides(o.overrides(cmd)),
		agent.WithConfigFile(root.configFile),
	}
	if o.filename != "" {
		runOpts = append(runOpts, agent.WithFilename(o.filename))
	}

	result, err := a.Run(ctx, o.input(), runOpts...)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	if err := o.report(cmd, result); err != nil {
		return err
	}
	if o.timings {
		printTimings(cmd.OutOrStdout(), tracer)
	}
	return nil
}

func (o *runOptions) report(cmd *cobra.Command, result *agent.Output) error {
	out := cmd.OutOrStdout()
	report := valueOf(result.Report)

	if o.reportFile != "" {
		if err := renameio.WriteFile(o.reportFile, []byte(report+"\n"), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		fmt.Fprintln(out, report)
		fmt.Fprintln(out)
	}

	if o.htmlFile != "" {
		if err := render.WriteHTML(o.htmlFile, "Research Report: "+o.topic, report); err != nil {
			return err
		}
	}

	printTitle(out, "Done")
	if o.reportFile != "" {
		printField(out, "Report", o.reportFile)
	}
	if o.htmlFile != "" {
		printField(out, "HTML", o.htmlFile)
	}
	if o.reportFile != "" || o.htmlFile != "" {
		if err := summarize(out, report); err != nil {
			return err
		}
	}

	lines := content.ParseScript(valueOf(result.PodcastScript))
	printField(out, "Script", fmt.Sprintf("%d lines, %d exchanges", len(lines), content.Exchanges(lines)))

	if result.PodcastFilename != nil {
		printField(out, "Podcast", *result.PodcastFilename)
		if info, err := audio.ReadFileHeader(*result.PodcastFilename); err == nil {
			printField(out, "Duration", fmt.Sprintf("%.1fs", info.Duration()))
		}
	}
	return nil
}

// summarize prints the section outline and the cited links of a report that
// was written to a file rather than shown.
func summarize(out io.Writer, report string) error {
	headings, err := render.Outline(report)
	if err != nil {
		return err
	}
	links, err := render.Links(report)
	if err != nil {
		return err
	}

	var sections []string
	for _, h := range headings {
		if h.Level == 2 {
			sections = append(sections, h.Text)
		}
	}
	printField(out, "Sections", strings.Join(sections, ", "))

	noun := "links"
	if len(links) == 1 {
		noun = "link"
	}
	printField(out, "Sources", fmt.Sprintf("%d cited %s", len(links), noun))
	return nil
}

// printTimings lists the finished steps recorded by tracer in execution order.
func printTimings(out io.Writer, tracer *graph.Tracer) {
	var nodes []*graph.TraceSpan
	for _, span := range tracer.GetSpans() {
		if span.Event == graph.TraceEventNodeEnd {
			nodes = append(nodes, span)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].StartTime.Before(nodes[j].StartTime) })

	printTitle(out, "Timings")
	for _, span := range nodes {
		printField(out, span.NodeName, span.Duration.Round(time.Millisecond))
	}
}

func valueOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
