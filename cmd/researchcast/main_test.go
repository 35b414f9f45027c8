package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/agent"
	"github.com/smallnest/researchcast/audio"
	"github.com/smallnest/researchcast/llms/gemini"
	"github.com/smallnest/researchcast/llms/gemini/geminitest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommand(t, newRootCmd(), args...)
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, "search_research -.->|analyze_video| analyze_video")

	out, err = execute(t, "graph", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, "create_podcast -> END;")

	_, err = execute(t, "graph", "--format", "svg")
	assert.ErrorContains(t, err, `unknown format "svg"`)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("TTSRATE", "16000")
	file := filepath.Join(t.TempDir(), "researchcast.yaml")
	require.NoError(t, os.WriteFile(file, []byte("mike_voice: Charon\n"), 0o644))

	out, err := execute(t, "--config", file, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "mike_voice: Charon")
	assert.Contains(t, out, "tts_rate: 16000")
	assert.Contains(t, out, "sarah_voice: Puck")
}

func TestConfigCommandFromEnvironment(t *testing.T) {
	t.Setenv("SARAH_VOICE", "Aoede")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "sarah_voice: Aoede")

	t.Setenv("TTSRATE", "5000000000")
	_, err = execute(t, "config")
	assert.ErrorContains(t, err, "tts_rate")
}

func TestInspectCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episode.wav")
	require.NoError(t, audio.WriteFile(path, make([]byte, 48000), audio.Format{Channels: 1, SampleRate: 24000, SampleWidth: 2}))

	out, err := execute(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "24000 Hz")
	assert.Contains(t, out, "1.00s")

	_, err = execute(t, "inspect", filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestRunDryRun(t *testing.T) {
	out, err := execute(t, "run", "--topic", "ocean currents", "--video-url", "https://example.com/ocean.mp4",
		"--dry-run", "--search-model", "search-x")
	require.NoError(t, err)

	assert.Contains(t, out, "Plan for ocean currents")
	assert.Contains(t, out, "1. search_research")
	assert.Contains(t, out, "2. analyze_video")
	assert.Contains(t, out, "4. create_podcast")
	assert.Contains(t, out, "search_model: search-x")
}

func TestRunRequiresTopic(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)

	_, err = execute(t, "run", "--topic", "  ", "--dry-run")
	assert.Error(t, err)
}

func TestRunMissingAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := execute(t, "run", "--topic", "fusion", "--output-dir", t.TempDir())
	assert.ErrorContains(t, err, "missing Google API key")
}

func TestBadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "chatty", "graph"})
	assert.Error(t, cmd.Execute())
}

func fakeModel() *geminitest.Model {
	return &geminitest.Model{
		Respond: func(call geminitest.ModelCall) (*llms.ContentResponse, error) {
			switch {
			case strings.HasPrefix(call.Prompt, "Research this topic"):
				return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
					Content: "Fusion overview.",
					GenerationInfo: map[string]any{
						gemini.GroundingMetadataKey: &genai.GroundingMetadata{
							GroundingChunks: []*genai.GroundingChunk{
								{Web: &genai.GroundingChunkWeb{Title: "Tokamaks", URI: "https://a.example/tokamaks"}},
							},
						},
					},
				}}}, nil
			case strings.HasPrefix(call.Prompt, "You are a research analyst"):
				return geminitest.Text("Fusion is close."), nil
			case strings.HasPrefix(call.Prompt, "Create a natural, engaging podcast"):
				return geminitest.Text("Mike: Is it close?\nDr. Sarah: Closer than ever.\nMike: Thanks!"), nil
			}
			return nil, errors.New("unexpected prompt")
		},
	}
}

func TestRunWritesReportFiles(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	gen := &geminitest.Generator{Responses: []*genai.GenerateContentResponse{
		geminitest.AudioResponse(make([]byte, 48000)),
	}}
	root := &rootOptions{agentOptions: []agent.Option{
		agent.WithTextModel(fakeModel()),
		agent.WithContentGenerator(gen),
	}}

	reportFile := filepath.Join(dir, "report.md")
	htmlFile := filepath.Join(dir, "report.html")
	out, err := executeCommand(t, newRootCommand(root), "run", "--topic", "fusion",
		"--output-dir", dir, "--report-file", reportFile, "--html", htmlFile)
	require.NoError(t, err)

	report, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(report), "# Research Report: fusion\n"))
	assert.Contains(t, string(report), "Fusion is close.")
	assert.NotContains(t, out, "Fusion is close.", "the report goes to the file, not stdout")

	page, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Research Report: fusion</title>")

	assert.Contains(t, out, reportFile)
	assert.Contains(t, out, htmlFile)
	assert.Contains(t, out, "Executive Summary, Video Source, Additional Sources")
	assert.Contains(t, out, "1 cited link")
	assert.Contains(t, out, "3 lines, 1 exchanges")
	assert.Contains(t, out, filepath.Join(dir, "research_podcast_fusion.wav"))
	assert.Contains(t, out, "1.0s")
	assert.Equal(t, 1, gen.CallCount())
}

func TestRunPrintsReport(t *testing.T) {
	root := &rootOptions{agentOptions: []agent.Option{
		agent.WithTextModel(fakeModel()),
		agent.WithContentGenerator(&geminitest.Generator{Responses: []*genai.GenerateContentResponse{
			geminitest.AudioResponse(make([]byte, 4)),
		}}),
	}}
	dir := t.TempDir()

	out, err := executeCommand(t, newRootCommand(root), "run", "--topic", "fusion",
		"--filename", filepath.Join(dir, "ep.wav"), "--timings")
	require.NoError(t, err)

	assert.Contains(t, out, "# Research Report: fusion")
	assert.NotContains(t, out, "cited link")

	start := strings.Index(out, "Timings")
	require.GreaterOrEqual(t, start, 0)
	timings := out[start:]
	search := strings.Index(timings, "search_research:")
	report := strings.Index(timings, "create_report:")
	podcast := strings.Index(timings, "create_podcast:")
	require.True(t, search >= 0 && report > search && podcast > report, timings)
	assert.NotContains(t, timings, "analyze_video")
	assert.FileExists(t, filepath.Join(dir, "ep.wav"))
}
