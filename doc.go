// researchcast - Research Reports and Podcasts from a Single Topic
//
// researchcast takes a topic, and optionally a video URL, and produces a
// Markdown research report and a two-host podcast rendered to a WAV file. The
// work is done by Gemini models: grounded web search, video understanding,
// text synthesis and multi-speaker speech.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/smallnest/researchcast/cmd/researchcast@latest
//
// Run it:
//
//	export GOOGLE_API_KEY=...
//	researchcast run --topic "quantum computing"
//	researchcast run --topic "ocean currents" --video-url https://example.com/ocean.mp4 --html report.html
//
// Or use the library:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/researchcast/agent"
//	)
//
//	func main() {
//		a := agent.New(agent.WithOutputDir("out"))
//		out, err := a.Run(context.Background(), agent.Input{Topic: "quantum computing"})
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(*out.Report)
//		fmt.Println("podcast:", *out.PodcastFilename)
//	}
//
// # Pipeline
//
// A run walks a small state graph:
//
//	search_research -> [analyze_video] -> create_report -> create_podcast -> END
//
// The video step is taken only when a video URL is supplied. Every step writes
// its own fields of agent.ResearchState exactly once; the first failing step
// aborts the run.
//
// # Package Structure
//
//	graph/          Generic state graph: nodes, edges, conditional routing, tracing, Mermaid/DOT export
//	agent/          The research pipeline built on graph
//	config/         Configuration from defaults, YAML, environment and overrides
//	llms/gemini/    Gemini client, rate limiting and a langchaingo llms.Model
//	grounding/      Citations and support snippets from grounded responses
//	content/        Prompts, report and podcast generation, video analysis
//	audio/          WAV container writing and header parsing
//	render/         Report Markdown to sanitized HTML
//	log/            Leveled logging with a golog backend
//	cmd/researchcast/  Command line interface
//
// # Configuration
//
// Models, temperatures, voices and the audio format are configurable. Values
// are resolved from, in increasing precedence, built-in defaults, a YAML file,
// the environment (SEARCHMODEL or SEARCH_MODEL and so on) and explicit
// overrides:
//
//	search_model: gemini-2.5-flash
//	synthesis_temperature: 0.3
//	mike_voice: Kore
//	sarah_voice: Puck
//	tts_rate: 24000
//
// Print the effective configuration with:
//
//	researchcast --config researchcast.yaml config
package researchcast
