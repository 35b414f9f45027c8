package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/researchcast/config"
)

const (
	noVideoURL         = "No video provided"
	sourcesUnavailable = "Sources unavailable."
)

// ReportArgs are the inputs of CreateResearchReport.
type ReportArgs struct {
	Topic             string
	SearchText        string
	VideoText         string
	SearchSourcesText string
	VideoURL          *string
	Configuration     config.Configuration
}

// Report is the rendered Markdown report and the synthesis it embeds.
type Report struct {
	Report    string
	Synthesis string
}

// ReportPrompt asks the model to synthesize the search and video findings.
func ReportPrompt(args ReportArgs) string {
	return strings.Join([]string{
		`You are a research analyst. I have gathered information about "` + args.Topic + `" from two sources:`,
		"",
		"SEARCH RESULTS:",
		args.SearchText,
		"",
		"VIDEO CONTENT:",
		args.VideoText,
		"",
		"Please create a comprehensive synthesis that:",
		"1. Identifies key themes and insights from both sources",
		"2. Highlights any complementary or contrasting perspectives",
		"3. Provides an overall analysis of the topic based on this multi-modal research",
		"4. Keep it concise but thorough (3-4 paragraphs)",
		"",
		"Focus on creating a coherent narrative that brings together the best insights from both sources.",
	}, "\n")
}

// RenderReport lays out the Markdown report.
func RenderReport(topic, synthesis string, videoURL *string, sourcesText string) string {
	video := noVideoURL
	if videoURL != nil {
		video = *videoURL
	}
	if sourcesText == "" {
		sourcesText = sourcesUnavailable
	}

	return strings.Join([]string{
		"# Research Report: " + topic,
		"",
		"## Executive Summary",
		"",
		synthesis,
		"",
		"## Video Source",
		"- **URL**: " + video,
		"",
		"## Additional Sources",
		sourcesText,
		"",
		"---",
		"*Report generated using multi-modal AI research combining web search and video analysis*",
	}, "\n")
}

// CreateResearchReport synthesizes the findings with the synthesis model and
// renders the report around the result.
func CreateResearchReport(ctx context.Context, model llms.Model, args ReportArgs) (Report, error) {
	cfg := args.Configuration

	synthesis, err := llms.GenerateFromSinglePrompt(ctx, model, ReportPrompt(args),
		llms.WithModel(cfg.SynthesisModel),
		llms.WithTemperature(cfg.SynthesisTemperature),
	)
	if err != nil {
		return Report{}, fmt.Errorf("report synthesis: %w", err)
	}
	synthesis = strings.TrimSpace(synthesis)

	return Report{
		Report:    RenderReport(args.Topic, synthesis, args.VideoURL, args.SearchSourcesText),
		Synthesis: synthesis,
	}, nil
}
