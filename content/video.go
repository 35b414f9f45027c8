package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"

	"github.com/smallnest/researchcast/llms/gemini"
	"github.com/smallnest/researchcast/log"
)

const (
	// NoVideoText is recorded as the video analysis when no video URL was given.
	NoVideoText = "No video provided for analysis."

	// EmptyVideoAnalysisText is recorded when the model returned no usable text.
	EmptyVideoAnalysisText = "The video analysis did not return any text."

	defaultMIMEType = "application/octet-stream"
)

var videoMIMETypes = map[string]string{
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
}

// InferMIMEType guesses the MIME type of a video from the extension of its URL
// path. Unknown extensions and unparsable URLs yield application/octet-stream.
func InferMIMEType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return defaultMIMEType
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if mime, ok := videoMIMETypes[ext]; ok {
		return mime
	}
	return defaultMIMEType
}

// VideoPrompt is the instruction sent alongside the video.
func VideoPrompt(topic string) string {
	return "Based on the video content, give me an overview of this topic: " + topic
}

// BuildVideoRequest returns a single user message made of the video reference
// followed by the instruction text.
func BuildVideoRequest(topic, videoURL string) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(videoURL, InferMIMEType(videoURL)),
			genai.NewPartFromText(VideoPrompt(topic)),
		}, genai.RoleUser),
	}
}

// ExtractVideoSummary returns the trimmed text of resp. When the response text
// is not available, the text parts of the first candidate are joined with
// newlines instead. An empty result becomes EmptyVideoAnalysisText.
func ExtractVideoSummary(resp *genai.GenerateContentResponse) string {
	summary, err := responseText(resp)
	if err != nil {
		log.Debug("video response text unavailable, falling back to candidate parts: %v", err)
		summary = joinTextParts(resp)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return EmptyVideoAnalysisText
	}
	return summary
}

// AnalyzeVideo summarizes the video at videoURL with respect to topic. Without a
// URL it returns NoVideoText and makes no call.
func AnalyzeVideo(ctx context.Context, generator gemini.ContentGenerator, model, topic string, videoURL *string) (string, error) {
	if videoURL == nil || strings.TrimSpace(*videoURL) == "" {
		return NoVideoText, nil
	}

	resp, err := generator.GenerateContent(ctx, model, BuildVideoRequest(topic, *videoURL), nil)
	if err != nil {
		return "", fmt.Errorf("video analysis: %w", err)
	}
	return ExtractVideoSummary(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("nil response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates")
	}
	if reason := resp.Candidates[0].FinishReason; reason == genai.FinishReasonSafety {
		return "", fmt.Errorf("candidate finished with %s", reason)
	}
	return resp.Text(), nil
}

func joinTextParts(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var segments []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			segments = append(segments, part.Text)
		}
	}
	return strings.Join(segments, "\n")
}
