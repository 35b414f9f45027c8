// Package grounding turns a grounded Gemini response into plain text plus a
// numbered citation list.
package grounding

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/llms/gemini"
)

const (
	// MaxSnippetRunes is the length at which support snippets are truncated.
	MaxSnippetRunes = 100

	noTitle = "No title"
	noURI   = "No URI"
)

// Source is one cited web page. Index is the 1-based position of the chunk in
// the response metadata.
type Source struct {
	Index int
	Title string
	URI   string
}

// Support links a snippet of the answer to the sources backing it.
type Support struct {
	Snippet       string
	SourceNumbers []int
}

// Extraction is the normalized form of a grounded response.
type Extraction struct {
	Text        string
	SourcesText string
	Sources     []Source
	Supports    []Support
}

// Extract reads the text and grounding metadata of the first choice of resp.
func Extract(resp *llms.ContentResponse) Extraction {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return Extraction{}
	}

	choice := resp.Choices[0]
	md, _ := choice.GenerationInfo[gemini.GroundingMetadataKey].(*genai.GroundingMetadata)

	ext := FromMetadata(md)
	ext.Text = strings.TrimSpace(choice.Content)
	return ext
}

// FromMetadata builds the citation part of an Extraction from raw metadata.
// Text is left empty.
func FromMetadata(md *genai.GroundingMetadata) Extraction {
	var ext Extraction
	if md == nil {
		return ext
	}

	for i, chunk := range md.GroundingChunks {
		if src, ok := toSource(chunk, i); ok {
			ext.Sources = append(ext.Sources, src)
		}
	}
	for _, support := range md.GroundingSupports {
		if s, ok := toSupport(support); ok {
			ext.Supports = append(ext.Supports, s)
		}
	}
	ext.SourcesText = FormatSources(ext.Sources)
	return ext
}

// FormatSources renders sources as "<n>. <title>\n   <uri>" entries joined by newlines.
func FormatSources(sources []Source) string {
	lines := make([]string, 0, len(sources))
	for _, src := range sources {
		lines = append(lines, fmt.Sprintf("%d. %s\n   %s", src.Index, src.Title, src.URI))
	}
	return strings.Join(lines, "\n")
}

func toSource(chunk *genai.GroundingChunk, i int) (Source, bool) {
	if chunk == nil || chunk.Web == nil {
		return Source{}, false
	}
	title, uri := chunk.Web.Title, chunk.Web.URI
	if title == "" && uri == "" {
		return Source{}, false
	}
	if title == "" {
		title = noTitle
	}
	if uri == "" {
		uri = noURI
	}
	return Source{Index: i + 1, Title: title, URI: uri}, true
}

func toSupport(support *genai.GroundingSupport) (Support, bool) {
	if support == nil || len(support.GroundingChunkIndices) == 0 || support.Segment == nil {
		return Support{}, false
	}

	snippet := strings.TrimSpace(support.Segment.Text)
	if snippet == "" {
		return Support{}, false
	}
	if runes := []rune(snippet); len(runes) > MaxSnippetRunes {
		snippet = string(runes[:MaxSnippetRunes]) + "..."
	}

	numbers := make([]int, len(support.GroundingChunkIndices))
	for i, idx := range support.GroundingChunkIndices {
		numbers[i] = int(idx) + 1
	}
	return Support{Snippet: snippet, SourceNumbers: numbers}, true
}
