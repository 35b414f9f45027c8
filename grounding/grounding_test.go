package grounding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/llms/gemini"
)

func web(title, uri string) *genai.GroundingChunk {
	return &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: title, URI: uri}}
}

func TestExtract_WithoutMetadata(t *testing.T) {
	ext := Extract(&llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  plain answer \n"}}})

	assert.Equal(t, "plain answer", ext.Text)
	assert.Empty(t, ext.SourcesText)
	assert.Empty(t, ext.Sources)
	assert.Empty(t, ext.Supports)

	assert.Equal(t, Extraction{}, Extract(nil))
	assert.Equal(t, Extraction{}, Extract(&llms.ContentResponse{}))
}

func TestExtract_Sources(t *testing.T) {
	md := &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			web("Quantum Computing - Wikipedia", "https://en.wikipedia.org/wiki/Quantum_computing"),
			web("", ""),
			web("", "https://ibm.com/quantum"),
			web("Untitled link", ""),
			{},
		},
	}
	resp := &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        "answer",
		GenerationInfo: map[string]any{gemini.GroundingMetadataKey: md},
	}}}

	ext := Extract(resp)
	assert.Equal(t, "answer", ext.Text)
	assert.Equal(t, []Source{
		{Index: 1, Title: "Quantum Computing - Wikipedia", URI: "https://en.wikipedia.org/wiki/Quantum_computing"},
		{Index: 3, Title: "No title", URI: "https://ibm.com/quantum"},
		{Index: 4, Title: "Untitled link", URI: "No URI"},
	}, ext.Sources)

	assert.Equal(t, "1. Quantum Computing - Wikipedia\n   https://en.wikipedia.org/wiki/Quantum_computing\n"+
		"3. No title\n   https://ibm.com/quantum\n"+
		"4. Untitled link\n   No URI", ext.SourcesText)
}

func TestFromMetadata_Supports(t *testing.T) {
	long := strings.Repeat("a", 150)
	exact := strings.Repeat("b", 100)

	md := &genai.GroundingMetadata{
		GroundingSupports: []*genai.GroundingSupport{
			{GroundingChunkIndices: []int32{0, 2}, Segment: &genai.Segment{Text: "  Qubits use superposition.  "}},
			{GroundingChunkIndices: []int32{1}, Segment: &genai.Segment{Text: long}},
			{GroundingChunkIndices: []int32{1}, Segment: &genai.Segment{Text: exact}},
			{Segment: &genai.Segment{Text: "no indices"}},
			{GroundingChunkIndices: []int32{0}, Segment: &genai.Segment{Text: "   "}},
			{GroundingChunkIndices: []int32{0}},
		},
	}

	ext := FromMetadata(md)
	require.Len(t, ext.Supports, 3)

	assert.Equal(t, Support{Snippet: "Qubits use superposition.", SourceNumbers: []int{1, 3}}, ext.Supports[0])
	assert.Equal(t, strings.Repeat("a", 100)+"...", ext.Supports[1].Snippet)
	assert.Equal(t, []int{2}, ext.Supports[1].SourceNumbers)
	assert.Equal(t, exact, ext.Supports[2].Snippet)

	assert.Empty(t, ext.Text)
	assert.Empty(t, ext.SourcesText)
}

func TestFromMetadata_TruncatesRunes(t *testing.T) {
	snippet := strings.Repeat("é", 101)
	ext := FromMetadata(&genai.GroundingMetadata{
		GroundingSupports: []*genai.GroundingSupport{
			{GroundingChunkIndices: []int32{0}, Segment: &genai.Segment{Text: snippet}},
		},
	})

	require.Len(t, ext.Supports, 1)
	assert.Equal(t, strings.Repeat("é", 100)+"...", ext.Supports[0].Snippet)
}

func TestFormatSources_Empty(t *testing.T) {
	assert.Equal(t, "", FormatSources(nil))
}
