package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/config"
	"github.com/smallnest/researchcast/llms/gemini/geminitest"
)

func TestLLM_Create(t *testing.T) {
	t.Run("with generator", func(t *testing.T) {
		llm, err := New(WithGenerator(&geminitest.Generator{}), WithModel("gemini-2.5-pro"))
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", llm.model)
		assert.Equal(t, DefaultMaxRetries, llm.maxRetries)
	})

	t.Run("without api key", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")

		_, err := New()
		assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	})
}

func TestLLM_GenerateContentOptions(t *testing.T) {
	gen := &geminitest.Generator{Responses: []*genai.GenerateContentResponse{geminitest.TextResponse("overview")}}
	llm, err := New(WithGenerator(gen), WithTemperature(0.9))
	require.NoError(t, err)

	got, err := llm.Call(context.Background(), "Research this topic",
		llms.WithModel("gemini-search"),
		llms.WithTemperature(0),
		llms.WithTools([]llms.Tool{GoogleSearchTool}),
	)
	require.NoError(t, err)
	assert.Equal(t, "overview", got)

	require.Len(t, gen.Calls, 1)
	call := gen.Calls[0]
	assert.Equal(t, "gemini-search", call.Model)
	require.NotNil(t, call.Config.Temperature)
	assert.Equal(t, float32(0), *call.Config.Temperature)
	require.Len(t, call.Config.Tools, 1)
	assert.NotNil(t, call.Config.Tools[0].GoogleSearch)

	require.Len(t, call.Contents, 1)
	assert.Equal(t, genai.RoleUser, call.Contents[0].Role)
	assert.Equal(t, "Research this topic", call.Contents[0].Parts[0].Text)
}

func TestLLM_DefaultsApplyWithoutCallOptions(t *testing.T) {
	gen := &geminitest.Generator{Responses: []*genai.GenerateContentResponse{geminitest.TextResponse("ok")}}
	llm, err := New(WithGenerator(gen), WithModel("gemini-default"), WithTemperature(0.4))
	require.NoError(t, err)

	_, err = llm.Call(context.Background(), "hi")
	require.NoError(t, err)

	call := gen.Calls[0]
	assert.Equal(t, "gemini-default", call.Model)
	assert.InDelta(t, 0.4, float64(*call.Config.Temperature), 1e-6)
	assert.Empty(t, call.Config.Tools)
}

func TestLLM_SystemAndAssistantMessages(t *testing.T) {
	gen := &geminitest.Generator{Responses: []*genai.GenerateContentResponse{geminitest.TextResponse("ok")}}
	llm, err := New(WithGenerator(gen))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "be brief"),
		llms.TextParts(llms.ChatMessageTypeHuman, "question"),
		llms.TextParts(llms.ChatMessageTypeAI, "answer"),
		llms.TextParts(llms.ChatMessageTypeHuman, "follow-up"),
	})
	require.NoError(t, err)

	call := gen.Calls[0]
	require.NotNil(t, call.Config.SystemInstruction)
	assert.Equal(t, "be brief", call.Config.SystemInstruction.Parts[0].Text)
	require.Len(t, call.Contents, 3)
	assert.Equal(t, genai.RoleModel, call.Contents[1].Role)
}

func TestLLM_GroundingMetadataInGenerationInfo(t *testing.T) {
	md := &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{{Web: &genai.GroundingChunkWeb{Title: "Wiki", URI: "https://example.org"}}},
	}
	resp := geminitest.TextResponse("grounded")
	resp.Candidates[0].GroundingMetadata = md
	resp.Candidates[0].FinishReason = genai.FinishReasonStop
	resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     10,
		CandidatesTokenCount: 5,
		TotalTokenCount:      15,
	}

	llm, err := New(WithGenerator(&geminitest.Generator{Responses: []*genai.GenerateContentResponse{resp}}))
	require.NoError(t, err)

	out, err := llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "q"),
	})
	require.NoError(t, err)
	require.Len(t, out.Choices, 1)

	choice := out.Choices[0]
	assert.Equal(t, "grounded", choice.Content)
	assert.Equal(t, "STOP", choice.StopReason)
	assert.Same(t, md, choice.GenerationInfo[GroundingMetadataKey])
	assert.Equal(t, 15, choice.GenerationInfo["total_tokens"])
}

func TestLLM_SkipsThoughtParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "answer"},
			}},
		}},
	}
	llm, err := New(WithGenerator(&geminitest.Generator{Responses: []*genai.GenerateContentResponse{resp}}))
	require.NoError(t, err)

	got, err := llm.Call(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
}

func TestLLM_EmptyResponse(t *testing.T) {
	blocked := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "blocked", resp: blocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm, err := New(WithGenerator(&geminitest.Generator{Responses: []*genai.GenerateContentResponse{tt.resp}}))
			require.NoError(t, err)

			_, err = llm.Call(context.Background(), "q")
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestLLM_UnsupportedTool(t *testing.T) {
	gen := &geminitest.Generator{}
	llm, err := New(WithGenerator(gen))
	require.NoError(t, err)

	_, err = llm.Call(context.Background(), "q", llms.WithTools([]llms.Tool{{Type: "function"}}))
	assert.ErrorIs(t, err, ErrUnsupportedTool)
	assert.Zero(t, gen.CallCount())
}

type flakyGenerator struct {
	failures int
	calls    int
	err      error
}

func (f *flakyGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return geminitest.TextResponse("recovered"), nil
}

func TestLLM_Retries(t *testing.T) {
	unavailable := errors.New("503 unavailable")

	t.Run("recovers within budget", func(t *testing.T) {
		gen := &flakyGenerator{failures: 2, err: unavailable}
		llm, err := New(WithGenerator(gen), WithBackoff(time.Millisecond))
		require.NoError(t, err)

		got, err := llm.Call(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "recovered", got)
		assert.Equal(t, 3, gen.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		gen := &flakyGenerator{failures: 10, err: unavailable}
		llm, err := New(WithGenerator(gen), WithBackoff(time.Millisecond), WithMaxRetries(1))
		require.NoError(t, err)

		_, err = llm.Call(context.Background(), "q")
		assert.ErrorIs(t, err, unavailable)
		assert.Equal(t, 2, gen.calls)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		tests := []struct {
			name  string
			err   error
			calls int
		}{
			{name: "bad request", err: genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, calls: 1},
			{name: "forbidden", err: genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, calls: 1},
			{name: "not found", err: &genai.APIError{Code: 404, Status: "NOT_FOUND"}, calls: 1},
			{name: "rate limited", err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, calls: 3},
			{name: "server error", err: genai.APIError{Code: 500, Status: "INTERNAL"}, calls: 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				gen := &flakyGenerator{failures: 10, err: tt.err}
				llm, err := New(WithGenerator(gen), WithBackoff(time.Millisecond))
				require.NoError(t, err)

				_, err = llm.Call(context.Background(), "q")
				require.Error(t, err)
				assert.Equal(t, tt.calls, gen.calls)
			})
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		gen := &flakyGenerator{failures: 10, err: unavailable}
		llm, err := New(WithGenerator(gen), WithBackoff(time.Hour))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err = llm.Call(ctx, "q")
		assert.ErrorIs(t, err, unavailable)
		assert.Equal(t, 1, gen.calls)
	})
}

type countingHandler struct {
	callbacks.SimpleHandler
	starts, ends, errs int
}

func (h *countingHandler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	h.starts++
}

func (h *countingHandler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	h.ends++
}

func (h *countingHandler) HandleLLMError(ctx context.Context, err error) {
	h.errs++
}

func TestLLM_Callbacks(t *testing.T) {
	handler := &countingHandler{}
	gen := &geminitest.Generator{Responses: []*genai.GenerateContentResponse{geminitest.TextResponse("ok")}}
	llm, err := New(WithGenerator(gen), WithCallbacks(handler), WithMaxRetries(0))
	require.NoError(t, err)

	_, err = llm.Call(context.Background(), "q")
	require.NoError(t, err)
	_, err = llm.Call(context.Background(), "q")
	require.Error(t, err)

	assert.Equal(t, 2, handler.starts)
	assert.Equal(t, 1, handler.ends)
	assert.Equal(t, 1, handler.errs)
}
