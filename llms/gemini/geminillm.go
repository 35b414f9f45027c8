package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

var (
	// ErrEmptyResponse is returned when the model produced no candidates.
	ErrEmptyResponse = errors.New("no response")

	// ErrUnsupportedTool is returned for tools other than GoogleSearchTool.
	ErrUnsupportedTool = errors.New("unsupported tool")
)

// GoogleSearchToolType is the llms.Tool type that enables Google Search grounding.
const GoogleSearchToolType = "google_search"

// GoogleSearchTool enables Google Search grounding for a call:
//
//	llm.GenerateContent(ctx, messages, llms.WithTools([]llms.Tool{gemini.GoogleSearchTool}))
var GoogleSearchTool = llms.Tool{Type: GoogleSearchToolType}

// GenerationInfo keys set on every llms.ContentChoice.
const (
	// GroundingMetadataKey holds the candidate's *genai.GroundingMetadata, if any.
	GroundingMetadataKey = "GroundingMetadata"
	// BlockReasonKey holds the prompt block reason, if the prompt was blocked.
	BlockReasonKey = "BlockReason"
)

// LLM is a langchaingo model backed by the Gemini API.
type LLM struct {
	generator        ContentGenerator
	model            string
	temperature      float64
	maxRetries       int
	backoff          time.Duration
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a Gemini LLM. Without WithGenerator the shared client is used,
// which requires GOOGLE_API_KEY or GEMINI_API_KEY.
//
// Example:
//
//	llm, err := gemini.New(
//		gemini.WithModel("gemini-2.5-flash"),
//		gemini.WithTemperature(0.3),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
		backoff:    defaultBackoff,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.generator == nil {
		generator, err := SharedGenerator(context.Background())
		if err != nil {
			return nil, err
		}
		options.generator = generator
	}

	return &LLM{
		generator:        options.generator,
		model:            options.model,
		temperature:      options.temperature,
		maxRetries:       options.maxRetries,
		backoff:          options.backoff,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{
		Model:       o.model,
		Temperature: o.temperature,
	}
	for _, opt := range options {
		opt(opts)
	}

	resp, err := o.generate(ctx, messages, opts)
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}

	return resp, nil
}

func (o *LLM) generate(ctx context.Context, messages []llms.MessageContent, opts *llms.CallOptions) (*llms.ContentResponse, error) {
	contents, system := convertMessages(messages)

	cfg, err := generateConfig(opts)
	if err != nil {
		return nil, err
	}
	cfg.SystemInstruction = system

	result, err := o.generateWithRetry(ctx, opts.Model, contents, cfg)
	if err != nil {
		return nil, err
	}

	return convertResponse(result)
}

// generateWithRetry retries failed calls with exponential backoff. Cancellation
// of ctx and permanent API errors stop retrying immediately.
func (o *LLM) generateWithRetry(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	delay := o.backoff
	for attempt := 0; ; attempt++ {
		result, err := o.generator.GenerateContent(ctx, model, contents, cfg)
		if err == nil {
			return result, nil
		}
		if attempt >= o.maxRetries || ctx.Err() != nil || !retryable(err) {
			return nil, fmt.Errorf("gemini %s: %w", model, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gemini %s: %w", model, err)
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// retryable reports whether err may succeed on a later attempt. Client errors
// other than 429 Too Many Requests are permanent.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code < 400 || apiErr.Code >= 500
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return retryable(*apiErrPtr)
	}
	return true
}

func convertMessages(messages []llms.MessageContent) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(messages))
	var system *genai.Content

	for _, msg := range messages {
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				parts = append(parts, genai.NewPartFromText(p.Text))
			case llms.BinaryContent:
				parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			case llms.ImageURLContent:
				parts = append(parts, genai.NewPartFromURI(p.URL, ""))
			}
		}
		if len(parts) == 0 {
			continue
		}

		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			if system == nil {
				system = genai.NewContentFromParts(parts, genai.RoleUser)
			} else {
				system.Parts = append(system.Parts, parts...)
			}
		case llms.ChatMessageTypeAI:
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
		}
	}

	return contents, system
}

func generateConfig(opts *llms.CallOptions) (*genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(float32(opts.TopP))
	}
	if opts.CandidateCount > 0 {
		cfg.CandidateCount = int32(opts.CandidateCount)
	}
	if len(opts.StopWords) > 0 {
		cfg.StopSequences = opts.StopWords
	}

	for _, tool := range opts.Tools {
		if tool.Type != GoogleSearchToolType {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedTool, tool.Type)
		}
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}

	return cfg, nil
}

func convertResponse(result *genai.GenerateContentResponse) (*llms.ContentResponse, error) {
	if result == nil {
		return nil, ErrEmptyResponse
	}
	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: prompt blocked: %s", ErrEmptyResponse, result.PromptFeedback.BlockReason)
		}
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{
		Choices: make([]*llms.ContentChoice, 0, len(result.Candidates)),
	}

	for _, candidate := range result.Candidates {
		info := make(map[string]any)
		if candidate.GroundingMetadata != nil {
			info[GroundingMetadataKey] = candidate.GroundingMetadata
		}
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			info[BlockReasonKey] = string(result.PromptFeedback.BlockReason)
		}
		if usage := result.UsageMetadata; usage != nil && usage.TotalTokenCount > 0 {
			info["prompt_tokens"] = int(usage.PromptTokenCount)
			info["completion_tokens"] = int(usage.CandidatesTokenCount)
			info["total_tokens"] = int(usage.TotalTokenCount)
		}

		resp.Choices = append(resp.Choices, &llms.ContentChoice{
			Content:        candidateText(candidate),
			StopReason:     string(candidate.FinishReason),
			GenerationInfo: info,
		})
	}

	return resp, nil
}

// candidateText concatenates the non-thought text parts of a candidate.
func candidateText(candidate *genai.Candidate) string {
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
