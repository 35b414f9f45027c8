// Package geminitest provides recording fakes of the Gemini collaborators for tests.
package geminitest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// ErrNoResponse is returned by the fakes when no response is configured.
var ErrNoResponse = errors.New("geminitest: no response configured")

// GeneratorCall records one GenerateContent call.
type GeneratorCall struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Generator is a fake gemini.ContentGenerator. Responses are returned in order;
// Err, when set, is returned instead.
type Generator struct {
	mu        sync.Mutex
	Responses []*genai.GenerateContentResponse
	Err       error
	Calls     []GeneratorCall
}

// GenerateContent records the call and returns the next configured response.
func (g *Generator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls = append(g.Calls, GeneratorCall{Model: model, Contents: contents, Config: config})
	if g.Err != nil {
		return nil, g.Err
	}
	if len(g.Responses) == 0 {
		return nil, ErrNoResponse
	}
	resp := g.Responses[0]
	g.Responses = g.Responses[1:]
	return resp, nil
}

// CallCount returns the number of recorded calls.
func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

// TextResponse builds a single-candidate response with one text part.
func TextResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

// AudioResponse builds a single-candidate response carrying pcm as inline data.
func AudioResponse(pcm []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes(pcm, "audio/L16;codec=pcm;rate=24000"),
			}, genai.RoleModel),
		}},
	}
}

// ModelCall records one llms.Model call.
type ModelCall struct {
	Prompt  string
	Options llms.CallOptions
}

// Model is a fake llms.Model. Respond decides the response for each call; when
// nil, the prompt is echoed back.
type Model struct {
	mu      sync.Mutex
	Respond func(call ModelCall) (*llms.ContentResponse, error)
	Calls   []ModelCall
}

var _ llms.Model = (*Model)(nil)

// GenerateContent records the call and delegates to Respond.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}

	var prompt strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}

	call := ModelCall{Prompt: prompt.String(), Options: opts}

	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	respond := m.Respond
	m.mu.Unlock()

	if respond == nil {
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: call.Prompt}}}, nil
	}
	return respond(call)
}

// Call implements llms.Model.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Text returns a response with a single choice holding text.
func Text(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}
