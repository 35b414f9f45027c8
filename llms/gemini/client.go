package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/config"
)

// ContentGenerator is the raw multimodal capability of the Gemini API.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ ContentGenerator = (*genai.Models)(nil)

var (
	sharedMu       sync.Mutex
	sharedClient   *genai.Client
	sharedLimiters = make(map[int]*RateLimitedGenerator)
)

// SharedClient returns the process-wide Gemini client, creating it on first use
// with the key from config.ResolveAPIKey. A failed construction is not cached,
// so a later call can succeed once the environment is fixed.
func SharedClient(ctx context.Context) (*genai.Client, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedClient != nil {
		return sharedClient, nil
	}

	apiKey, err := config.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	sharedClient = client
	return sharedClient, nil
}

// SharedGenerator returns the Models service of the shared client.
func SharedGenerator(ctx context.Context) (ContentGenerator, error) {
	client, err := SharedClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// SharedRateLimitedGenerator returns the shared generator throttled to
// requestsPerMinute. Callers asking for the same rate share one token bucket,
// so concurrent runs together stay within the budget. A non-positive rate
// returns the shared generator unchanged.
func SharedRateLimitedGenerator(ctx context.Context, requestsPerMinute int) (ContentGenerator, error) {
	generator, err := SharedGenerator(ctx)
	if err != nil {
		return nil, err
	}
	if requestsPerMinute <= 0 {
		return generator, nil
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()

	limited, ok := sharedLimiters[requestsPerMinute]
	if !ok {
		limited = NewRateLimitedGenerator(generator, requestsPerMinute).(*RateLimitedGenerator)
		sharedLimiters[requestsPerMinute] = limited
	}
	return limited, nil
}

// RateLimitedGenerator throttles calls to the wrapped generator with a token bucket.
type RateLimitedGenerator struct {
	next    ContentGenerator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator allows requestsPerMinute calls per minute through to
// next. A non-positive rate returns next unchanged.
func NewRateLimitedGenerator(next ContentGenerator, requestsPerMinute int) ContentGenerator {
	if requestsPerMinute <= 0 {
		return next
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// GenerateContent waits for a token, then forwards the call.
func (g *RateLimitedGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return g.next.GenerateContent(ctx, model, contents, config)
}
