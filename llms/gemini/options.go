package gemini

import (
	"time"

	"github.com/tmc/langchaingo/callbacks"
)

const (
	// DefaultModel is used when neither New nor the call options name a model.
	DefaultModel = "gemini-2.5-flash"

	// DefaultMaxRetries is the number of times a failed call is retried.
	DefaultMaxRetries = 2

	defaultBackoff = 500 * time.Millisecond
)

type options struct {
	generator        ContentGenerator
	model            string
	temperature      float64
	maxRetries       int
	backoff          time.Duration
	callbacksHandler callbacks.Handler
}

// Option is a function type that can be used to modify the client options.
type Option func(*options)

// WithGenerator sets the generator used for requests. Without it the shared
// client is used.
func WithGenerator(generator ContentGenerator) Option {
	return func(opts *options) {
		opts.generator = generator
	}
}

// WithModel sets the default model. llms.WithModel on a call takes precedence.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(opts *options) {
		opts.temperature = temperature
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(opts *options) {
		opts.maxRetries = n
	}
}

// WithBackoff sets the delay before the first retry. Each further retry doubles it.
func WithBackoff(d time.Duration) Option {
	return func(opts *options) {
		opts.backoff = d
	}
}

// WithCallbacks sets the callbacks handler.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}
