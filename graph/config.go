package graph

import "context"

// Config carries per-run settings into a graph execution.
type Config struct {
	// RunID identifies the run. A random id is generated when empty.
	RunID string

	// Configurable holds values that nodes read at runtime, keyed by name.
	Configurable map[string]any

	// Metadata is attached to the run for observability.
	Metadata map[string]any

	// Tags label the run.
	Tags []string

	// RecursionLimit caps the number of node executions. Zero means DefaultRecursionLimit.
	RecursionLimit int
}

type configKey struct{}

// WithConfig returns a copy of ctx carrying config.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig retrieves the run config from ctx, or nil outside a run.
func GetConfig(ctx context.Context) *Config {
	if config, ok := ctx.Value(configKey{}).(*Config); ok {
		return config
	}
	return nil
}
