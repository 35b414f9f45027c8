package config

import (
	"errors"
	"os"
	"strings"
)

// ErrMissingAPIKey is returned when neither GOOGLE_API_KEY nor GEMINI_API_KEY is set.
var ErrMissingAPIKey = errors.New("missing Google API key: set GOOGLE_API_KEY or GEMINI_API_KEY in the environment")

// APIKeyEnvKeys lists the environment variables checked for the Gemini API key, in order.
var APIKeyEnvKeys = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

// ResolveAPIKey returns the first non-blank API key from the environment, trimmed.
func ResolveAPIKey() (string, error) {
	for _, key := range APIKeyEnvKeys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, nil
		}
	}
	return "", ErrMissingAPIKey
}
