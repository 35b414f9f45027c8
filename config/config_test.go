package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, f := range fields {
		for _, key := range []string{f.envKey(), strings.ToUpper(f.key)} {
			if _, ok := os.LookupEnv(key); ok {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
		}
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "researchcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ptr[T any](v T) *T { return &v }

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnvironment()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.SearchModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.SynthesisModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.VideoModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.TTSModel)
	assert.Equal(t, 0.0, cfg.SearchTemperature)
	assert.Equal(t, 0.3, cfg.SynthesisTemperature)
	assert.Equal(t, 0.4, cfg.PodcastScriptTemperature)
	assert.Equal(t, "Kore", cfg.MikeVoice)
	assert.Equal(t, "Puck", cfg.SarahVoice)
	assert.Equal(t, 1, cfg.TTSChannels)
	assert.Equal(t, 24000, cfg.TTSRate)
	assert.Equal(t, 2, cfg.TTSSampleWidth)
	assert.Equal(t, 0, cfg.RequestsPerMinute)
}

func TestEnvironmentCoercion(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Configuration)
	}{
		{
			name: "upper-cased field names",
			env:  map[string]string{"SEARCHMODEL": "gemini-2.5-pro", "TTSRATE": "16000"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, "gemini-2.5-pro", cfg.SearchModel)
				assert.Equal(t, 16000, cfg.TTSRate)
			},
		},
		{
			name: "snake case alias",
			env:  map[string]string{"MIKE_VOICE": "Charon"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, "Charon", cfg.MikeVoice)
			},
		},
		{
			name: "field name wins over alias",
			env:  map[string]string{"SARAHVOICE": "Aoede", "SARAH_VOICE": "Zephyr"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, "Aoede", cfg.SarahVoice)
			},
		},
		{
			name: "integers truncate",
			env:  map[string]string{"TTSCHANNELS": "2.9"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, 2, cfg.TTSChannels)
			},
		},
		{
			name: "floats parse",
			env:  map[string]string{"SYNTHESISTEMPERATURE": "0.75"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, 0.75, cfg.SynthesisTemperature)
			},
		},
		{
			name: "unparsable values fall back to defaults",
			env:  map[string]string{"TTSRATE": "fast", "SEARCHTEMPERATURE": "NaN"},
			check: func(t *testing.T, cfg Configuration) {
				assert.Equal(t, 24000, cfg.TTSRate)
				assert.Equal(t, 0.0, cfg.SearchTemperature)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnvironment()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, `
search_model: from-file
synthesis_model: from-file
video_model: from-file
tts_rate: 16000.8
requests_per_minute: 30
`)
	t.Setenv("SYNTHESISMODEL", "from-env")
	t.Setenv("VIDEOMODEL", "from-env")

	cfg, err := Resolve(path, Options{VideoModel: ptr("from-override")})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.SearchModel)
	assert.Equal(t, "from-env", cfg.SynthesisModel)
	assert.Equal(t, "from-override", cfg.VideoModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.TTSModel)
	assert.Equal(t, 16000, cfg.TTSRate)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
}

func TestResolveFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Resolve(writeFile(t, "search_model: [unclosed"), Options{})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	_, err := Resolve("", Options{TTSChannels: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve("", Options{TTSSampleWidth: ptr(5)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve("", Options{SearchTemperature: ptr(-0.1)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Resolve("", Options{TTSModel: ptr("  ")})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	tooLarge := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "rate above 32 bits", env: map[string]string{"TTSRATE": "5000000000"}, want: "tts_rate"},
		{name: "channels above 16 bits", env: map[string]string{"TTSCHANNELS": "70000"}, want: "tts_channels"},
		{name: "block align above 16 bits", env: map[string]string{"TTSCHANNELS": "40000"}, want: "block align"},
		{name: "byte rate above 32 bits", env: map[string]string{"TTSRATE": "2147483648", "TTSCHANNELS": "2"}, want: "byte rate"},
	}
	for _, tt := range tooLarge {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Resolve("", Options{})
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := Default()
	cfg.TTSRate = -1
	cfg.RequestsPerMinute = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tts_rate")
	assert.Contains(t, err.Error(), "requests_per_minute")
}

func TestYAMLRoundTrip(t *testing.T) {
	clearEnv(t)

	want := Default()
	want.MikeVoice = "Charon"

	data, err := want.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "mike_voice: Charon")

	var got Configuration
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	cfg, err := Resolve(writeFile(t, string(data)), Options{})
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := ResolveAPIKey()
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv("GEMINI_API_KEY", "  gemini-key  ")
	key, err := ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", key)

	t.Setenv("GOOGLE_API_KEY", "google-key")
	key, err = ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "google-key", key)

	t.Setenv("GOOGLE_API_KEY", "   ")
	key, err = ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", key)
}
