// Package config resolves the settings of a research run from built-in defaults,
// an optional YAML file, the environment and explicit overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smallnest/researchcast/audio"
	"github.com/smallnest/researchcast/log"
)

// ErrInvalidConfig is returned by Validate when a resolved value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Configuration holds the model, voice and audio settings of a research run.
// It is resolved once per run and treated as read-only afterwards.
type Configuration struct {
	SearchModel    string `yaml:"search_model"`
	SynthesisModel string `yaml:"synthesis_model"`
	VideoModel     string `yaml:"video_model"`
	TTSModel       string `yaml:"tts_model"`

	SearchTemperature        float64 `yaml:"search_temperature"`
	SynthesisTemperature     float64 `yaml:"synthesis_temperature"`
	PodcastScriptTemperature float64 `yaml:"podcast_script_temperature"`

	MikeVoice  string `yaml:"mike_voice"`
	SarahVoice string `yaml:"sarah_voice"`

	TTSChannels    int `yaml:"tts_channels"`
	TTSRate        int `yaml:"tts_rate"`
	TTSSampleWidth int `yaml:"tts_sample_width"`

	// RequestsPerMinute throttles calls to the Gemini API. Zero disables throttling.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Default returns the built-in configuration.
func Default() Configuration {
	return Configuration{
		SearchModel:              "gemini-2.5-flash",
		SynthesisModel:           "gemini-2.5-flash",
		VideoModel:               "gemini-2.5-flash",
		TTSModel:                 "gemini-2.5-flash-preview-tts",
		SearchTemperature:        0,
		SynthesisTemperature:     0.3,
		PodcastScriptTemperature: 0.4,
		MikeVoice:                "Kore",
		SarahVoice:               "Puck",
		TTSChannels:              1,
		TTSRate:                  24000,
		TTSSampleWidth:           2,
	}
}

// Resolve builds a Configuration from, in increasing order of precedence, the
// defaults, the YAML file at path (skipped when path is empty), the environment
// and the explicit overrides.
func Resolve(path string, overrides Options) (Configuration, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Configuration{}, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	overrides.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// FromEnvironment resolves the defaults overlaid with the environment.
func FromEnvironment() (Configuration, error) {
	return Resolve("", Options{})
}

// Validate reports every out-of-range value, each wrapped with ErrInvalidConfig.
func (c Configuration) Validate() error {
	var errs []error
	invalid := func(format string, v ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, v...)...))
	}

	for _, f := range fields {
		if f.kind == kindString && strings.TrimSpace(*f.str(&c)) == "" {
			invalid("%s must not be empty", f.key)
		}
	}
	if c.SearchTemperature < 0 {
		invalid("search_temperature must not be negative, got %v", c.SearchTemperature)
	}
	if c.SynthesisTemperature < 0 {
		invalid("synthesis_temperature must not be negative, got %v", c.SynthesisTemperature)
	}
	if c.PodcastScriptTemperature < 0 {
		invalid("podcast_script_temperature must not be negative, got %v", c.PodcastScriptTemperature)
	}
	if c.TTSChannels <= 0 {
		invalid("tts_channels must be positive, got %d", c.TTSChannels)
	}
	if c.TTSRate <= 0 {
		invalid("tts_rate must be positive, got %d", c.TTSRate)
	}
	if c.TTSSampleWidth < 1 || c.TTSSampleWidth > 4 {
		invalid("tts_sample_width must be between 1 and 4, got %d", c.TTSSampleWidth)
	}
	if c.TTSChannels > math.MaxUint16 {
		invalid("tts_channels must be at most %d, got %d", math.MaxUint16, c.TTSChannels)
	}
	if int64(c.TTSRate) > math.MaxUint32 {
		invalid("tts_rate must be at most %d, got %d", uint32(math.MaxUint32), c.TTSRate)
	}
	if c.TTSChannels > 0 && c.TTSRate > 0 && c.TTSSampleWidth >= 1 && c.TTSSampleWidth <= 4 {
		if err := c.AudioFormat().Validate(); err != nil {
			invalid("tts format does not fit a WAV header: %v", err)
		}
	}
	if c.RequestsPerMinute < 0 {
		invalid("requests_per_minute must not be negative, got %d", c.RequestsPerMinute)
	}

	return errors.Join(errs...)
}

// AudioFormat is the PCM layout of the speech model's output.
func (c Configuration) AudioFormat() audio.Format {
	return audio.Format{
		Channels:    c.TTSChannels,
		SampleRate:  c.TTSRate,
		SampleWidth: c.TTSSampleWidth,
	}
}

// YAML renders the configuration in the same format Resolve reads.
func (c Configuration) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Configuration) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for _, f := range fields {
		if v, ok := raw[f.key]; ok && v != nil {
			f.set(c, v)
		}
	}
	return nil
}

func (c *Configuration) applyEnv(lookup func(string) (string, bool)) {
	for _, f := range fields {
		if v, ok := lookup(f.envKey()); ok {
			f.set(c, v)
			continue
		}
		if v, ok := lookup(strings.ToUpper(f.key)); ok {
			f.set(c, v)
		}
	}
}

type kind int

const (
	kindString kind = iota
	kindFloat
	kindInt
)

// field describes one Configuration entry and how raw values are coerced into it.
type field struct {
	name string
	key  string
	kind kind

	str  func(c *Configuration) *string
	flt  func(c *Configuration) *float64
	intp func(c *Configuration) *int
}

var fields = []field{
	{name: "SearchModel", key: "search_model", kind: kindString, str: func(c *Configuration) *string { return &c.SearchModel }},
	{name: "SynthesisModel", key: "synthesis_model", kind: kindString, str: func(c *Configuration) *string { return &c.SynthesisModel }},
	{name: "VideoModel", key: "video_model", kind: kindString, str: func(c *Configuration) *string { return &c.VideoModel }},
	{name: "TTSModel", key: "tts_model", kind: kindString, str: func(c *Configuration) *string { return &c.TTSModel }},
	{name: "SearchTemperature", key: "search_temperature", kind: kindFloat, flt: func(c *Configuration) *float64 { return &c.SearchTemperature }},
	{name: "SynthesisTemperature", key: "synthesis_temperature", kind: kindFloat, flt: func(c *Configuration) *float64 { return &c.SynthesisTemperature }},
	{name: "PodcastScriptTemperature", key: "podcast_script_temperature", kind: kindFloat, flt: func(c *Configuration) *float64 { return &c.PodcastScriptTemperature }},
	{name: "MikeVoice", key: "mike_voice", kind: kindString, str: func(c *Configuration) *string { return &c.MikeVoice }},
	{name: "SarahVoice", key: "sarah_voice", kind: kindString, str: func(c *Configuration) *string { return &c.SarahVoice }},
	{name: "TTSChannels", key: "tts_channels", kind: kindInt, intp: func(c *Configuration) *int { return &c.TTSChannels }},
	{name: "TTSRate", key: "tts_rate", kind: kindInt, intp: func(c *Configuration) *int { return &c.TTSRate }},
	{name: "TTSSampleWidth", key: "tts_sample_width", kind: kindInt, intp: func(c *Configuration) *int { return &c.TTSSampleWidth }},
	{name: "RequestsPerMinute", key: "requests_per_minute", kind: kindInt, intp: func(c *Configuration) *int { return &c.RequestsPerMinute }},
}

// envKey is the upper-cased field name, e.g. SEARCHMODEL.
func (f field) envKey() string {
	return strings.ToUpper(f.name)
}

// set coerces raw into the field. Numeric values that cannot be parsed fall
// back to the default.
func (f field) set(c *Configuration, raw any) {
	switch f.kind {
	case kindString:
		*f.str(c) = fmt.Sprint(raw)
	case kindFloat:
		v, ok := toFloat(raw)
		if !ok {
			def := Default()
			log.Warn("config: cannot parse %s=%v as a number, using default %v", f.key, raw, *f.flt(&def))
			v = *f.flt(&def)
		}
		*f.flt(c) = v
	case kindInt:
		v, ok := toFloat(raw)
		if !ok {
			def := Default()
			log.Warn("config: cannot parse %s=%v as an integer, using default %d", f.key, raw, *f.intp(&def))
			*f.intp(c) = *f.intp(&def)
			return
		}
		*f.intp(c) = int(math.Trunc(v))
	}
}

func toFloat(raw any) (float64, bool) {
	var v float64
	switch x := raw.(type) {
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case float64:
		v = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
