package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/smallnest/researchcast/audio"
	"github.com/smallnest/researchcast/config"
	"github.com/smallnest/researchcast/llms/gemini"
	"github.com/smallnest/researchcast/log"
)

// Speaker names used in the script and mapped to voices for speech synthesis.
const (
	SpeakerMike  = "Mike"
	SpeakerSarah = "Dr. Sarah"
)

// ErrNoAudioData is returned when the speech model response carries no audio.
var ErrNoAudioData = errors.New("speech synthesis did not return audio data")

// PodcastArgs are the inputs of CreatePodcastDiscussion.
type PodcastArgs struct {
	Topic             string
	SearchText        string
	VideoText         string
	SearchSourcesText string
	VideoURL          *string

	// Filename, when set, is the exact path the audio is written to.
	Filename string
	// OutputDir holds the derived file when Filename is empty.
	OutputDir string

	Configuration config.Configuration
}

// Podcast is the generated script and the path of the written audio file.
type Podcast struct {
	Script   string
	Filename string
}

// PodcastPrompt asks for a short interview between Mike and Dr. Sarah.
func PodcastPrompt(args PodcastArgs) string {
	return strings.Join([]string{
		`Create a natural, engaging podcast conversation between Dr. Sarah (research expert) and Mike (curious interviewer) about "` + args.Topic + `".`,
		"",
		"Use this research content:",
		"",
		"SEARCH FINDINGS:",
		args.SearchText,
		"",
		"VIDEO INSIGHTS:",
		args.VideoText,
		"",
		"Format as a dialogue with:",
		"- Mike introducing the topic and asking questions",
		"- Dr. Sarah explaining key concepts and insights",
		"- Natural back-and-forth discussion (5-7 exchanges)",
		"- Mike asking follow-up questions",
		"- Dr. Sarah synthesizing the main takeaways",
		"- Keep it conversational and accessible (3-4 minutes when spoken)",
		"",
		"Format exactly like this:",
		"Mike: [opening question]",
		"Dr. Sarah: [expert response]",
		"Mike: [follow-up]",
		"Dr. Sarah: [explanation]",
		"[continue...]",
	}, "\n")
}

// TTSPrompt wraps a script for the speech model.
func TTSPrompt(script string) string {
	return "TTS the following conversation between Mike and Dr. Sarah:\n" + script
}

// AudioRequest builds the speech request for prompt: audio output with one
// prebuilt voice per speaker.
func AudioRequest(prompt string, cfg config.Configuration) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	voice := func(speaker, name string) *genai.SpeakerVoiceConfig {
		return &genai.SpeakerVoiceConfig{
			Speaker: speaker,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: name},
			},
		}
	}

	return contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			MultiSpeakerVoiceConfig: &genai.MultiSpeakerVoiceConfig{
				SpeakerVoiceConfigs: []*genai.SpeakerVoiceConfig{
					voice(SpeakerMike, cfg.MikeVoice),
					voice(SpeakerSarah, cfg.SarahVoice),
				},
			},
		},
	}
}

// ExtractAudio returns the first inline data payload found in any candidate.
func ExtractAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil {
		return nil, ErrNoAudioData
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, ErrNoAudioData
}

// GeneratePodcastScript writes the dialogue with the synthesis model.
func GeneratePodcastScript(ctx context.Context, model llms.Model, args PodcastArgs) (string, error) {
	cfg := args.Configuration
	script, err := llms.GenerateFromSinglePrompt(ctx, model, PodcastPrompt(args),
		llms.WithModel(cfg.SynthesisModel),
		llms.WithTemperature(cfg.PodcastScriptTemperature),
	)
	if err != nil {
		return "", fmt.Errorf("podcast script: %w", err)
	}
	return strings.TrimSpace(script), nil
}

// GeneratePodcastAudio renders script to speech and writes it to path as WAV.
func GeneratePodcastAudio(ctx context.Context, generator gemini.ContentGenerator, script, path string, cfg config.Configuration) error {
	contents, genConfig := AudioRequest(TTSPrompt(script), cfg)

	resp, err := generator.GenerateContent(ctx, cfg.TTSModel, contents, genConfig)
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}

	pcm, err := ExtractAudio(resp)
	if err != nil {
		return err
	}

	if err := audio.WriteFile(path, pcm, cfg.AudioFormat()); err != nil {
		return err
	}

	log.Debug("wrote %d bytes of audio to %s", len(pcm), path)
	return nil
}

// CreatePodcastDiscussion generates the script, renders it to speech and writes
// the audio file. The returned Filename is the path actually written.
func CreatePodcastDiscussion(ctx context.Context, model llms.Model, generator gemini.ContentGenerator, args PodcastArgs) (Podcast, error) {
	path := args.Filename
	if path == "" {
		path = filepath.Join(args.OutputDir, PodcastFilename(args.Topic))
	}

	script, err := GeneratePodcastScript(ctx, model, args)
	if err != nil {
		return Podcast{}, err
	}

	if err := GeneratePodcastAudio(ctx, generator, script, path, args.Configuration); err != nil {
		return Podcast{}, err
	}

	return Podcast{Script: script, Filename: path}, nil
}
