package content

import (
	"regexp"
	"strings"
)

var (
	disallowedFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9 _-]`)
	whitespaceRun           = regexp.MustCompile(`\s+`)
)

// PodcastFilename derives the audio file name from a topic, e.g.
// "AI & Robotics!" becomes "research_podcast_AI_Robotics.wav".
func PodcastFilename(topic string) string {
	slug := strings.TrimSpace(disallowedFilenameChars.ReplaceAllString(topic, ""))
	if slug == "" {
		slug = "podcast"
	}
	return "research_podcast_" + whitespaceRun.ReplaceAllString(slug, "_") + ".wav"
}
