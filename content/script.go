package content

import "strings"

// Line is one turn of a podcast script.
type Line struct {
	Speaker string
	Text    string
}

// ParseScript splits a "Speaker: text" script into turns. Lines without a known
// speaker prefix continue the previous turn; leading lines without a speaker
// are dropped.
func ParseScript(script string) []Line {
	var lines []Line
	for _, raw := range strings.Split(script, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if speaker, text, ok := splitSpeaker(raw); ok {
			lines = append(lines, Line{Speaker: speaker, Text: text})
			continue
		}
		if len(lines) > 0 {
			last := &lines[len(lines)-1]
			last.Text = strings.TrimSpace(last.Text + " " + raw)
		}
	}
	return lines
}

func splitSpeaker(line string) (string, string, bool) {
	for _, speaker := range []string{SpeakerMike, SpeakerSarah} {
		for _, prefix := range []string{speaker + ":", "**" + speaker + ":**", "**" + speaker + "**:"} {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				return speaker, strings.TrimSpace(rest), true
			}
		}
	}
	return "", "", false
}

// Exchanges counts the Mike/Dr. Sarah question and answer pairs in lines.
func Exchanges(lines []Line) int {
	n := 0
	for i := 1; i < len(lines); i++ {
		if lines[i-1].Speaker == SpeakerMike && lines[i].Speaker == SpeakerSarah {
			n++
		}
	}
	return n
}
