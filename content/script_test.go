package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScript(t *testing.T) {
	script := `Here is your podcast:

Mike: Welcome to the show.
Dr. Sarah: Thanks for having me.
It is a big topic.
**Mike:** So where do we start?
**Dr. Sarah**: With the basics.`

	lines := ParseScript(script)

	assert.Equal(t, []Line{
		{Speaker: SpeakerMike, Text: "Welcome to the show."},
		{Speaker: SpeakerSarah, Text: "Thanks for having me. It is a big topic."},
		{Speaker: SpeakerMike, Text: "So where do we start?"},
		{Speaker: SpeakerSarah, Text: "With the basics."},
	}, lines)
	assert.Equal(t, 2, Exchanges(lines))
}

func TestParseScriptEmpty(t *testing.T) {
	assert.Empty(t, ParseScript(""))
	assert.Empty(t, ParseScript("no speakers at all"))
	assert.Equal(t, 0, Exchanges(nil))
}
