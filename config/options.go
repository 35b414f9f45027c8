package config

// Options holds explicit overrides. A nil field leaves the resolved value
// untouched; integer overrides are used as given.
type Options struct {
	SearchModel    *string
	SynthesisModel *string
	VideoModel     *string
	TTSModel       *string

	SearchTemperature        *float64
	SynthesisTemperature     *float64
	PodcastScriptTemperature *float64

	MikeVoice  *string
	SarahVoice *string

	TTSChannels    *int
	TTSRate        *int
	TTSSampleWidth *int

	RequestsPerMinute *int
}

func (o Options) apply(c *Configuration) {
	setIf(&c.SearchModel, o.SearchModel)
	setIf(&c.SynthesisModel, o.SynthesisModel)
	setIf(&c.VideoModel, o.VideoModel)
	setIf(&c.TTSModel, o.TTSModel)
	setIf(&c.SearchTemperature, o.SearchTemperature)
	setIf(&c.SynthesisTemperature, o.SynthesisTemperature)
	setIf(&c.PodcastScriptTemperature, o.PodcastScriptTemperature)
	setIf(&c.MikeVoice, o.MikeVoice)
	setIf(&c.SarahVoice, o.SarahVoice)
	setIf(&c.TTSChannels, o.TTSChannels)
	setIf(&c.TTSRate, o.TTSRate)
	setIf(&c.TTSSampleWidth, o.TTSSampleWidth)
	setIf(&c.RequestsPerMinute, o.RequestsPerMinute)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
