package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts the clip to the target rate. A clip already at that rate
// is returned unchanged.
func Resample(clip *Clip, rate int) (*Clip, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("audio: invalid target rate %d", rate)
	}
	if clip.SampleRate() == rate || clip.Len() == 0 {
		return NewClip(clip.Samples(), rate), nil
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(clip.SampleRate()),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: create resampler: %w", err)
	}

	in := make([]float64, clip.Len())
	for i, s := range clip.Samples() {
		in[i] = float64(s)
	}
	out, err := r.Process(in)
	if err != nil {
		return nil, fmt.Errorf("audio: resample %d Hz to %d Hz: %w", clip.SampleRate(), rate, err)
	}

	samples := make([]float32, len(out))
	for i, s := range out {
		samples[i] = float32(s)
	}
	return NewClip(samples, rate), nil
}
