package diarization

import (
	"context"
	"math"
	"sync/atomic"
)

// testRate is the sample rate of the fake clips.
const testRate = 100

// fakeClip is a recording whose sample values identify the speaker: the
// sample at time t holds speakerAt(t)+1.
type fakeClip struct {
	rate    int
	samples []float32
}

func newFakeClip(rate int, duration float64, speakerAt func(t float64) int) *fakeClip {
	n := int(math.Round(duration * float64(rate)))
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(speakerAt(float64(i)/float64(rate)) + 1)
	}
	return &fakeClip{rate: rate, samples: s}
}

func (c *fakeClip) SampleRate() int { return c.rate }

func (c *fakeClip) Slice(start, end float64) []float32 {
	i0 := max(0, int(math.Round(start*float64(c.rate))))
	i1 := min(len(c.samples), int(math.Round(end*float64(c.rate))))
	if i0 >= i1 {
		return nil
	}
	return c.samples[i0:i1]
}

// speakerEmbedder returns a one-hot vector for the speaker encoded in the
// middle sample of the slice.
type speakerEmbedder struct {
	calls atomic.Int32
}

func (e *speakerEmbedder) Embed(_ context.Context, samples []float32) ([]float32, error) {
	e.calls.Add(1)
	vec := make([]float32, 4)
	spk := int(samples[len(samples)/2]) - 1
	vec[spk%len(vec)] = 1
	return vec, nil
}

// angle returns a unit vector at the given angle in radians.
func angle(rad float64) []float32 {
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}
