package audio

import "math"

// Clip is a decoded mono recording with samples in [-1, 1].
type Clip struct {
	rate    int
	samples []float32
}

// NewClip wraps mono samples at the given rate.
func NewClip(samples []float32, sampleRate int) *Clip {
	return &Clip{rate: sampleRate, samples: samples}
}

// SampleRate returns the sample rate in Hz.
func (c *Clip) SampleRate() int { return c.rate }

// Samples returns the underlying sample buffer.
func (c *Clip) Samples() []float32 { return c.samples }

// Len returns the number of samples.
func (c *Clip) Len() int { return len(c.samples) }

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.rate == 0 {
		return 0
	}
	return float64(len(c.samples)) / float64(c.rate)
}

// Slice returns the samples in [start, end) seconds, clamped to the clip.
// Sample indices are rounded to the nearest sample. The result shares memory
// with the clip and must not be modified.
func (c *Clip) Slice(start, end float64) []float32 {
	i0 := max(0, c.index(start))
	i1 := min(len(c.samples), c.index(end))
	if i0 >= i1 {
		return nil
	}
	return c.samples[i0:i1:i1]
}

func (c *Clip) index(t float64) int {
	return int(math.Round(t * float64(c.rate)))
}
