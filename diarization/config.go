package diarization

import (
	"github.com/kbukum/voxkit/validation"
)

// Default tuning values.
const (
	DefaultWindow                = 1.5
	DefaultStride                = 0.5
	DefaultSubsegmentMinDuration = 3.0
	DefaultMinSegmentDuration    = 1.5
	DefaultSmoothingMaxDuration  = 2.0
	DefaultSampleRate            = 16000
	DefaultDistanceThreshold     = 0.35
	DefaultMaxSilhouetteClusters = 10
)

// Config holds diarization tuning. It is passed by value and never mutated
// by the engine.
type Config struct {
	// Window is the sub-segment window length in seconds.
	Window float64 `yaml:"window" mapstructure:"window" validate:"gt=0"`
	// Stride is the step between consecutive windows in seconds.
	Stride float64 `yaml:"stride" mapstructure:"stride" validate:"gt=0"`
	// SubsegmentMinDuration is the segment duration from which windows are used.
	SubsegmentMinDuration float64 `yaml:"subsegment_min_duration" mapstructure:"subsegment_min_duration" validate:"gt=0"`
	// MinSegmentDuration is the shortest segment embedded as a single chunk.
	MinSegmentDuration float64 `yaml:"min_segment_duration" mapstructure:"min_segment_duration" validate:"gte=0"`
	// MinChunkDuration is the shortest audio slice that is embedded. Defaults to Window.
	MinChunkDuration float64 `yaml:"min_chunk_duration" mapstructure:"min_chunk_duration" validate:"gt=0"`
	// SmoothingMaxDuration is the longest segment that smoothing may relabel.
	SmoothingMaxDuration float64 `yaml:"smoothing_max_duration" mapstructure:"smoothing_max_duration" validate:"gte=0"`
	// SampleRate is the rate in Hz the AudioSource must be sampled at.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`

	// DistanceThreshold is the cosine distance below which clusters merge
	// when neither MaxSpeakers nor UseSilhouette applies.
	DistanceThreshold float64 `yaml:"distance_threshold" mapstructure:"distance_threshold" validate:"gt=0"`
	// MaxSpeakers fixes the number of speakers when >= 1.
	MaxSpeakers int `yaml:"max_speakers" mapstructure:"max_speakers" validate:"gte=0"`
	// UseSilhouette picks the speaker count by silhouette score.
	UseSilhouette bool `yaml:"use_silhouette" mapstructure:"use_silhouette"`
	// MaxSilhouetteClusters caps the candidate counts tried by silhouette selection.
	MaxSilhouetteClusters int `yaml:"max_silhouette_clusters" mapstructure:"max_silhouette_clusters" validate:"gte=2"`

	// Workers is the number of concurrent embedding calls.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=64"`
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.Stride == 0 {
		c.Stride = DefaultStride
	}
	if c.SubsegmentMinDuration == 0 {
		c.SubsegmentMinDuration = DefaultSubsegmentMinDuration
	}
	if c.MinSegmentDuration == 0 {
		c.MinSegmentDuration = DefaultMinSegmentDuration
	}
	if c.MinChunkDuration == 0 {
		c.MinChunkDuration = c.Window
	}
	if c.SmoothingMaxDuration == 0 {
		c.SmoothingMaxDuration = DefaultSmoothingMaxDuration
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.DistanceThreshold == 0 {
		c.DistanceThreshold = DefaultDistanceThreshold
	}
	if c.MaxSilhouetteClusters == 0 {
		c.MaxSilhouetteClusters = DefaultMaxSilhouetteClusters
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.Validate(c)
}
