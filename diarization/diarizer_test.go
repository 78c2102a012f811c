package diarization

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/voxkit/errors"
)

func conversation() []Segment {
	return []Segment{
		{Start: 0, End: 3, Text: "  Hello there. "},
		{Start: 3, End: 6, Text: "Hi, how are you?"},
		{Start: 6, End: 7, Text: "Fine."},
		{Start: 7, End: 10, Text: "Good to hear."},
	}
}

func TestDiarize_TwoSpeakers(t *testing.T) {
	segs := conversation()
	res, err := Diarize(context.Background(), twoSpeakerClip(), segs, &speakerEmbedder{}, Config{SampleRate: testRate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Segments) != len(segs) {
		t.Fatalf("expected %d segments, got %d", len(segs), len(res.Segments))
	}
	// The short third segment has no chunk; the two nearest chunks are
	// equally far and the earlier one belongs to SPEAKER_01.
	want := []string{"SPEAKER_00", "SPEAKER_01", "SPEAKER_01", "SPEAKER_00"}
	for i, s := range res.Segments {
		if s.Speaker != want[i] {
			t.Errorf("segment %d: expected %s, got %s", i, want[i], s.Speaker)
		}
		if s.Start != segs[i].Start || s.End != segs[i].End {
			t.Errorf("segment %d: times changed to [%v, %v]", i, s.Start, s.End)
		}
	}
	if res.Segments[0].Text != "Hello there." {
		t.Errorf("expected trimmed text, got %q", res.Segments[0].Text)
	}
	if res.NumSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", res.NumSpeakers)
	}
	if res.Mode != ModeThreshold {
		t.Errorf("expected threshold mode, got %s", res.Mode)
	}
	if res.Chunks != 12 {
		t.Errorf("expected 12 chunks, got %d", res.Chunks)
	}
}

func TestDiarize_SingleSpeakerWhenCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	cfg.MaxSpeakers = 1
	cfg.Workers = 3
	res, err := Diarize(context.Background(), twoSpeakerClip(), conversation(), &speakerEmbedder{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range res.Segments {
		if s.Speaker != "SPEAKER_00" {
			t.Errorf("segment %d: expected SPEAKER_00, got %s", i, s.Speaker)
		}
	}
	if res.NumSpeakers != 1 || res.Mode != ModeFixed {
		t.Errorf("expected 1 speaker in fixed mode, got %d in %s", res.NumSpeakers, res.Mode)
	}
}

func TestDiarize_Failures(t *testing.T) {
	clip := twoSpeakerClip()
	failing := EmbedderFunc(func(context.Context, []float32) ([]float32, error) {
		return nil, stderrors.New("cuda out of memory")
	})

	tests := []struct {
		name     string
		segments []Segment
		embedder Embedder
		cfg      Config
		code     errors.ErrorCode
	}{
		{"no segments", nil, &speakerEmbedder{}, Config{SampleRate: testRate}, errors.ErrCodeNoEmbeddings},
		{"only short segments", []Segment{{Start: 0, End: 1}, {Start: 1, End: 2}}, &speakerEmbedder{}, Config{SampleRate: testRate}, errors.ErrCodeNoEmbeddings},
		{"missing embedder", conversation(), nil, Config{SampleRate: testRate}, errors.ErrCodeDependencyUnavailable},
		{"embedder failure", conversation(), failing, Config{SampleRate: testRate}, errors.ErrCodeDependencyUnavailable},
		{"sample rate mismatch", conversation(), &speakerEmbedder{}, Config{SampleRate: 8000}, errors.ErrCodeUnsupportedAudio},
		{"invalid config", conversation(), &speakerEmbedder{}, Config{MaxSpeakers: -1, SampleRate: testRate}, errors.ErrCodeInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Diarize(context.Background(), clip, tc.segments, tc.embedder, tc.cfg)
			if res != nil {
				t.Error("expected no result")
			}
			if !errors.IsCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestDiarize_DoesNotMutateInput(t *testing.T) {
	segs := conversation()
	orig := append([]Segment(nil), segs...)
	if _, err := Diarize(context.Background(), twoSpeakerClip(), segs, &speakerEmbedder{}, Config{SampleRate: testRate}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range segs {
		if segs[i] != orig[i] {
			t.Fatalf("segment %d was modified", i)
		}
	}
}

func TestSpeakerID(t *testing.T) {
	if got := SpeakerID(0); got != "SPEAKER_00" {
		t.Errorf("expected SPEAKER_00, got %s", got)
	}
	if got := SpeakerID(12); got != "SPEAKER_12" {
		t.Errorf("expected SPEAKER_12, got %s", got)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MinChunkDuration != cfg.Window {
		t.Errorf("min chunk duration should default to the window, got %v", cfg.MinChunkDuration)
	}
	if cfg.DistanceThreshold != 0.35 || cfg.SampleRate != 16000 || cfg.Workers != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
