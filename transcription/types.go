package transcription

import (
	"strings"

	"github.com/kbukum/voxkit/diarization"
)

// Task selects what the recognizer produces.
type Task string

const (
	// TaskTranscribe returns text in the spoken language.
	TaskTranscribe Task = "transcribe"
	// TaskTranslate returns English text regardless of the spoken language.
	TaskTranslate Task = "translate"
)

// Valid reports whether t is a known task. The zero value is valid and
// means TaskTranscribe.
func (t Task) Valid() bool {
	return t == "" || t == TaskTranscribe || t == TaskTranslate
}

// OrDefault returns TaskTranscribe for the zero value.
func (t Task) OrDefault() Task {
	if t == "" {
		return TaskTranscribe
	}
	return t
}

// TranscriptionRequest holds parameters for a transcription call.
type TranscriptionRequest struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path" validate:"required"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model is the transcription model to use.
	Model string `json:"model,omitempty"`
	// Task is transcribe or translate. Defaults to transcribe.
	Task Task `json:"task,omitempty"`
}

// TranscriptionResponse holds the result of a transcription call.
type TranscriptionResponse struct {
	// Text is the full transcription text.
	Text string `json:"text"`
	// Segments contains time-aligned transcript segments in chronological order.
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// DiarizationSegments converts the segments for the diarization engine.
func (r *TranscriptionResponse) DiarizationSegments() []diarization.Segment {
	out := make([]diarization.Segment, len(r.Segments))
	for i, s := range r.Segments {
		out[i] = diarization.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	return out
}

// Lines returns the non-empty segment texts, trimmed. When there are no
// segments the full text is returned as a single line.
func (r *TranscriptionResponse) Lines() []string {
	if len(r.Segments) == 0 {
		if t := strings.TrimSpace(r.Text); t != "" {
			return []string{t}
		}
		return nil
	}
	lines := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}
