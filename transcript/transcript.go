package transcript

import (
	"strings"

	"github.com/kbukum/voxkit/diarization"
	"github.com/kbukum/voxkit/errors"
)

// Section headers of a rendered transcript.
const (
	OriginalHeader    = "--- ORIGINAL TRANSCRIPT ---"
	TranslationHeader = "--- ENGLISH TRANSLATION ---"
)

// Transcript is the outcome of a pipeline run.
type Transcript struct {
	// Original holds one line per recognized segment, prefixed with the
	// speaker when diarization succeeded.
	Original []string `json:"original"`
	// Translation holds the English lines. Only meaningful when Translated.
	Translation []string `json:"translation,omitempty"`
	// Translated is set when the translation pass succeeded.
	Translated bool `json:"translated"`

	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration"`

	// Diarization is the speaker attribution, nil when not requested or failed.
	Diarization *diarization.Result `json:"diarization,omitempty"`
	// DiarizationError is why a requested diarization was skipped.
	DiarizationError error `json:"-"`
	// TranslationError is why a requested translation was omitted.
	TranslationError error `json:"-"`
}

// Speakers returns the number of speakers found, 0 without diarization.
func (t *Transcript) Speakers() int {
	if t.Diarization == nil {
		return 0
	}
	return t.Diarization.NumSpeakers
}

// Warnings describes requested steps that were skipped, one line each.
func (t *Transcript) Warnings() []string {
	var out []string
	if t.DiarizationError != nil {
		out = append(out, "speaker diarization skipped: "+userMessage(t.DiarizationError))
	}
	if t.TranslationError != nil {
		out = append(out, "translation skipped: "+userMessage(t.TranslationError))
	}
	return out
}

func userMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// Render formats the transcript as plain text:
//
//	--- ORIGINAL TRANSCRIPT ---
//	SPEAKER_00: Hello.
//
//	--- ENGLISH TRANSLATION ---
//	SPEAKER_00: Hello.
//
// Surrounding whitespace is trimmed.
func (t *Transcript) Render() string {
	var b strings.Builder
	b.WriteString(OriginalHeader)
	b.WriteByte('\n')
	b.WriteString(strings.Join(t.Original, "\n"))
	b.WriteByte('\n')
	if t.Translated {
		b.WriteByte('\n')
		b.WriteString(TranslationHeader)
		b.WriteByte('\n')
		b.WriteString(strings.Join(t.Translation, "\n"))
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
