package audio

import (
	stderrors "errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

var (
	// ErrNotWAV is returned when the input is not a RIFF/WAVE file.
	ErrNotWAV = stderrors.New("audio: not a WAV file")
	// ErrUnsupportedWAV is returned for WAV encodings other than integer PCM.
	ErrUnsupportedWAV = stderrors.New("audio: unsupported WAV encoding")
)

// DecodeWAV reads an integer PCM WAV stream and mixes it down to mono.
// Samples are scaled by the source bit depth into [-1, 1].
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrNotWAV
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedWAV, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: read PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate < 1 {
		return nil, fmt.Errorf("%w: missing format chunk", ErrUnsupportedWAV)
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedWAV, depth)
	}

	return NewClip(downmix(buf.Data, buf.Format.NumChannels, depth), buf.Format.SampleRate), nil
}

// downmix averages interleaved channels into one normalized channel.
func downmix(data []int, channels, depth int) []float32 {
	scale := math.Ldexp(1, depth-1)
	// 8-bit WAV is unsigned.
	offset := 0.0
	if depth == 8 {
		offset = 128
	}

	frames := len(data) / channels
	out := make([]float32, frames)
	for f := range frames {
		var sum float64
		for c := range channels {
			sum += (float64(data[f*channels+c]) - offset) / scale
		}
		out[f] = float32(sum / float64(channels))
	}
	return out
}

// EncodeWAV writes the clip as 16-bit mono PCM WAV.
func EncodeWAV(w io.WriteSeeker, clip *Clip) error {
	enc := wav.NewEncoder(w, clip.SampleRate(), 16, 1, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: clip.SampleRate()},
		Data:           toInt16(clip.Samples()),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize WAV: %w", err)
	}
	return nil
}

func toInt16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(pcm16(s))
	}
	return out
}

func pcm16(s float32) int16 {
	v := math.Round(float64(s) * 32767)
	return int16(math.Max(-32768, math.Min(32767, v)))
}
