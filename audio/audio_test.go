package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	stderrors "errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/voxkit/errors"
)

func TestClip_Slice(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i)
	}
	clip := NewClip(samples, 10)

	tests := []struct {
		name       string
		start, end float64
		wantLen    int
		wantFirst  float32
	}{
		{"exact", 1.0, 2.0, 10, 10},
		{"rounded start", 1.04, 2.0, 10, 10},
		{"rounded up", 1.06, 2.0, 9, 11},
		{"clamped low", -1.0, 0.5, 5, 0},
		{"clamped high", 9.5, 20.0, 5, 95},
		{"empty", 3.0, 3.0, 0, 0},
		{"inverted", 4.0, 3.0, 0, 0},
		{"out of range", 11.0, 12.0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clip.Slice(tt.start, tt.end)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0] != tt.wantFirst {
				t.Errorf("first = %v, want %v", got[0], tt.wantFirst)
			}
		})
	}
}

func TestClip_SliceAppendDoesNotClobber(t *testing.T) {
	clip := NewClip([]float32{1, 2, 3, 4}, 1)
	s := clip.Slice(0, 2)
	_ = append(s, 99)
	if clip.Samples()[2] != 3 {
		t.Fatal("append through slice modified the clip")
	}
}

func TestClip_Duration(t *testing.T) {
	if d := NewClip(make([]float32, 8000), 16000).Duration(); d != 0.5 {
		t.Errorf("Duration() = %v, want 0.5", d)
	}
	if d := NewClip(nil, 0).Duration(); d != 0 {
		t.Errorf("Duration() with zero rate = %v, want 0", d)
	}
}

func TestPCM16_RoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	data := EncodePCM16(in)
	if len(data) != 2*len(in) {
		t.Fatalf("encoded %d bytes, want %d", len(data), 2*len(in))
	}
	out := DecodePCM16(data)
	want := []float32{0, 0.5, -0.5, 1, -1, 1, -1}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-3 {
			t.Errorf("sample %d = %v, want ~%v", i, out[i], want[i])
		}
	}
}

func TestDecodePCM16_OddByte(t *testing.T) {
	if got := DecodePCM16([]byte{0, 0x40, 0x7f}); len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestWAV_RoundTrip(t *testing.T) {
	in := make([]float32, 1600)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, NewClip(in, 16000))

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	clip, err := DecodeWAV(f)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if clip.SampleRate() != 16000 {
		t.Errorf("rate = %d, want 16000", clip.SampleRate())
	}
	if clip.Len() != len(in) {
		t.Fatalf("len = %d, want %d", clip.Len(), len(in))
	}
	for i := range in {
		if math.Abs(float64(clip.Samples()[i]-in[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~%v", i, clip.Samples()[i], in[i])
		}
	}
}

func TestDecodeWAV_NotWAV(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("ID3\x03\x00 definitely an mp3 file")))
	if !stderrors.Is(err, ErrNotWAV) {
		t.Fatalf("err = %v, want ErrNotWAV", err)
	}
}

func TestDecodeWAV_FloatFormatUnsupported(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader(floatWAVHeader(16000)))
	if !stderrors.Is(err, ErrUnsupportedWAV) {
		t.Fatalf("err = %v, want ErrUnsupportedWAV", err)
	}
}

func TestDownmix(t *testing.T) {
	tests := []struct {
		name     string
		data     []int
		channels int
		depth    int
		want     []float32
	}{
		{"mono 16-bit", []int{16384, -16384}, 1, 16, []float32{0.5, -0.5}},
		{"stereo average", []int{16384, 0, -32768, -32768}, 2, 16, []float32{0.25, -1}},
		{"unsigned 8-bit", []int{128, 192, 0}, 1, 8, []float32{0, 0.5, -1}},
		{"24-bit", []int{1 << 22}, 1, 24, []float32{0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := downmix(tt.data, tt.channels, tt.depth)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResample(t *testing.T) {
	in := make([]float32, 48000)
	for i := range in {
		in[i] = float32(0.3 * math.Sin(2*math.Pi*220*float64(i)/48000))
	}
	out, err := Resample(NewClip(in, 48000), 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.SampleRate() != 16000 {
		t.Errorf("rate = %d, want 16000", out.SampleRate())
	}
	if out.Len() == 0 || out.Len() > 16000+256 {
		t.Errorf("len = %d, want about 16000", out.Len())
	}
}

func TestResample_SameRate(t *testing.T) {
	clip := NewClip([]float32{1, 2, 3}, 16000)
	out, err := Resample(clip, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 3 {
		t.Errorf("len = %d, want 3", out.Len())
	}
	if _, err := Resample(clip, 0); err == nil {
		t.Error("expected error for zero target rate")
	}
}

func TestLoader_LoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.wav")
	writeWAV(t, path, NewClip(make([]float32, 16000), 16000))

	clip, err := NewLoader(Config{SampleRate: 16000}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if clip.Duration() != 1 {
		t.Errorf("duration = %v, want 1", clip.Duration())
	}
}

func TestLoader_LoadResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.wav")
	writeWAV(t, path, NewClip(make([]float32, 8000), 8000))

	clip, err := NewLoader(Config{SampleRate: 16000}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if clip.SampleRate() != 16000 {
		t.Errorf("rate = %d, want 16000", clip.SampleRate())
	}
}

func TestLoader_Missing(t *testing.T) {
	_, err := NewLoader(Config{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestLoader_NonWAVWithoutFFmpeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("not audio at all"), 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(Config{FFmpegPath: "voxkit-missing-ffmpeg"})
	_, err := l.Load(context.Background(), path)
	if !errors.IsCode(err, errors.ErrCodeDependencyUnavailable) {
		t.Fatalf("err = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
}

func writeWAV(t *testing.T, path string, clip *Clip) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := EncodeWAV(f, clip); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
}

// floatWAVHeader builds a minimal IEEE-float WAV with one silent frame.
func floatWAVHeader(rate int) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+4))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, le, uint32(16))
	_ = binary.Write(&b, le, uint16(3))
	_ = binary.Write(&b, le, uint16(1))
	_ = binary.Write(&b, le, uint32(rate))
	_ = binary.Write(&b, le, uint32(rate*4))
	_ = binary.Write(&b, le, uint16(4))
	_ = binary.Write(&b, le, uint16(32))
	b.WriteString("data")
	_ = binary.Write(&b, le, uint32(4))
	_ = binary.Write(&b, le, float32(0))
	return b.Bytes()
}
