package audio

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/process"
)

// Config configures audio loading.
type Config struct {
	// SampleRate is the canonical rate every clip is converted to.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gt=0"`
	// FFmpegPath is the ffmpeg binary used for non-WAV input.
	FFmpegPath string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	// TempDir holds intermediate conversions. Defaults to os.TempDir().
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// ConvertTimeout bounds a single ffmpeg run.
	ConvertTimeout time.Duration `yaml:"convert_timeout" mapstructure:"convert_timeout"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.ConvertTimeout == 0 {
		c.ConvertTimeout = 10 * time.Minute
	}
}

// Loader decodes audio files into mono clips at the canonical rate.
type Loader struct {
	cfg    Config
	runner *process.Runner
	log    *logger.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	cfg.ApplyDefaults()
	return &Loader{
		cfg:    cfg,
		runner: process.NewRunner(process.Config{Timeout: cfg.ConvertTimeout}),
		log:    logger.Get("audio"),
	}
}

// SampleRate returns the canonical rate.
func (l *Loader) SampleRate() int { return l.cfg.SampleRate }

// Load decodes path. PCM WAV is read directly; anything else is converted
// with ffmpeg first.
func (l *Loader) Load(ctx context.Context, path string) (*Clip, error) {
	clip, err := decodeFile(path)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return nil, errors.NotFound("audio file", path)
	case stderrors.Is(err, ErrNotWAV), stderrors.Is(err, ErrUnsupportedWAV):
		l.log.Debug("converting with ffmpeg", logger.Fields(logger.FieldAudioPath, path, "reason", err.Error()))
		clip, err = l.convertAndDecode(ctx, path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.UnsupportedAudio(path, err)
	}

	if clip.SampleRate() != l.cfg.SampleRate {
		if clip, err = Resample(clip, l.cfg.SampleRate); err != nil {
			return nil, errors.UnsupportedAudio(path, err)
		}
	}

	l.log.Debug("audio loaded", logger.Fields(
		logger.FieldAudioPath, path,
		"seconds", clip.Duration(),
		"sample_rate", clip.SampleRate(),
	))
	return clip, nil
}

func decodeFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

func (l *Loader) convertAndDecode(ctx context.Context, path string) (*Clip, error) {
	tmp, err := os.CreateTemp(l.cfg.TempDir, "voxkit-*.wav")
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := l.Convert(ctx, path, tmpPath); err != nil {
		return nil, err
	}
	clip, err := decodeFile(tmpPath)
	if err != nil {
		return nil, errors.UnsupportedAudio(path, err)
	}
	return clip, nil
}

// Convert transcodes any ffmpeg-readable input into mono PCM WAV at the
// canonical rate.
func (l *Loader) Convert(ctx context.Context, in, out string) error {
	if !process.Available(l.cfg.FFmpegPath) {
		return errors.DependencyUnavailable("ffmpeg", nil).WithDetail("binary", l.cfg.FFmpegPath)
	}
	res, err := l.runner.Run(ctx, process.Command{
		Binary: l.cfg.FFmpegPath,
		Args: []string{
			"-hide_banner", "-loglevel", "error", "-y",
			"-i", in,
			"-ac", "1",
			"-ar", strconv.Itoa(l.cfg.SampleRate),
			"-f", "wav",
			filepath.Clean(out),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.UnsupportedAudio(in, err).WithDetail("ffmpeg", res.StderrTail(3))
	}
	return nil
}
