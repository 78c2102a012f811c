// Package whisper implements transcription.Provider on top of an HTTP
// sidecar running Whisper, either through the openai-whisper package or a
// transformers ASR pipeline.
//
// Sidecar contract:
//
//	GET  /health     -> 200 when the model is loaded
//	POST /transcribe multipart: file, model, task, backend, device, [language]
//	                 -> {"text": "...", "language": "en",
//	                     "segments": [{"start": 0.0, "end": 2.1, "text": "..."}]}
package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/httpclient"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/provider"
	"github.com/kbukum/voxkit/transcription"
	"github.com/kbukum/voxkit/util"
	"github.com/kbukum/voxkit/version"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	// BackendOpenAI runs the reference openai-whisper package.
	BackendOpenAI = "openai-whisper"
	// BackendTransformers runs a transformers automatic-speech-recognition pipeline.
	BackendTransformers = "transformers"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperDevice  = "cpu"
	defaultWhisperTimeout = 10 * time.Minute
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Device   string        `yaml:"device" mapstructure:"device" validate:"omitempty,oneof=cpu cuda"`
	Backend  string        `yaml:"backend" mapstructure:"backend" validate:"omitempty,oneof=openai-whisper transformers"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Device == "" {
		c.Device = defaultWhisperDevice
	}
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}
	if c.Timeout == 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Provider implements transcription.Provider using a Whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Service: "whisper sidecar",
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": version.Get().UserAgent()},
	})
	if err != nil {
		return nil, errors.InvalidFormat("url", "http(s) URL").WithCause(err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		for key, dst := range map[string]*string{
			"url":      &wc.URL,
			"model":    &wc.Model,
			"language": &wc.Language,
			"device":   &wc.Device,
			"backend":  &wc.Backend,
		} {
			if v, ok := cfg[key].(string); ok {
				*dst = v
			}
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			wc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, errors.InvalidFormat("timeout", "duration such as 10m")
			}
			wc.Timeout = d
		}
		if wc.Backend != "" && wc.Backend != BackendOpenAI && wc.Backend != BackendTransformers {
			return nil, errors.InvalidInput("backend", "must be openai-whisper or transformers")
		}
		p, err := NewProvider(wc)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Model returns the default model name.
func (p *Provider) Model() string { return p.cfg.Model }

// Device returns the device the sidecar is asked to run on.
func (p *Provider) Device() string { return p.cfg.Device }

// Backend returns the Whisper implementation the sidecar is asked to use.
func (p *Provider) Backend() string { return p.cfg.Backend }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Probe(ctx, "/health") == nil
}

// Init verifies the sidecar has a model loaded.
func (p *Provider) Init(ctx context.Context) error {
	if err := p.client.Probe(ctx, "/health"); err != nil {
		return errors.DependencyUnavailable("speech recognition model", err).
			WithDetail("url", p.cfg.URL).
			WithDetail("backend", p.cfg.Backend)
	}
	return nil
}

// Close releases idle connections to the sidecar.
func (p *Provider) Close(_ context.Context) error {
	p.client.Close()
	return nil
}

// CheckHealth reports the sidecar state for the server health endpoint.
func (p *Provider) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{
		Name:   ProviderName,
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"url":     p.cfg.URL,
			"model":   p.cfg.Model,
			"device":  p.cfg.Device,
			"backend": p.cfg.Backend,
		},
	}
	start := time.Now()
	if err := p.client.Probe(ctx, "/health"); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	h.Details["latency_ms"] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
	return h
}

// Transcribe sends an audio file to the Whisper sidecar and returns the transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.TranscriptionRequest) (*transcription.TranscriptionResponse, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("audio file", req.AudioPath)
		}
		return nil, errors.UnsupportedAudio(req.AudioPath, err)
	}

	fields := map[string]string{
		"model":   util.Coalesce(req.Model, p.cfg.Model),
		"task":    string(req.Task.OrDefault()),
		"backend": p.cfg.Backend,
		"device":  p.cfg.Device,
	}
	if lang := util.Coalesce(req.Language, p.cfg.Language); lang != "" {
		fields["language"] = lang
	}

	var result whisperResponse
	err = p.client.PostForm(ctx, "/transcribe", &httpclient.Form{
		Fields: fields,
		Files: []httpclient.File{{
			Field: "file",
			Name:  filepath.Base(req.AudioPath),
			Data:  audioData,
		}},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("%s", result.Error))
	}

	return toTranscriptionResponse(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Error    string           `json:"error,omitempty"`
}

// whisperSegment timestamps are pointers because the transformers backend
// reports null for a chunk it could not place.
type whisperSegment struct {
	Text  string   `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.TranscriptionResponse {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: deref(seg.Start),
			End:   deref(seg.End),
			Text:  strings.TrimSpace(seg.Text),
		}
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })

	var duration float64
	for _, s := range segments {
		duration = max(duration, s.End)
	}

	return &transcription.TranscriptionResponse{
		Text:     strings.TrimSpace(resp.Text),
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
