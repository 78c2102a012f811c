// Package speechbrain implements embedding.Provider on top of an HTTP
// sidecar serving the SpeechBrain ECAPA-TDNN speaker encoder
// (speechbrain/spkrec-ecapa-voxceleb).
//
// Sidecar contract:
//
//	GET  /health -> 200 when the encoder is loaded
//	POST /embed  multipart: audio=<PCM16 LE mono>, sample_rate, device
//	             -> {"embedding": [float, ...]} or {"error": "..."}
package speechbrain

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kbukum/voxkit/audio"
	"github.com/kbukum/voxkit/embedding"
	"github.com/kbukum/voxkit/errors"
	"github.com/kbukum/voxkit/httpclient"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/provider"
	"github.com/kbukum/voxkit/version"
)

const (
	// ProviderName is the registered name for the SpeechBrain provider.
	ProviderName = "speechbrain"

	defaultURL     = "http://localhost:8389"
	defaultDevice  = "cpu"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the SpeechBrain embedding sidecar.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Device  string        `yaml:"device" mapstructure:"device" validate:"omitempty,oneof=cpu cuda"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Device == "" {
		c.Device = defaultDevice
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider calls the SpeechBrain sidecar. It is safe for concurrent use.
type Provider struct {
	cfg       Config
	client    *httpclient.Client
	dimension atomic.Int64
}

// NewProvider creates a new SpeechBrain embedding provider. Retries are left
// to provider.WithRetry so they show up in logs and metrics.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.URL,
		Service: "speaker embedding sidecar",
		Timeout: cfg.Timeout,
		Headers: map[string]string{"User-Agent": version.Get().UserAgent()},
	})
	if err != nil {
		return nil, errors.InvalidFormat("url", "http(s) URL").WithCause(err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates SpeechBrain providers
// from a generic config map.
func Factory() provider.Factory[embedding.Provider] {
	return func(cfg map[string]any) (embedding.Provider, error) {
		pc := Config{}
		if v, ok := cfg["url"].(string); ok {
			pc.URL = v
		}
		if v, ok := cfg["device"].(string); ok {
			pc.Device = v
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			pc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, errors.InvalidFormat("timeout", "duration such as 30s")
			}
			pc.Timeout = d
		}
		p, err := NewProvider(pc)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Dimension returns the length of the last embedding received, or 0.
func (p *Provider) Dimension() int { return int(p.dimension.Load()) }

// IsAvailable checks if the sidecar has its encoder loaded.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.probe(ctx) == nil
}

// Init verifies the sidecar is reachable before the provider is used.
func (p *Provider) Init(ctx context.Context) error {
	if err := p.probe(ctx); err != nil {
		return errors.DependencyUnavailable("speaker embedding model", err).WithDetail("url", p.cfg.URL)
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
		Name:    ProviderName,
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"url": p.cfg.URL, "device": p.cfg.Device},
	}
	start := time.Now()
	if err := p.probe(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	h.Details["latency_ms"] = strconv.FormatInt(time.Since(start).Milliseconds(), 10)
	return h
}

func (p *Provider) probe(ctx context.Context) error {
	return p.client.Probe(ctx, "/health")
}

// Embed uploads the excerpt as 16-bit PCM and returns its embedding.
func (p *Provider) Embed(ctx context.Context, req embedding.Request) ([]float32, error) {
	if len(req.Samples) == 0 {
		return nil, errors.InvalidInput("samples", "empty audio excerpt")
	}
	if req.SampleRate <= 0 {
		return nil, errors.InvalidInput("sample_rate", "must be positive")
	}

	var result embedResponse
	err := p.client.PostForm(ctx, "/embed", &httpclient.Form{
		Fields: map[string]string{
			"sample_rate": strconv.Itoa(req.SampleRate),
			"device":      p.cfg.Device,
		},
		Files: []httpclient.File{{
			Field: "audio",
			Name:  "chunk.pcm",
			Data:  audio.EncodePCM16(req.Samples),
		}},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("%s", result.Error))
	}
	if len(result.Embedding) == 0 {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("response has no embedding"))
	}

	p.dimension.Store(int64(len(result.Embedding)))
	return result.Embedding, nil
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}
