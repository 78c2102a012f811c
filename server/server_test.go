package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/server/endpoint"
	"github.com/kbukum/voxkit/storage/local"
	"github.com/kbukum/voxkit/transcript"
)

type nopTranscriber struct{}

func (nopTranscriber) Run(context.Context, transcript.Request) (*transcript.Transcript, error) {
	return &transcript.Transcript{Original: []string{"hi"}}, nil
}

type upChecker struct{}

func (upChecker) CheckHealth(context.Context) observability.Health {
	return observability.Health{Name: "asr", Status: observability.HealthStatusUp}
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s := New(cfg, logger.NewNop())
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(Probes{
		Service: "voxkit",
		Version: "test",
		Details: map[string]string{"device": "cpu", "whisper_backend": "transformers"},
		Health:  []observability.HealthChecker{upChecker{}},
		Ready:   func(context.Context) error { return nil },
	})
	store, err := local.NewStorage(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	s.RegisterTranscribe(nopTranscriber{}, endpoint.TranscribeOptions{Storage: store, TempDir: t.TempDir()})
	return s
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Host != "0.0.0.0" || cfg.Port != 8000 {
		t.Errorf("addr = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.MaxBodySize != "100MB" {
		t.Errorf("MaxBodySize = %q", cfg.MaxBodySize)
	}
	if cfg.WriteTimeout < 600 {
		t.Errorf("WriteTimeout = %d, too short for long recordings", cfg.WriteTimeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"negative timeout", func(c *Config) { c.WriteTimeout = -1 }, true},
		{"bad size", func(c *Config) { c.MaxBodySize = "lots" }, true},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerMinute = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServer_HealthThroughMiddleware(t *testing.T) {
	s := newTestServer(t, Config{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("request ID middleware not applied")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Error("CORS middleware not applied")
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["whisper_backend"] != "transformers" || body["device"] != "cpu" {
		t.Errorf("body = %v", body)
	}
}

func TestServer_BodyLimitAppliesToUploads(t *testing.T) {
	s := newTestServer(t, Config{MaxBodySize: "1KB"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("code = %d, want 413", rr.Code)
	}
}

func TestServer_RateLimitOnTranscribeOnly(t *testing.T) {
	cfg := Config{}
	cfg.RateLimit.RequestsPerMinute = 1
	s := newTestServer(t, cfg)

	post := func() int {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody))
		return rr.Code
	}
	if code := post(); code != http.StatusBadRequest {
		t.Fatalf("first request = %d, want 400 for the missing upload", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}

	for range 3 {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("/version = %d", rr.Code)
		}
	}
}

func TestServerComponent(t *testing.T) {
	s := newTestServer(t, Config{Host: "127.0.0.1", Port: 18080})
	c := NewComponent(s)

	if c.Name() != "http-server" {
		t.Errorf("Name() = %q", c.Name())
	}
	if h := c.Health(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("health before start = %+v", h)
	}
	d := c.Describe()
	if d.Details != "127.0.0.1:18080" || d.Port != 18080 {
		t.Errorf("Describe() = %+v", d)
	}

	routes := c.Routes()
	var got []string
	for _, r := range routes {
		got = append(got, fmt.Sprintf("%s %s", r.Method, r.Path))
	}
	if len(got) == 0 || got[0] != "POST /transcribe" {
		t.Errorf("API routes should come first: %v", got)
	}
	for _, r := range routes[1:] {
		if !strings.HasSuffix(r.Handler, "⚙️") {
			t.Errorf("system route %s not labeled: %q", r.Path, r.Handler)
		}
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/voxkit/server/endpoint.Transcribe.func1", "transcribe"},
		{"github.com/kbukum/voxkit/server/endpoint.Health.func1.2", "health"},
		{"github.com/kbukum/voxkit/server.(*Server).Handler-fm", "Server.Handler"},
		{"main.ping", "ping"},
	}
	for _, tt := range tests {
		if got := handlerName(tt.in); got != tt.want {
			t.Errorf("handlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
