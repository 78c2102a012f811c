package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/server/middleware"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(mw middleware.Middleware, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mw(h).ServeHTTP(rr, req)
	return rr
}

func TestRecovery(t *testing.T) {
	rr := serve(middleware.Recovery(logger.NewNop()), func(http.ResponseWriter, *http.Request) {
		panic("decoder exploded")
	}, httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Status != "error" || body.Message == "" {
		t.Errorf("body = %s (%v)", rr.Body.String(), err)
	}
	if strings.Contains(rr.Body.String(), "decoder exploded") {
		t.Error("panic value leaked to the client")
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent"},
		{name: "caller id kept", incoming: "req-42", keep: true},
		{name: "spaces replaced", incoming: "req 42"},
		{name: "oversized replaced", incoming: strings.Repeat("a", 129)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inCtx, inHeader string
			req := httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.incoming)
			}
			rr := serve(middleware.RequestID(), func(w http.ResponseWriter, r *http.Request) {
				inCtx = logger.RequestIDFromContext(r.Context())
				inHeader = r.Header.Get(middleware.HeaderRequestID)
			}, req)

			got := rr.Header().Get(middleware.HeaderRequestID)
			if got == "" || got != inCtx || got != inHeader {
				t.Fatalf("response %q, context %q, request header %q should agree", got, inCtx, inHeader)
			}
			if (got == tt.incoming) != tt.keep {
				t.Errorf("id = %q, keep incoming %v", got, tt.keep)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"https://notes.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		want       map[string]string
	}{
		{
			name: "allowed origin", method: http.MethodPost, origin: "https://notes.example.com", wantStatus: http.StatusOK,
			want: map[string]string{
				"Access-Control-Allow-Origin":      "https://notes.example.com",
				"Access-Control-Allow-Methods":     "GET, POST",
				"Access-Control-Allow-Headers":     "Content-Type",
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Expose-Headers":    middleware.HeaderRequestID,
				"Access-Control-Max-Age":           "",
			},
		},
		{
			name: "preflight", method: http.MethodOptions, origin: "https://notes.example.com", wantStatus: http.StatusNoContent,
			want: map[string]string{"Access-Control-Max-Age": "600"},
		},
		{
			name: "foreign origin", method: http.MethodPost, origin: "https://evil.example", wantStatus: http.StatusOK,
			want: map[string]string{"Access-Control-Allow-Origin": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/transcribe", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			rr := serve(middleware.CORS(cfg), func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodOptions {
					t.Error("preflight reached the handler")
				}
				w.WriteHeader(http.StatusOK)
			}, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			for k, v := range tt.want {
				if got := rr.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}

	wildcard := &middleware.CORSConfig{AllowedOrigins: []string{"*"}}
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	if got := serve(middleware.CORS(wildcard), ok, req).Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("wildcard should echo the origin, got %q", got)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "voxkit", &buf)
	mw := middleware.RequestLogger(log)

	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader("RIFF"))
	serve(mw, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if line["level"] != "error" || line["status"] != float64(502) || line["path"] != "/transcribe" {
		t.Errorf("log line = %v", line)
	}
	if line["bytes_in"] != float64(4) || line["bytes_out"] != float64(18) {
		t.Errorf("body sizes = %v in, %v out", line["bytes_in"], line["bytes_out"])
	}

	buf.Reset()
	for _, path := range middleware.ProbePaths {
		serve(mw, ok, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}
	if buf.Len() != 0 {
		t.Errorf("probe requests were logged: %s", buf.String())
	}
}

type flushWriter struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushWriter) Flush() { f.flushed = true }

func TestRequestLogger_KeepsFlusher(t *testing.T) {
	fw := &flushWriter{ResponseWriter: httptest.NewRecorder()}
	middleware.RequestLogger(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(http.Flusher).Flush()
	})).ServeHTTP(fw, httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody))

	if !fw.flushed {
		t.Error("Flush did not reach the underlying writer")
	}
}

func TestBodySizeLimit(t *testing.T) {
	limit := middleware.BodySizeLimit("1KB")
	big := strings.Repeat("x", 2048)

	rr := serve(limit, func(http.ResponseWriter, *http.Request) {
		t.Error("handler ran for a declared oversized body")
	}, httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(big)))
	if rr.Code != http.StatusRequestEntityTooLarge || !strings.Contains(rr.Body.String(), "PAYLOAD_TOO_LARGE") {
		t.Errorf("declared length: %d %s", rr.Code, rr.Body.String())
	}

	var readErr error
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(big))
	req.ContentLength = -1
	serve(limit, func(_ http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}, req)
	if readErr == nil {
		t.Error("streamed body was not capped")
	}

	if rr := serve(limit, ok, httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader("small"))); rr.Code != http.StatusOK {
		t.Errorf("small body: %d", rr.Code)
	}
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	req := httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-9")
	serve(middleware.Chain(middleware.RequestID(), middleware.Tracing()), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	}, req)

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != observability.SpanHTTPRequest {
		t.Fatalf("spans = %v", spans)
	}
	attrs := map[string]string{}
	for _, a := range spans[0].Attributes {
		attrs[string(a.Key)] = a.Value.Emit()
	}
	want := map[string]string{
		observability.AttrRequestID: "req-9",
		"http.response.status_code": "502",
		"http.response.body.size":   "8",
		"url.path":                  "/transcribe",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name  string
		limit int
		want  []int
	}{
		{name: "two per minute", limit: 2, want: []int{200, 200, 429}},
		{name: "disabled", limit: 0, want: []int{200, 200, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.POST("/transcribe", middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: tt.limit}), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			var codes []int
			var retryAfter string
			for range tt.want {
				rr := httptest.NewRecorder()
				engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transcribe", http.NoBody))
				codes = append(codes, rr.Code)
				retryAfter = rr.Header().Get("Retry-After")
			}
			if !slices.Equal(codes, tt.want) {
				t.Errorf("codes = %v, want %v", codes, tt.want)
			}
			if tt.limit > 0 && retryAfter == "" {
				t.Error("limited response has no Retry-After")
			}
		})
	}
}

func TestChainAndGinWrap(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+">")
				next.ServeHTTP(w, r)
				order = append(order, "<"+name)
			})
		}
	}
	serve(middleware.Chain(tag("outer"), tag("inner")), func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if want := []string{"outer>", "inner>", "handler", "<inner", "<outer"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.GinWrap(middleware.BodySizeLimit("1KB")))
	engine.POST("/transcribe", func(c *gin.Context) {
		t.Error("route ran after the limit rejected the request")
	})
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(strings.Repeat("x", 4096))))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("GinWrap status = %d, want 413", rr.Code)
	}
}
