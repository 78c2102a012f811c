package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
	"github.com/kbukum/voxkit/server/endpoint"
	"github.com/kbukum/voxkit/server/middleware"
)

// Server serves a Gin engine behind a net/http middleware chain, over
// HTTP/1.1 and h2c.
type Server struct {
	config Config
	engine *gin.Engine
	chain  []middleware.Middleware
	http   *http.Server
	log    *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server with no middleware and no routes. Gin runs in debug
// mode only when debug logging is on.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	seconds := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return &Server{
		config: cfg,
		engine: gin.New(),
		log:    log.WithComponent("server"),
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       seconds(cfg.ReadTimeout),
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       seconds(cfg.IdleTimeout),
		},
	}
}

// ApplyMiddleware installs, outermost first: recovery, request ID,
// tracing, CORS, the body size limit and request logging.
func (s *Server) ApplyMiddleware() {
	s.chain = append(s.chain,
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// Handler is what the listener serves: the middleware chain around the
// engine, upgraded for h2c.
func (s *Server) Handler() http.Handler {
	h2 := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          s.http.IdleTimeout,
	}
	return h2c.NewHandler(middleware.Chain(s.chain...)(s.engine), h2)
}

// Start binds the address and serves in the background. It returns once
// the port is bound.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.http.Addr, err)
	}
	s.http.Handler = s.Handler()

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("HTTP server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop shuts down gracefully; in-flight transcriptions get until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr is the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.http.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Probes describes what the system endpoints report.
type Probes struct {
	Service string
	Version string
	// Details are flattened into the /health body, e.g. device and
	// whisper_backend.
	Details map[string]string
	Health  []observability.HealthChecker
	Ready   endpoint.ReadyFunc
}

// RegisterDefaultEndpoints adds /health, /alive, /ready and /version.
func (s *Server) RegisterDefaultEndpoints(p Probes) {
	s.engine.GET("/health", endpoint.Health(p.Service, p.Version, p.Details, p.Health...))
	s.engine.GET("/alive", endpoint.Liveness(p.Service))
	s.engine.GET("/ready", endpoint.Readiness(p.Service, p.Ready))
	s.engine.GET("/version", endpoint.Version())
}

// RegisterTranscribe adds POST /transcribe behind the rate limiter.
func (s *Server) RegisterTranscribe(t endpoint.Transcriber, opts endpoint.TranscribeOptions) {
	if opts.TempDir == "" {
		opts.TempDir = s.config.TempDir
	}
	if opts.Logger == nil {
		opts.Logger = s.log.WithComponent("transcribe")
	}
	s.engine.POST("/transcribe", middleware.RateLimit(s.config.RateLimit), endpoint.Transcribe(t, opts))
}
