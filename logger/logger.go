package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

// Logger is a zerolog.Logger bound to one service.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config, serviceName string) *Logger {
	w := io.Writer(os.Stderr)
	if strings.EqualFold(cfg.Output, "stdout") {
		w = os.Stdout
	}
	return NewWithWriter(cfg, serviceName, w)
}

// NewWithWriter builds a logger writing to w. An unknown level means info.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var ctx zerolog.Context
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty, "text":
		ctx = zerolog.New(consoleWriter(w, serviceName, cfg.NoColor)).With()
	default:
		ctx = zerolog.New(w).With().Str(FieldService, serviceName)
	}
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger().Level(level), service: serviceName}
}

// NewNop returns a logger that writes nothing.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) derive(ctx zerolog.Context) *Logger {
	return &Logger{zl: ctx.Logger(), service: l.service}
}

// WithContext adds the trace, span and request IDs carried by ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	return l.derive(zc)
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.zl.Error(), msg, fields) }

func emit(e *zerolog.Event, msg string, fields []map[string]any) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

type requestIDKey struct{}

// ContextWithRequestID stores id for WithContext to pick up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var global atomic.Pointer[Logger]

// Init replaces the global logger with one built from cfg.
func Init(cfg Config, serviceName string) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, serviceName))
}

func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the global logger, a console logger at info level
// until Init or SetGlobalLogger runs.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	cfg := Config{}
	cfg.ApplyDefaults()
	global.CompareAndSwap(nil, New(&cfg, "voxkit"))
	return global.Load()
}

// Info logs on the global logger.
func Info(msg string, fields ...map[string]any) {
	GetGlobalLogger().Info(msg, fields...)
}

const ansiReset = "\033[0m"

var consoleLevels = map[string][2]string{
	zerolog.LevelDebugValue: {"[DBG]", "\033[36m"},
	zerolog.LevelInfoValue:  {"[INF]", "\033[32m"},
	zerolog.LevelWarnValue:  {"[WRN]", "\033[33m"},
	zerolog.LevelErrorValue: {"[ERR]", "\033[31m"},
	zerolog.LevelFatalValue: {"[FTL]", "\033[35m"},
}

// consoleWriter prints "[VOX][INF] message key:value" lines, the first
// three letters of the service name leading.
func consoleWriter(w io.Writer, serviceName string, noColor bool) zerolog.ConsoleWriter {
	paint := func(s, color string) string {
		if noColor {
			return s
		}
		return color + s + ansiReset
	}
	prefix := ""
	if len(serviceName) >= 3 {
		prefix = paint("["+strings.ToUpper(serviceName[:3])+"]", "\033[34m")
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i any) string {
			lvl := fmt.Sprint(i)
			if tag, ok := consoleLevels[lvl]; ok {
				return prefix + paint(tag[0], tag[1])
			}
			return prefix + "[" + strings.ToUpper(lvl) + "]"
		},
		FormatFieldName: func(i any) string { return fmt.Sprint(i) + ":" },
	}
}
