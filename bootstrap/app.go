package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/voxkit/component"
	"github.com/kbukum/voxkit/logger"
	"github.com/kbukum/voxkit/observability"
)

const defaultGracefulTimeout = 15 * time.Second

// App ties a typed config C to a logger and a component registry and drives
// them through startup and shutdown.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryWriter   io.Writer

	onConfigure []func(ctx context.Context, app *App[C]) error
	onStart     []Hook
	onReady     []Hook
	onStop      []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	svc := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(svc.Logging, svc.Name)
		log = logger.GetGlobalLogger()
	} else {
		logger.SetGlobalLogger(log)
	}

	app := &App[C]{
		Name:            svc.Name,
		Version:         svc.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          log,
		Summary:         NewSummary(svc.Name, svc.Version),
		gracefulTimeout: defaultGracefulTimeout,
		summaryWriter:   o.summaryWriter,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	return app, nil
}

func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs once every component has
// started, typically to assemble the transcript pipeline.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	return observability.Check(ctx, a.Name, a.Version, a.Components.Checkers()...)
}

// ReadyCheck fails when a component reports down. Degraded components, such
// as an unreachable optional sidecar, do not count.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var down []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != observability.HealthStatusDown {
			continue
		}
		if h.Message != "" {
			down = append(down, fmt.Sprintf("%s (%s)", h.Name, h.Message))
		} else {
			down = append(down, h.Name)
		}
	}
	if len(down) > 0 {
		return fmt.Errorf("components down: %s", strings.Join(down, ", "))
	}
	return nil
}

// Run starts the app and serves until ctx ends or SIGINT/SIGTERM arrives.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Logger.Info("application ready, waiting for shutdown signal")
	<-sigCtx.Done()
	a.Logger.Info("shutting down", logger.Fields("reason", context.Cause(sigCtx).Error()))
	return a.stop()
}

// RunTask starts the app, runs task and shuts down when it returns. A
// SIGINT/SIGTERM cancels the task's context. The task error takes
// precedence, shutdown errors are joined to it.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	cancel()
	return errors.Join(taskErr, a.stop())
}

// start runs the startup phases in order. On failure everything already
// started is stopped again.
func (a *App[C]) start(ctx context.Context) error {
	begin := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	phases := []struct {
		failure string
		run     func(context.Context) error
	}{
		{"initialization failed", a.Components.StartAll},
		{"onStart hook failed", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configuration failed", a.configure},
		{"ready check", a.warnNotReady},
		{"onReady hook failed", func(ctx context.Context) error { return runHooks(ctx, a.onReady) }},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			if stopErr := a.stop(); stopErr != nil {
				a.Logger.Warn("cleanup after failed startup", logger.Fields(logger.FieldError, stopErr.Error()))
			}
			return fmt.Errorf("%s: %w", p.failure, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(begin))
	a.DisplaySummary(ctx)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// warnNotReady logs a failed ready check; startup continues so a sidecar
// still loading its model does not abort the process.
func (a *App[C]) warnNotReady(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	return nil
}

// DisplaySummary prints the startup summary to the summary writer, or logs
// it at debug level when there is none.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	text := a.Summary.Render(ctx, a.Components)
	if a.summaryWriter == nil {
		a.Logger.Debug("startup summary", logger.Fields("summary", text))
		return
	}
	_, _ = fmt.Fprintln(a.summaryWriter, text)
}

// stop runs the stop hooks and then stops components, all within the
// graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, a.onStop)
	if hookErr != nil {
		a.Logger.Error("onStop hook error", logger.Fields(logger.FieldError, hookErr.Error()))
	}
	compErr := a.Components.StopAll(ctx)
	if compErr != nil {
		a.Logger.Error("shutdown completed with errors", logger.Fields(logger.FieldError, compErr.Error()))
	}
	a.Logger.Info("application shutdown complete")
	return errors.Join(hookErr, compErr)
}
