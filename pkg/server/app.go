package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockCast/internal/scheduler"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
)

// App encapsulates a process lifecycle: an optional HTTP server and an
// optional daily scheduler. Infrastructure is released by the injector's
// cleanup after Run returns.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
}

// Option configures App.
type Option func(*App)

func WithHTTPServer(s *xhttp.Server) Option {
	return func(a *App) { a.httpServer = s }
}

func WithScheduler(s *scheduler.Scheduler) Option {
	return func(a *App) { a.scheduler = s }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, opts ...Option) *App {
	a := &App{cfg: cfg, l: l}
	for _, opt := range opts {
		opt(a)
	}
	if a.l == nil {
		a.l = applogger.Nop()
	}
	return a
}

// Run starts the application and blocks until interrupted or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.l.Error("http server start error", applogger.Error(err))
			return err
		}
	}
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.scheduler != nil {
		// an in-flight ETL run gets the rest of the shutdown budget
		if err := a.scheduler.Stop(ctx); err != nil {
			a.l.Warn("scheduler stop error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
