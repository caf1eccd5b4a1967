package server

import (
	"context"
	"os/signal"
	"syscall"

	"NeoFin/pkg/config"
	xhttp "NeoFin/pkg/http"
	pkgkafka "NeoFin/pkg/kafka"
	applogger "NeoFin/pkg/logger"
)

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	httpServer *xhttp.Server
	closers    []closer
}

// New creates an App. consumer may be nil.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, consumer *pkgkafka.Consumer) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{cfg: cfg, log: l, handler: handler, consumer: consumer}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(handler, opts...)
	return a
}

// OnClose registers a resource released during shutdown, in registration order.
func (a *App) OnClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// HTTP exposes the server, mainly for tests.
func (a *App) HTTP() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run bound to ctx instead of process signals.
func (a *App) RunContext(ctx context.Context) error {
	features := a.cfg.Features()
	a.log.Info("starting neofin",
		applogger.Bool("chat", features.Chat),
		applogger.Bool("planning", features.Planning),
		applogger.Bool("web_search", features.WebSearch),
		applogger.Bool("knowledge_base", features.KnowledgeBase),
		applogger.String("market", a.cfg.Market.Provider),
		applogger.String("audit", a.cfg.Audit.Backend),
	)

	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			a.log.Error("kafka consumer start failed", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then releases resources.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.log.Warn("close failed", applogger.String("resource", c.name), applogger.Error(err))
		}
	}
	a.log.Info("shutdown complete")
	return nil
}
