package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/metrics"
	"github.com/specialistvlad/unitgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	metrics    *metrics.Listener
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW. With no modules the core modules are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "handlers", reg.HandlerNames())

	a := &App{
		ctx:      ctxlog.WithLogger(context.Background(), logger),
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
