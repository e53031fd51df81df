package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/declrt/internal/config"
	"github.com/vk/declrt/internal/ctxlog"
	"github.com/vk/declrt/internal/registry"
	"github.com/vk/declrt/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	registry *registry.Registry
	model    *config.Model
	factory  *session.Factory
}

// NewApp is the constructor for the main application. It loads the
// manifests, registers the Go modules, checks that both agree and
// bootstraps the registry. The returned App is ready to create sessions.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	// Load all manifests into the format-agnostic model first.
	model, err := loader.Load(ctx, cfg.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Debug("Manifests loaded and translated into unified model.", "units", len(model.Units))

	// Create and populate the registry with Go handlers.
	reg := registry.New()
	if len(modules) == 0 {
		modules = CoreModules(os.Stdout)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Validate the integrity of the registry against the manifests.
	if err := reg.ValidateRegistry(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	if err := reg.Bootstrap(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to bootstrap registry: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		model:    model,
		factory: &session.Factory{
			Registry: reg,
			Options: session.Options{
				RootPath:         cfg.RootPath,
				WorkingDirectory: cfg.WorkingDirectory,
				IncludePaths:     cfg.IncludePaths,
				Logger:           logger,
			},
		},
	}, nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded manifest model.
func (a *App) Model() *config.Model {
	return a.model
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// NewSession creates a run context bound to the application's registry.
func (a *App) NewSession(ctx context.Context) (*session.Session, error) {
	return a.factory.NewSession(ctxlog.WithLogger(ctx, a.logger))
}
