package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/vk/hotbootgo/internal/activate"
	"github.com/vk/hotbootgo/internal/config"
	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/logmirror"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	mirror   *logmirror.Handler
	registry *activate.Registry
	model    *config.Model
	config   *Config

	httpServer *http.Server
	exit       func(int)
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, libraries ...activate.Library) *App {
	logger, mirror := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW, appConfig.MirrorLines)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the bootstrap manifest into the format-agnostic model.
	model, err := loader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		// A failure to load the manifest is a fatal startup error.
		panic(fmt.Errorf("failed to load manifest: %w", err))
	}
	logger.Debug("Manifest loaded and translated into unified model.")

	// Create and populate the host-library registry.
	reg := activate.NewRegistry()
	if len(libraries) == 0 {
		libraries = coreLibraries
	}
	for _, lib := range libraries {
		lib.Register(reg)
	}
	logger.Debug("All host libraries registered.", "count", len(libraries))

	return &App{
		outW:     outW,
		logger:   logger,
		mirror:   mirror,
		registry: reg,
		model:    model,
		config:   appConfig,
		exit:     os.Exit,
	}
}

// Registry returns the application's host-library registry. This is primarily
// for testing.
func (a *App) Registry() *activate.Registry {
	return a.registry
}

// Mirror returns the bounded log mirror. This is primarily for testing.
func (a *App) Mirror() *logmirror.Handler {
	return a.mirror
}

// SetExit overrides the process-termination function used by the countdown.
// Tests use this to observe termination without exiting.
func (a *App) SetExit(fn func(int)) {
	a.exit = fn
}
