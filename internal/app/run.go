package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/vk/hotbootgo/internal/activate"
	"github.com/vk/hotbootgo/internal/config"
	"github.com/vk/hotbootgo/internal/content"
	"github.com/vk/hotbootgo/internal/ctxlog"
	"github.com/vk/hotbootgo/internal/engine"
	"github.com/vk/hotbootgo/internal/fetch"
	"github.com/vk/hotbootgo/internal/lifecycle"
	"github.com/vk/hotbootgo/internal/metadata"
	"github.com/vk/hotbootgo/internal/store"
)

// Run executes one bootstrap pass: fetch, patch, activate, instantiate,
// countdown. It returns only when the pipeline aborts on a fatal error; a
// successful run ends with process termination inside the countdown.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer(ctx)
		defer a.closeHealthCheckServer(ctx)
	}

	boot := a.model.Bootstrap

	st := store.New()
	client := fetch.NewClient()
	defer client.Close()

	table := metadata.NewSymbolTable()
	activator := activate.NewActivator(st, a.registry, table)
	stage := content.NewMemoryStage()

	timer := lifecycle.New(boot.Countdown, a.timerOptions(boot)...)

	mode := activate.ModeRemote
	if boot.Mode == config.ModeInline {
		mode = activate.ModeInline
	}

	pipeline := engine.NewPipeline(
		fetch.NewDownloader(boot.BaseLocation, client, st),
		metadata.NewPatcher(st, table),
		activator,
		content.NewInstantiator(st, stage),
		timer,
		boot.ResourceList(),
		boot.BaseModules,
		boot.Module,
		boot.Bundle,
		mode,
	)

	a.logger.Info("🚀 Starting bootstrap.",
		"base_location", boot.BaseLocation,
		"resources", len(boot.ResourceList()),
		"base_modules", len(boot.BaseModules),
		"countdown", boot.Countdown)

	if err := engine.Run(ctx, pipeline, nil); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// timerOptions maps the manifest's sentinel gate onto lifecycle options. The
// auto setting leaves the platform default in place.
func (a *App) timerOptions(boot *config.Bootstrap) []lifecycle.Option {
	opts := []lifecycle.Option{lifecycle.WithExit(a.exit)}
	switch boot.Sentinel {
	case config.SentinelOn:
		opts = append(opts, lifecycle.WithSentinel(true))
	case config.SentinelOff:
		opts = append(opts, lifecycle.WithSentinel(false))
	default:
		a.logger.Debug("Sentinel gate left on platform default.", "goos", runtime.GOOS)
	}
	if boot.SentinelDir != "" {
		opts = append(opts, lifecycle.WithSentinelDir(boot.SentinelDir))
	}
	return opts
}
