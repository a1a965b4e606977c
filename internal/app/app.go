package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/TheRakeshPurohit/litex/internal/config"
	"github.com/TheRakeshPurohit/litex/internal/ctxlog"
	"github.com/TheRakeshPurohit/litex/internal/pipeline"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	cfg       *Config
	model     *config.Model
	toolchain pipeline.Toolchain
}

// New is the constructor for the main application. It loads the manifest
// through the given loader and applies the CLI/environment overrides onto
// the model. A failure to load or validate the manifest is a fatal startup
// error and panics; the entrypoint recovers.
func New(outW io.Writer, cfg *Config, loader config.Loader, toolchain pipeline.Toolchain) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load build manifest: %w", err))
	}
	logger.Debug("Manifest loaded and translated into unified model.")

	applyOverrides(model, cfg)
	if err := validate(model); err != nil {
		panic(fmt.Errorf("invalid build configuration: %w", err))
	}
	logger.Debug("Build configuration validated.", "cpu", model.CPU, "output", model.Output)

	if toolchain == nil {
		toolchain = pipeline.NewGNU(cfg.ToolchainPrefix)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		cfg:       cfg,
		model:     model,
		toolchain: toolchain,
	}
}

// Model returns the resolved build model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// applyOverrides layers the CLI and environment settings over the manifest.
// Console toggles only ever tighten the feature set, so they combine with OR.
func applyOverrides(model *config.Model, cfg *Config) {
	if cfg.CPU != "" {
		model.CPU = cfg.CPU
	}
	if cfg.Output != "" {
		model.Output = cfg.Output
	}
	if cfg.TFTPPort != "" {
		model.TFTPPort = cfg.TFTPPort
	}
	model.Console.Disabled = model.Console.Disabled || cfg.ConsoleDisable
	model.Console.Lite = model.Console.Lite || cfg.ConsoleLite
	model.Console.NoAutocomplete = model.Console.NoAutocomplete || cfg.NoAutocomplete
	model.Console.NoHistory = model.Console.NoHistory || cfg.NoHistory
}

// validate checks the model names every source the resolved feature set
// will ask for. Missing sources for unselected features are fine.
func validate(model *config.Model) error {
	if model.CRT0 == "" {
		return fmt.Errorf("manifest does not name a crt0 source")
	}
	if len(model.Units) == 0 {
		return fmt.Errorf("manifest defines no compilation units")
	}
	c := model.Console
	if c.Disabled {
		return nil
	}
	if c.Lite && c.EditorLite == "" {
		return fmt.Errorf("console is lite but the manifest names no editor_lite source")
	}
	if !c.Lite && c.Editor == "" {
		return fmt.Errorf("console is enabled but the manifest names no editor source")
	}
	if !c.Lite && !c.NoAutocomplete && c.Complete == "" {
		return fmt.Errorf("autocompletion is enabled but the manifest names no complete source")
	}
	return nil
}
