package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/formcalc/internal/config"
	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/expr"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	model     *config.FormModel
	evaluator expr.Evaluator
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. A form definition that fails to load is a fatal
// startup error and panics.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.FormPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load form definition: %w", err))
	}
	logger.Debug("Form definition loaded.", "form", model.Name, "fields", len(model.Fields), "calculations", len(model.Calculations))

	evaluator, err := expr.ByName(model.Evaluator)
	if err != nil {
		panic(fmt.Errorf("form %q: %w", model.Name, err))
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		model:     model,
		evaluator: evaluator,
	}
}

// Model returns the loaded form definition. This is primarily for testing.
func (a *App) Model() *config.FormModel {
	return a.model
}
