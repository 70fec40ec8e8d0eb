package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/services"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/desertthunder/moodset/internal/tasks"
	"github.com/desertthunder/moodset/internal/ui"
)

// collectTUI runs the pipeline inside the bubbletea progress view.
//
// Logs go to a file in the temp directory so they do not tear the rendering.
func (r *Runner) collectTUI(ctx context.Context, catalog services.Catalog, opts tasks.EngineOpts, keywords *models.KeywordCatalog) (*tasks.DatasetResult, error) {
	logPath := filepath.Join(os.TempDir(), "moodset-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	previous := r.logger
	fileLogger := shared.NewLogger(logFile)
	fileLogger.SetLevel(previous.GetLevel())
	r.SetLogger(fileLogger)
	defer r.SetLogger(previous)

	opts.Logger = fileLogger
	model := ui.NewModel(ctx, tasks.NewDatasetEngine(catalog, opts), keywords, true)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Result()
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: collection interrupted before it finished", context.Canceled)
	}
	return result, nil
}
