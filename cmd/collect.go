package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/moodset/internal/formatter"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/repositories"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/desertthunder/moodset/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Collect runs the pipeline and writes the dataset, its manifest, and optionally the database rows.
func (r *Runner) Collect(ctx context.Context, cmd *cli.Command) error {
	keywords, err := r.keywordCatalog(cmd.String("keywords"))
	if err != nil {
		return err
	}

	opts, err := r.engineOpts(cmd)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = r.config.Output.Path
	}
	formatName := cmd.String("format")
	if formatName == "" && !cmd.IsSet("output") {
		formatName = r.config.Output.Format
	}
	format, err := formatter.ParseFormat(formatName, path)
	if err != nil {
		return err
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	lock, err := shared.LockOutput(path)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	r.logger.Info("starting collection",
		"labels", len(keywords.Labels()),
		"phrases", keywords.Len(),
		"workers", opts.Workers,
		"policy", opts.Policy,
		"deterministic", opts.Deterministic)

	var result *tasks.DatasetResult
	switch {
	case cmd.Bool("tui") && r.isTerminal():
		result, err = r.collectTUI(ctx, catalog, opts, keywords)
	default:
		if cmd.Bool("tui") {
			r.logger.Warn("stdout is not a terminal, falling back to plain progress")
		}
		opts.Logger = r.logger
		result, err = r.collectPlain(ctx, tasks.NewDatasetEngine(catalog, opts), keywords)
	}
	if err != nil {
		return err
	}

	return r.finishCollect(result, path, format, cmd.Bool("save"), !cmd.Bool("no-manifest") && r.config.Output.Manifest)
}

func (r *Runner) collectPlain(ctx context.Context, engine *tasks.DatasetEngine, keywords *models.KeywordCatalog) (*tasks.DatasetResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch {
			case update.Failed:
				r.writePlain("   ✗ %s\n", update.Message)
			case update.Step == 0:
				r.writePlain("\n→ %s\n", update.Message)
			case update.Phase == tasks.Discover || update.Phase == tasks.Enumerate:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("✓ %s: %s\n", update.Phase.Title(), update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, keywords, progressCh)
	close(progressCh)
	<-done

	return result, err
}

func (r *Runner) finishCollect(result *tasks.DatasetResult, path, format string, save, manifest bool) error {
	if err := formatter.WriteDataset(result.Records, path, format); err != nil {
		return err
	}
	r.logger.Info("dataset written", "path", path, "format", format, "records", len(result.Records))

	run := result.Run()
	run.OutputPath = path

	failures := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = f.Error()
	}

	if manifest {
		manifestPath := formatter.ManifestPath(path)
		if err := formatter.WriteManifest(run, failures, format, manifestPath); err != nil {
			return err
		}
		r.logger.Debug("manifest written", "path", manifestPath)
	}

	if save {
		if err := r.saveRun(&run, result.Records); err != nil {
			return err
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Collection Complete!")
	r.writePlain("Run: %s\n", run.ID)
	if run.Sequence > 0 {
		r.writePlain("Saved as run #%d\n", run.Sequence)
	}
	r.writePlain("Playlists: %d\n", run.Playlists)
	r.writePlain("Tracks: %d\n", run.Tracks)
	r.writePlain("Records: %d (%d dropped without features or info)\n", run.Records, run.Tracks-run.Records)
	r.writePlain("Elapsed: %s\n", shared.FormatDuration(run.Duration()))
	r.writePlain("Output: %s\n\n", path)
	r.writePlain("%s\n", formatter.SummaryTable(run))

	if len(failures) > 0 {
		r.writePlain("\nSkipped %d tasks:\n", len(failures))
		for _, f := range failures {
			r.writePlain("  - %s\n", f)
		}
	}
	if run.Records == 0 {
		r.logger.Warn("no records collected; check the keyword catalog and credentials")
	}
	return nil
}

func (r *Runner) saveRun(run *models.Run, records []models.MergedRecord) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs := repositories.NewRunRepository(db)
	if err := runs.Create(run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := repositories.NewDatasetRepository(db).SaveRecords(run.ID, records); err != nil {
		if derr := runs.Delete(run.ID); derr != nil {
			r.logger.Error("failed to remove incomplete run", "id", run.ID, "error", derr)
		}
		run.Sequence = 0
		return fmt.Errorf("failed to save dataset rows: %w", err)
	}
	r.logger.Info("run saved", "id", run.ID, "sequence", run.Sequence, "database", r.config.Database.Path)
	return nil
}

// keywordCatalog loads file when given, otherwise the configured catalog.
func (r *Runner) keywordCatalog(file string) (*models.KeywordCatalog, error) {
	if file != "" {
		return shared.LoadKeywordsFile(file)
	}
	return r.config.KeywordCatalog()
}

// engineOpts merges config values with command flags; flags win when set.
func (r *Runner) engineOpts(cmd *cli.Command) (tasks.EngineOpts, error) {
	policy, err := tasks.ParsePolicy(r.config.Pipeline.FailurePolicy)
	if err != nil {
		return tasks.EngineOpts{}, err
	}
	if cmd.Bool("skip-failed") {
		policy = tasks.Skip
	}

	opts := tasks.EngineOpts{
		Workers:       r.config.Pipeline.Workers,
		SearchLimit:   r.config.Catalog.SearchLimit,
		FeatureBatch:  r.config.Catalog.FeatureBatchSize,
		InfoBatch:     r.config.Catalog.InfoBatchSize,
		FetchWorkers:  r.config.Pipeline.FetchWorkers,
		Deterministic: r.config.Pipeline.Deterministic || cmd.Bool("deterministic"),
		Policy:        policy,
		TaskTimeout:   cmd.Duration("task-timeout"),
		Logger:        r.logger,
	}
	if cmd.IsSet("workers") {
		if opts.Workers = int(cmd.Int("workers")); opts.Workers < 1 {
			return opts, fmt.Errorf("%w: --workers must be at least 1", shared.ErrInvalidFlag)
		}
	}
	if cmd.IsSet("fetch-workers") {
		if opts.FetchWorkers = int(cmd.Int("fetch-workers")); opts.FetchWorkers < 1 {
			return opts, fmt.Errorf("%w: --fetch-workers must be at least 1", shared.ErrInvalidFlag)
		}
	}
	return opts, nil
}
