package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moodset/internal/formatter"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/repositories"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList prints saved runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		r.writePlain("No saved runs. Use 'moodset collect --save' to record one.\n")
		return nil
	}

	list := make([]models.Run, len(runs))
	for i, run := range runs {
		list[i] = *run
	}
	r.writePlain("%s\n", formatter.RunsTable(list))
	return nil
}

// RunsShow prints one run with its per-label counts, and optionally re-exports its rows.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("run")
	if ref == "" {
		return fmt.Errorf("%w: run sequence or id is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repositories.NewRunRepository(db).Find(ref)
	if err != nil {
		return err
	}
	dataset := repositories.NewDatasetRepository(db)
	if run.LabelCounts, err = dataset.CountByLabel(run.ID); err != nil {
		return err
	}

	if path := cmd.String("export"); path != "" {
		format, err := formatter.ParseFormat(cmd.String("format"), path)
		if err != nil {
			return err
		}
		records, err := dataset.ListByRun(run.ID)
		if err != nil {
			return err
		}
		if err := formatter.WriteDataset(records, path, format); err != nil {
			return err
		}
		r.logger.Info("run exported", "run", run.ID, "path", path, "records", len(records))
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d", run.Sequence))
	r.writePlain("ID: %s\n", run.ID)
	r.writePlain("Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	r.writePlain("Elapsed: %s\n", shared.FormatDuration(run.Duration()))
	r.writePlain("Playlists: %d\n", run.Playlists)
	r.writePlain("Tracks: %d\n", run.Tracks)
	r.writePlain("Failures: %d\n", run.Failures)
	if run.OutputPath != "" {
		r.writePlain("Output: %s\n", run.OutputPath)
	}
	r.writePlain("\n%s\n", formatter.SummaryTable(*run))
	return nil
}

// RunsDelete removes a saved run and its rows.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("run")
	if ref == "" {
		return fmt.Errorf("%w: run sequence or id is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs := repositories.NewRunRepository(db)
	run, err := runs.Find(ref)
	if err != nil {
		return err
	}
	if err := runs.Delete(run.ID); err != nil {
		return err
	}

	r.writePlain("✓ Deleted run #%d (%s)\n", run.Sequence, run.ID)
	return nil
}
