package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/moodset/internal/formatter"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search authenticates and prints the playlists one phrase discovers.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	phrase := cmd.StringArg("phrase")
	if phrase == "" {
		return fmt.Errorf("%w: phrase is required", shared.ErrMissingArgument)
	}

	limit := r.config.Catalog.SearchLimit
	if cmd.IsSet("limit") {
		limit = int(cmd.Int("limit"))
	}
	if limit < 1 || limit > shared.MaxSearchLimit {
		return fmt.Errorf("%w: --limit must be between 1 and %d", shared.ErrInvalidFlag, shared.MaxSearchLimit)
	}

	catalog, err := r.catalogService()
	if err != nil {
		return err
	}
	if err := catalog.Authenticate(ctx); err != nil {
		return err
	}

	r.logger.Infof("searching %s playlists for %q (limit %d)", catalog.Name(), phrase, limit)
	playlists, err := catalog.SearchPlaylists(ctx, phrase, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	rows := make([][]string, 0, len(playlists))
	for _, pl := range playlists {
		rows = append(rows, []string{pl.ID, pl.Name, pl.Owner, strconv.Itoa(pl.TrackCount)})
	}
	r.writePlain("%s\n", formatter.RenderTable(
		[]string{"ID", "Name", "Owner", "Tracks"},
		rows,
		[]formatter.Alignment{formatter.AlignLeft, formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight},
	))
	return nil
}

// Keywords prints the resolved keyword catalog.
func (r *Runner) Keywords(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.keywordCatalog(cmd.String("keywords"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make(map[string][]string, len(catalog.Labels()))
		for _, label := range catalog.Labels() {
			out[label] = catalog.Phrases(label)
		}
		return r.writeJSON(out, true)
	}

	r.writePlain("%s\n", formatter.KeywordsTable(catalog))
	r.writePlain("%d labels, %d phrases\n", len(catalog.Labels()), catalog.Len())
	return nil
}
