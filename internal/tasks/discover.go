package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/moodset/internal/models"
	"golang.org/x/sync/errgroup"
)

// Discover searches every (label, phrase) pair concurrently and returns the distinct playlists found.
//
// Result order follows the keyword catalog: labels in order, phrases in order, then search rank.
// A playlist found more than once keeps its first (label, phrase) in that order.
func (e *DatasetEngine) Discover(ctx context.Context, keywords *models.KeywordCatalog, progress chan<- ProgressUpdate) ([]models.PlaylistRef, []*PhaseError, error) {
	entries := keywords.Entries()
	groups := make([][]models.PlaylistRef, len(entries))

	var (
		mu       sync.Mutex
		failures []*PhaseError
		done     atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, entry := range entries {
		g.Go(func() error {
			refs, err := e.searchPhrase(gctx, entry)
			step := int(done.Add(1))
			if err != nil {
				perr := &PhaseError{Phase: Discover, Key: entry.Phrase, Err: err}
				if e.opts.Policy == FailFast || fatal(ctx, err) {
					return perr
				}
				e.recordFailure(perr)
				mu.Lock()
				failures = append(failures, perr)
				mu.Unlock()
				e.sendProgress(progress, failedUpdate(Discover, step, len(entries), perr))
				return nil
			}

			groups[i] = refs
			e.sendProgress(progress, searchedUpdate(step, len(entries), entry, len(refs)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, failures, err
	}
	if err := ctx.Err(); err != nil {
		return nil, failures, err
	}
	return dedupePlaylists(groups), failures, nil
}

func (e *DatasetEngine) searchPhrase(ctx context.Context, entry models.KeywordEntry) ([]models.PlaylistRef, error) {
	ctx, cancel := e.taskContext(ctx)
	defer cancel()

	playlists, err := e.catalog.SearchPlaylists(ctx, entry.Phrase, e.opts.SearchLimit)
	if err != nil {
		return nil, err
	}

	refs := make([]models.PlaylistRef, 0, len(playlists))
	for _, pl := range playlists {
		if pl.ID == "" {
			continue
		}
		refs = append(refs, models.PlaylistRef{ID: pl.ID, Label: entry.Label, Phrase: entry.Phrase})
	}
	return refs, nil
}

func dedupePlaylists(groups [][]models.PlaylistRef) []models.PlaylistRef {
	seen := make(map[string]bool)
	var refs []models.PlaylistRef
	for _, group := range groups {
		for _, ref := range group {
			if seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			refs = append(refs, ref)
		}
	}
	return refs
}
