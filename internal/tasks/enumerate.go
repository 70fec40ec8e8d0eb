package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/moodset/internal/metrics"
	"github.com/desertthunder/moodset/internal/models"
)

type enumerateResult struct {
	index   int
	ids     []string
	claimed int // -1 when claiming is deferred
	err     *PhaseError
}

// Enumerate lists every playlist with a pool of workers and claims the track ids it finds.
//
// Without [EngineOpts.Deterministic], workers claim ids as soon as their listing arrives, so a track in
// playlists of different labels takes the label of whichever listing finished first. With it, ids are
// claimed after every listing is in, walking refs in order.
func (e *DatasetEngine) Enumerate(ctx context.Context, refs []models.PlaylistRef, progress chan<- ProgressUpdate) (*TrackSet, []*PhaseError, error) {
	set := NewTrackSet()
	if len(refs) == 0 {
		return set, nil, nil
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan enumerateResult, len(refs))

	var wg sync.WaitGroup
	for range min(e.opts.Workers, len(refs)) {
		wg.Add(1)
		go e.enumerateWorker(wctx, &wg, refs, set, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i := range refs {
			select {
			case <-wctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make([][]string, len(refs))
	var (
		failures []*PhaseError
		firstErr error
		step     int
	)
	for res := range results {
		if firstErr != nil {
			continue
		}
		step++

		if res.err != nil {
			if e.opts.Policy == FailFast || fatal(ctx, res.err.Err) {
				firstErr = res.err
				cancel()
				continue
			}
			e.recordFailure(res.err)
			failures = append(failures, res.err)
			e.sendProgress(progress, failedUpdate(Enumerate, step, len(refs), res.err))
			continue
		}

		pending[res.index] = res.ids
		e.sendProgress(progress, listedUpdate(step, len(refs), refs[res.index], len(res.ids), res.claimed))
	}

	if firstErr != nil {
		return nil, failures, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, failures, err
	}

	if e.opts.Deterministic {
		for i, ids := range pending {
			claimed := set.ClaimAll(ids, refs[i].Label)
			metrics.ObserveClaims(claimed, len(ids)-claimed)
		}
	}
	return set, failures, nil
}

// enumerateWorker lists playlists from the jobs channel until it closes.
func (e *DatasetEngine) enumerateWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	refs []models.PlaylistRef,
	set *TrackSet,
	jobs <-chan int,
	results chan<- enumerateResult,
) {
	defer wg.Done()

	for i := range jobs {
		ref := refs[i]
		ids, err := e.listPlaylist(ctx, ref.ID)
		if err != nil {
			results <- enumerateResult{index: i, err: &PhaseError{Phase: Enumerate, Key: ref.ID, Err: err}}
			continue
		}

		claimed := -1
		if !e.opts.Deterministic {
			claimed = set.ClaimAll(ids, ref.Label)
			metrics.ObserveClaims(claimed, len(ids)-claimed)
		}
		results <- enumerateResult{index: i, ids: ids, claimed: claimed}
	}
}

func (e *DatasetEngine) listPlaylist(ctx context.Context, playlistID string) ([]string, error) {
	ctx, cancel := e.taskContext(ctx)
	defer cancel()

	items, err := e.catalog.PlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return TrackIDs(items), nil
}
