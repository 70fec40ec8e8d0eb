package tasks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/desertthunder/moodset/internal/shared"
	"golang.org/x/sync/errgroup"
)

// BatchFetcher fetches one chunk of ids and must return exactly one entry per id, in order.
type BatchFetcher[T any] func(ctx context.Context, ids []string) ([]T, error)

// BatchOpts controls [FetchBatched].
type BatchOpts struct {
	Size    int   // ids per request
	Workers int   // concurrent chunks; 1 or less fetches sequentially
	Phase   Phase // names the phase in errors
	OnChunk func(done, total int)
}

// Chunk splits ids into consecutive slices of at most size ids.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end:end])
	}
	return chunks
}

// FetchBatched fetches ids in chunks of opts.Size and concatenates the results in chunk order, so
// position i of the result always belongs to ids[i]. Empty input returns an empty slice without
// calling fetch. Any chunk error, or a chunk whose result length differs from its ids, aborts
// with a [PhaseError].
func FetchBatched[T any](ctx context.Context, ids []string, opts BatchOpts, fetch BatchFetcher[T]) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, opts.Size)
	}

	chunks := Chunk(ids, opts.Size)
	results := make([][]T, len(chunks))
	var done atomic.Int64

	fetchChunk := func(ctx context.Context, i int) error {
		start := i * opts.Size
		key := fmt.Sprintf("ids[%d:%d]", start, start+len(chunks[i]))

		out, err := fetch(ctx, chunks[i])
		if err != nil {
			return &PhaseError{Phase: opts.Phase, Key: key, Err: err}
		}
		if len(out) != len(chunks[i]) {
			return &PhaseError{
				Phase: opts.Phase,
				Key:   key,
				Err:   fmt.Errorf("%w: got %d results for %d ids", shared.ErrMisaligned, len(out), len(chunks[i])),
			}
		}
		results[i] = out

		if opts.OnChunk != nil {
			opts.OnChunk(int(done.Add(1)), len(chunks))
		}
		return nil
	}

	if opts.Workers <= 1 {
		for i := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := fetchChunk(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range chunks {
			g.Go(func() error { return fetchChunk(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	flat := make([]T, 0, len(ids))
	for _, out := range results {
		flat = append(flat, out...)
	}
	return flat, nil
}
