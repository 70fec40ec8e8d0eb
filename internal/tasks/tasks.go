package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodset/internal/metrics"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/services"
	"github.com/desertthunder/moodset/internal/shared"
)

// FailurePolicy decides what a failed search or playlist listing does to the run.
type FailurePolicy int

const (
	FailFast FailurePolicy = iota
	Skip
)

func (p FailurePolicy) String() string {
	if p == Skip {
		return shared.PolicySkip
	}
	return shared.PolicyFailFast
}

// ParsePolicy maps a config value onto a [FailurePolicy].
func ParsePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", shared.PolicyFailFast:
		return FailFast, nil
	case shared.PolicySkip:
		return Skip, nil
	default:
		return FailFast, fmt.Errorf("%w: unknown failure policy %q", shared.ErrInvalidArgument, s)
	}
}

// EngineOpts tunes a [DatasetEngine]. Zero values take the defaults noted per field.
type EngineOpts struct {
	Workers       int           // concurrent searches and playlist listings (default: 8)
	SearchLimit   int           // playlists per phrase (default: 7)
	FeatureBatch  int           // ids per audio-features call (default and max: 100)
	InfoBatch     int           // ids per tracks call (default and max: 50)
	FetchWorkers  int           // concurrent batch calls per fetch phase (default: 1)
	TaskTimeout   time.Duration // bounds one remote task: a search, a full listing, or one batch (default: none)
	Deterministic bool          // claim ids in discovery order after all listings finish
	Policy        FailurePolicy
	Logger        *log.Logger
}

func (o EngineOpts) withDefaults() EngineOpts {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 7
	}
	if o.FeatureBatch <= 0 || o.FeatureBatch > shared.MaxFeatureBatch {
		o.FeatureBatch = shared.MaxFeatureBatch
	}
	if o.InfoBatch <= 0 || o.InfoBatch > shared.MaxInfoBatch {
		o.InfoBatch = shared.MaxInfoBatch
	}
	if o.FetchWorkers <= 0 {
		o.FetchWorkers = 1
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// DatasetResult is everything one collection run produced.
type DatasetResult struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Playlists   []models.PlaylistRef
	Tracks      int
	Records     []models.MergedRecord
	Failures    []*PhaseError
	LabelCounts map[string]int
}

// Run summarizes the result for persistence and manifests.
func (r *DatasetResult) Run() models.Run {
	return models.Run{
		ID:          r.RunID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Playlists:   len(r.Playlists),
		Tracks:      r.Tracks,
		Records:     len(r.Records),
		Failures:    len(r.Failures),
		LabelCounts: r.LabelCounts,
	}
}

// DatasetEngine runs the collection pipeline against a [services.Catalog].
type DatasetEngine struct {
	catalog services.Catalog
	opts    EngineOpts
	logger  *log.Logger
}

// NewDatasetEngine creates a new DatasetEngine over catalog.
func NewDatasetEngine(catalog services.Catalog, opts EngineOpts) *DatasetEngine {
	opts = opts.withDefaults()
	return &DatasetEngine{
		catalog: catalog,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Opts returns the effective options after defaults.
func (e *DatasetEngine) Opts() EngineOpts {
	return e.opts
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DatasetEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *DatasetEngine) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.TaskTimeout > 0 {
		return context.WithTimeout(ctx, e.opts.TaskTimeout)
	}
	return context.WithCancel(ctx)
}

// Run authenticates, then discovers, enumerates, fetches, and joins. Errors from a phase come back as [*PhaseError].
func (e *DatasetEngine) Run(ctx context.Context, keywords *models.KeywordCatalog, progress chan<- ProgressUpdate) (*DatasetResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if keywords == nil {
		return nil, fmt.Errorf("%w: keyword catalog is required", shared.ErrInvalidInput)
	}
	if err := keywords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	result := &DatasetResult{RunID: shared.GenerateID(), StartedAt: time.Now()}
	logger := shared.WithLogger(e.logger, "run", result.RunID)

	e.sendProgress(progress, authenticatingUpdate(e.catalog.Name()))
	if err := e.catalog.Authenticate(ctx); err != nil {
		return nil, &PhaseError{Phase: Authenticate, Key: e.catalog.Name(), Err: err}
	}
	e.sendProgress(progress, authenticatedUpdate(e.catalog.Name()))

	refs, failures, err := e.Discover(ctx, keywords, progress)
	result.Failures = append(result.Failures, failures...)
	if err != nil {
		return nil, err
	}
	result.Playlists = refs
	logger.Info("discovery complete", "phrases", keywords.Len(), "playlists", len(refs), "skipped", len(failures))

	set, failures, err := e.Enumerate(ctx, refs, progress)
	result.Failures = append(result.Failures, failures...)
	if err != nil {
		return nil, err
	}
	ids := set.IDs()
	result.Tracks = len(ids)
	logger.Info("enumeration complete", "tracks", len(ids), "skipped", len(failures))

	features, err := FetchBatched(ctx, ids, BatchOpts{
		Size:    e.opts.FeatureBatch,
		Workers: e.opts.FetchWorkers,
		Phase:   FetchFeatures,
		OnChunk: func(done, total int) { e.sendProgress(progress, batchUpdate(FetchFeatures, done, total)) },
	}, e.fetchFeatures)
	if err != nil {
		return nil, err
	}

	infos, err := FetchBatched(ctx, ids, BatchOpts{
		Size:    e.opts.InfoBatch,
		Workers: e.opts.FetchWorkers,
		Phase:   FetchInfo,
		OnChunk: func(done, total int) { e.sendProgress(progress, batchUpdate(FetchInfo, done, total)) },
	}, e.fetchInfo)
	if err != nil {
		return nil, err
	}

	result.Records = Join(features, NormalizeInfo(infos), set)
	result.LabelCounts = CountByLabel(result.Records)
	result.FinishedAt = time.Now()
	e.sendProgress(progress, joinedUpdate(len(result.Records), len(ids)))

	metrics.ObserveRun(result.FinishedAt.Sub(result.StartedAt), result.LabelCounts)
	logger.Info("run complete",
		"records", len(result.Records),
		"dropped", len(ids)-len(result.Records),
		"failures", len(result.Failures),
		"elapsed", shared.FormatDuration(result.FinishedAt.Sub(result.StartedAt)))

	return result, nil
}

func (e *DatasetEngine) fetchFeatures(ctx context.Context, ids []string) ([]*models.FeatureRecord, error) {
	ctx, cancel := e.taskContext(ctx)
	defer cancel()
	return e.catalog.AudioFeatures(ctx, ids)
}

func (e *DatasetEngine) fetchInfo(ctx context.Context, ids []string) ([]*models.InfoRecord, error) {
	ctx, cancel := e.taskContext(ctx)
	defer cancel()
	return e.catalog.SeveralTracks(ctx, ids)
}

// recordFailure logs and counts a skipped task.
func (e *DatasetEngine) recordFailure(err *PhaseError) {
	metrics.PhaseFailuresTotal.WithLabelValues(err.Phase.String()).Inc()
	e.logger.Warn("skipping failed task", "phase", err.Phase, "key", err.Key, "error", err.Err)
}
