// Package tasks builds mood-labeled audio feature datasets from a remote music catalog.
//
// # Pipeline
//
// [DatasetEngine.Run] drives five phases against a [services.Catalog]:
//
//  1. Discovery: every (label, phrase) pair of the keyword catalog is searched concurrently.
//     Playlists found by several phrases keep the first (label, phrase) in catalog order.
//  2. Enumeration: every discovered playlist is listed by a bounded worker pool. Track ids are
//     claimed in a shared [TrackSet]; the first claim of an id fixes its label.
//  3. Feature fetch: claimed ids are sent in batches of at most 100 via [FetchBatched].
//  4. Info fetch: the same ids in batches of at most 50. Missing entries normalize to an empty
//     [models.InfoRecord] so positions stay aligned.
//  5. Join: [Join] inner-joins features and info on track id and attaches each id's label.
//
// # Concurrency
//
// Discovery and batched fetches use an errgroup with a concurrency limit; enumeration uses a
// jobs channel drained by worker goroutines. In the default mode the label of a track found by
// several labels depends on which playlist listing finishes first. [EngineOpts.Deterministic]
// defers claiming until every listing is in and then claims in discovery order.
//
// # Failures
//
// Remote failures are wrapped in [PhaseError]. With [FailFast] the first failure cancels the
// phase and aborts the run. With [Skip], failed searches and playlist listings are recorded in
// [DatasetResult.Failures] and the run continues; authentication failures and batch fetch
// failures always abort.
//
// # Progress Reporting
//
// Every phase reports [ProgressUpdate] values on an optional channel. Sends never block: when
// the channel is full the update is dropped.
package tasks
