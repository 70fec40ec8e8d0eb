// Package ui implements the `collect --tui` progress view using bubbletea's Elm architecture.
//
// The TUI moves through three views:
//  1. [KeywordsView] : Review the keyword catalog before collecting
//  2. [CollectView] : Per-phase status with a spinner and progress bar
//  3. [ResultView] : Record counts per mood and any skipped tasks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the DatasetEngine, which never blocks on a slow renderer.
package ui
