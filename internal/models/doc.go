// Package models defines the entities that flow through a dataset collection run.
//
// The package contains three groups of types:
//
// 1. Inputs: the [KeywordCatalog] mapping mood labels to search phrases.
//
// 2. Catalog DTOs: lightweight structs decoded from the remote catalog
//   - [PlaylistSummary] : a playlist returned by keyword search
//   - [PlaylistItem] : one entry of a playlist, possibly without a track
//   - [FeatureRecord] : numeric audio attributes for one track
//   - [InfoRecord] : descriptive metadata (name, popularity) for one track
//
// 3. Outputs: [MergedRecord] rows carrying a label, and the persisted [Run] summary.
package models
