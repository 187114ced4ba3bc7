// Package flow builds multi-layer flow (Sankey) diagrams from tabular data.
//
// # Overview
//
// A flow diagram has one column of nodes per layer and one band per
// adjacent layer pair. Building one from patient records is a two-step
// pipeline:
//
//  1. [Group] partitions table rows by the combination of values in the
//     layer columns and counts each partition, dropping combinations below
//     a minimum count.
//  2. [Build] pools the distinct values of every layer into a single
//     label list and emits one [Edge] per grouped row and adjacent layer
//     pair, weighted by the row's count.
//
//	grouped, err := flow.Group(table, flow.LayerSpec{"Diagnosis", "Age", "Therapy"}, 2)
//	d, err := flow.Build(grouped, flow.LayerSpec{"Diagnosis", "Age", "Therapy"})
//
// Both steps work on any number of layers greater than or equal to two.
//
// # Labels
//
// Labels are pooled across all layers and deduplicated globally, in
// first-seen order: layer by layer, and within a layer in grouped-row order.
// A value that occurs in more than one layer (for example "Other" as both a
// diagnosis and a therapy) therefore maps to a single node that both layers
// link through. Renderers rely on this order, so identical input always
// yields an identical diagram.
//
// # Errors
//
// Layer lists are validated before any work is done. Fewer than two
// layers yields INSUFFICIENT_LAYERS, an absent column UNKNOWN_COLUMN, a
// repeated column DUPLICATE_LAYER, and a minimum count below one
// INVALID_THRESHOLD. An empty grouping is not an error: [Build] returns a
// diagram with no labels and no edges.
//
// # Concurrency
//
// All functions are pure. They never modify their inputs, and each call
// returns freshly allocated results.
package flow
