// Package pkg provides the libraries behind edgepersist.
//
// # Overview
//
// Edgepersist measures how long the edges of a large directed graph survive
// across a series of snapshots (for example daily crawls of the web graph).
// One snapshot is the reference; every reference edge gets a counter of how
// many other snapshots contain it. The pkg directory is organized as:
//
//  1. [graph] - compressed sparse row snapshots and their binary codec
//  2. [catalog], [store] - which snapshots exist, and loading them from a
//     directory or an S3-compatible bucket
//  3. [index], [engine], [persist] - the reference edge index, the
//     vertex-parallel scan and the per-edge counters
//  4. [histogram], [export], [names] - reducing and publishing the counts
//  5. [pipeline] - orchestration of a complete run
//
// # Architecture
//
// The data flow of a run:
//
//	catalog (list, filter, sort, cap)
//	         ↓
//	store.LoadReference → index.Build → persist.NewCounters
//	         ↓
//	for each comparison: store.LoadComparison → persist.Pass → store.Unload
//	         ↓
//	histogram.Build, export.Exporter.Export, report
//
// # Quick Start
//
//	dir := store.NewDir("daily")
//	runner := pipeline.NewRunner(dir, dir, names.Identity{}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{OutDir: "out"})
package pkg
