// Package pipeline orchestrates file discovery, per-file pixelation, batch
// summary reporting, and the optional watch loop.
//
// Types:
//   - Entry, DiscoverOptions, RunStats
//
// Functions:
//   - Discover(root, opts) → []Entry, []error
//     Walk the tree, skip directories, hidden and temp files, and outputs of
//     earlier runs; sort deterministically.
//   - Run(ctx, cfg, log, transformer) → RunStats
//     discover → resolve output path → probe → plan → transform → stats.
//   - Watch(ctx, cfg, log, transformer) → error
//     Run once, then pixelate files as they appear.
package pipeline
