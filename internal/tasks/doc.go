// Package tasks orchestrates reconciliation runs against music services with real-time progress reporting.
//
// # Core Operations
//
// A [Reconciler] exposes four operations:
//
//  1. [Reconciler.Reconcile] : Add a batch of tracks to a playlist or favorites
//     - Fetches the target once and builds a [MembershipIndex]
//     - Searches each track, ranks candidates and confirms a pick
//     - Adds only tracks that are not yet members, pacing after every add
//
//  2. [Reconciler.Deduplicate] : Remove repeated occurrences from a playlist
//     - Keeps the earliest occurrence of every track
//     - Removes the rest in chunks of at most 100 entries
//
//  3. [Reconciler.UpdateTagsFromCatalog] : Fill genre, year and cover art of local files
//     - Looks each file up in the release catalog
//     - Merges under the configured overwrite policy and writes the tags back
//
//  4. [Reconciler.RenameFromTags] : Rename local files to "{artist} - {title}"
//
// # Retries
//
// Every remote call goes through one [retry.Backoff], so the delay reached while rate limited
// carries over to the next call of the run.
//
// # Progress Reporting
//
// All operations accept an optional channel for [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// When a [Recorder] is configured every run and per-track outcome is persisted.
// Recorder errors are logged and never fail the run.
package tasks
