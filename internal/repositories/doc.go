// Package repositories implements SQLite persistence for run history.
//
// Key Implementations:
//   - [RunRepository] : Reconcile, dedupe and tagging runs with their summary counters
//   - [RunEventRepository] : Per-track outcomes of a run
//   - [RunRecorder] : Adapter that lets the orchestrator write history while it runs
//
// Runs support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
