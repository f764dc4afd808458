// Package models defines the value types exchanged between the reconciliation components and the persistent run records.
//
// Value types:
//   - [TrackQuery] : artist/title description of a source track
//   - [RemoteTrackCandidate] : one remote search result
//   - [MatchDecision] : selected id or skip
//   - [LocalTagSnapshot], [DiscoveredMetadata], [MergeResult], [FieldUpdates] : tagging inputs and outputs
//   - [Collection], [PlaylistSnapshot], [PlaylistEntry] : collection membership
//
// Persistent entities implement [Model] and are stored through [Repository]:
//   - [Run] : one reconcile, dedupe or tagging invocation with its counters
//   - [RunEvent] : per-track outcome inside a run
package models
