// Package ui implements the interactive terminal pieces of tunesync using bubbletea's Elm architecture.
//
//   - [Picker] : Full-screen candidate list implementing [matching.Confirmer].
//     enter picks the highlighted candidate, s or q skips the track, a picks the top candidate
//     for this and every following track.
//   - [ProgressModel] : Spinner view fed by a [tasks.ProgressUpdate] channel while a run executes.
//     Updates flow through the Msg union type.
//   - [RenderSummary] : lipgloss rendering of a finished run's counters and unhandled tracks.
package ui
