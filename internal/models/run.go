package models

import (
	"fmt"
	"time"
)

// RunKind names the operation a [Run] recorded.
type RunKind string

const (
	RunReconcile RunKind = "reconcile"
	RunDedupe    RunKind = "dedupe"
	RunTags      RunKind = "tags"
	RunRename    RunKind = "rename"
)

// RunStatus is the lifecycle state of a [Run].
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunFinished RunStatus = "finished"
	RunFailed   RunStatus = "failed"
)

// Outcome is the per-track result recorded in a run's event log.
type Outcome string

const (
	OutcomeAdded          Outcome = "added"
	OutcomeAlreadyPresent Outcome = "already_present"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeRemoved        Outcome = "removed"
	OutcomeFound          Outcome = "found"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeRenamed        Outcome = "renamed"
)

// Counters are the summary numbers a run reports.
type Counters struct {
	Total           int `json:"total"`
	Added           int `json:"added"`
	Skipped         int `json:"skipped"`
	AlreadyPresent  int `json:"already_present"`
	Found           int `json:"found"`
	NotFound        int `json:"not_found"`
	Renamed         int `json:"renamed"`
	DuplicateGroups int `json:"duplicate_groups"`
	Removed         int `json:"removed"`
}

// Run is a persisted record of one reconcile, dedupe or tagging invocation.
type Run struct {
	id         string
	sequence   int
	Kind       RunKind
	Service    string
	Collection string
	Status     RunStatus
	Counters   Counters
	StartedAt  time.Time
	FinishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewRun creates a running [Run] started now.
func NewRun(kind RunKind, service, collection string) *Run {
	now := time.Now().UTC()
	return &Run{
		Kind:       kind,
		Service:    service,
		Collection: collection,
		Status:     RunRunning,
		StartedAt:  now,
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestoreRun rebuilds a [Run] from stored columns.
func RestoreRun(id string, sequence int, createdAt, updatedAt time.Time) *Run {
	return &Run{id: id, sequence: sequence, createdAt: createdAt, updatedAt: updatedAt}
}

func (r *Run) ID() string { return r.id }
func (r *Run) Sequence() int { return r.sequence }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

func (r *Run) SetID(id string) { r.id = id }
func (r *Run) SetSequence(seq int) { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Finish marks the run complete with the given status.
func (r *Run) Finish(status RunStatus, counters Counters) {
	now := time.Now().UTC()
	r.Status = status
	r.Counters = counters
	r.FinishedAt = &now
	r.updatedAt = now
}

// Validate checks the run's required fields.
func (r *Run) Validate() error {
	switch r.Kind {
	case RunReconcile, RunDedupe, RunTags, RunRename:
	default:
		return fmt.Errorf("invalid run kind %q", r.Kind)
	}
	if r.Service == "" {
		return fmt.Errorf("run service is required")
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("run start time is required")
	}
	return nil
}

// RunEvent is one line of a run's outcome log.
type RunEvent struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	TrackID   string    `json:"track_id,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
