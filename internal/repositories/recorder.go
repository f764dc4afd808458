package repositories

import (
	"context"
	"database/sql"

	"github.com/desertthunder/tunesync/internal/models"
)

// RunRecorder implements tasks.Recorder using [RunRepository] and [RunEventRepository].
type RunRecorder struct {
	runs   *RunRepository
	events *RunEventRepository
}

// NewRunRecorder creates a RunRecorder over db.
func NewRunRecorder(db *sql.DB) *RunRecorder {
	return &RunRecorder{runs: NewRunRepository(db), events: NewRunEventRepository(db)}
}

// StartRun persists a new run.
func (a *RunRecorder) StartRun(ctx context.Context, run *models.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.runs.Create(run)
}

// RecordEvent appends one outcome to the run's log.
func (a *RunRecorder) RecordEvent(ctx context.Context, event models.RunEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.events.Create(event)
}

// FinishRun stores the final status and counters.
func (a *RunRecorder) FinishRun(ctx context.Context, run *models.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.runs.Update(run)
}
