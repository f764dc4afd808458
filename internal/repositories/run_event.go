package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
)

// RunEventRepository stores the per-track outcome log of runs.
type RunEventRepository struct {
	db *sql.DB
}

// NewRunEventRepository creates a new RunEventRepository with the given database connection
func NewRunEventRepository(db *sql.DB) *RunEventRepository {
	return &RunEventRepository{db: db}
}

// Create appends an event. The run must exist.
func (r *RunEventRepository) Create(event models.RunEvent) error {
	if event.RunID == "" {
		return fmt.Errorf("run event requires a run id")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO run_events (run_id, source, track_id, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, event.RunID, event.Source, event.TrackID, string(event.Outcome), event.Detail, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert run event: %w", err)
	}
	return nil
}

// ListByRun returns the events of a run in insertion order, optionally filtered by outcome.
func (r *RunEventRepository) ListByRun(runID string, outcome models.Outcome) ([]models.RunEvent, error) {
	query := `
		SELECT run_id, source, track_id, outcome, detail, created_at
		FROM run_events
		WHERE run_id = ?
	`
	args := []any{runID}
	if outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(outcome))
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events: %w", err)
	}
	defer rows.Close()

	var events []models.RunEvent
	for rows.Next() {
		var (
			e       models.RunEvent
			outcome string
		)
		if err := rows.Scan(&e.RunID, &e.Source, &e.TrackID, &outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}
		e.Outcome = models.Outcome(outcome)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

// CountByOutcome tallies the events of a run by outcome.
func (r *RunEventRepository) CountByOutcome(runID string) (map[models.Outcome]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM run_events WHERE run_id = ? GROUP BY outcome`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count run events: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan run event count: %w", err)
		}
		counts[models.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}
