package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

const runColumns = `id, sequence, kind, service, collection, status,
	total, added, skipped, already_present, found, not_found, renamed, duplicate_groups, removed,
	started_at, finished_at, created_at, updated_at`

// ErrRunNotFound is returned when a run does not exist or was deleted.
var ErrRunNotFound = errors.New("run not found")

// RunRepository implements models.Repository[*models.Run].
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run, assigning an ID when it has none and always assigning a sequence.
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	run.SetSequence(sequence)

	c := run.Counters
	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		sequence,
		string(run.Kind),
		run.Service,
		run.Collection,
		string(run.Status),
		c.Total, c.Added, c.Skipped, c.AlreadyPresent, c.Found, c.NotFound, c.Renamed, c.DuplicateGroups, c.Removed,
		run.StartedAt,
		finishedAt(run),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, id))
}

// Update stores the status, counters and finish time of a run.
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	run.SetUpdatedAt(now)

	c := run.Counters
	query := `
		UPDATE runs
		SET status = ?, total = ?, added = ?, skipped = ?, already_present = ?, found = ?, not_found = ?,
			renamed = ?, duplicate_groups = ?, removed = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		c.Total, c.Added, c.Skipped, c.AlreadyPresent, c.Found, c.NotFound, c.Renamed, c.DuplicateGroups, c.Removed,
		finishedAt(run),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return requireRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return requireRow(result, id)
}

// List retrieves runs newest first. Supported criteria: "kind", "service" (string) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if service, ok := criteria["service"].(string); ok && service != "" {
		query += " AND service = ?"
		args = append(args, service)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		id, kind, service, collection, status string
		sequence                              int
		c                                     models.Counters
		startedAt, createdAt, updatedAt       time.Time
		finished                              sql.NullTime
	)

	err := row.Scan(&id, &sequence, &kind, &service, &collection, &status,
		&c.Total, &c.Added, &c.Skipped, &c.AlreadyPresent, &c.Found, &c.NotFound, &c.Renamed, &c.DuplicateGroups, &c.Removed,
		&startedAt, &finished, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.RestoreRun(id, sequence, createdAt, updatedAt)
	run.Kind = models.RunKind(kind)
	run.Service = service
	run.Collection = collection
	run.Status = models.RunStatus(status)
	run.Counters = c
	run.StartedAt = startedAt
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

func finishedAt(run *models.Run) any {
	if run.FinishedAt == nil {
		return nil
	}
	return *run.FinishedAt
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
