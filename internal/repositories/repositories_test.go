package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunReconcile, "Spotify", "liked")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create keeps an existing ID", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunDedupe, "YouTube Music", "PL1")
		run.SetID("run-1")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if _, err := repo.Get("run-1"); err != nil {
			t.Errorf("expected run-1 to exist, got %v", err)
		}
	})

	t.Run("Create rejects invalid runs", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunKind("export"), "Spotify", "")

		if err := repo.Create(run); err == nil {
			t.Fatal("expected validation error for unknown kind")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunReconcile, "Spotify", "p1")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Kind != models.RunReconcile || retrieved.Service != "Spotify" || retrieved.Collection != "p1" {
			t.Errorf("unexpected run: %+v", retrieved)
		}
		if retrieved.Status != models.RunRunning || retrieved.FinishedAt != nil {
			t.Errorf("expected a running run, got status %s", retrieved.Status)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("nonexistent-id"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunReconcile, "Spotify", "p1")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.Finish(models.RunFinished, models.Counters{Total: 3, Added: 1, Skipped: 1, AlreadyPresent: 1})
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		retrieved, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if retrieved.Status != models.RunFinished {
			t.Errorf("expected status finished, got %s", retrieved.Status)
		}
		if retrieved.Counters != run.Counters {
			t.Errorf("expected counters %+v, got %+v", run.Counters, retrieved.Counters)
		}
		if retrieved.FinishedAt == nil {
			t.Error("expected finish time to be stored")
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunReconcile, "Spotify", "p1")
		run.SetID("ghost")

		if err := repo.Update(run); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun(models.RunTags, "Discogs", "")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected deleted run to be hidden, got %v", err)
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected second delete to fail, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		runs := []*models.Run{
			models.NewRun(models.RunReconcile, "Spotify", "p1"),
			models.NewRun(models.RunDedupe, "Spotify", "p1"),
			models.NewRun(models.RunReconcile, "YouTube Music", "LM"),
		}
		for _, run := range runs {
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			expected []string
		}{
			{name: "all newest first", criteria: map[string]any{}, expected: []string{runs[2].ID(), runs[1].ID(), runs[0].ID()}},
			{name: "by kind", criteria: map[string]any{"kind": "reconcile"}, expected: []string{runs[2].ID(), runs[0].ID()}},
			{name: "by service", criteria: map[string]any{"service": "Spotify"}, expected: []string{runs[1].ID(), runs[0].ID()}},
			{name: "limit", criteria: map[string]any{"limit": 1}, expected: []string{runs[2].ID()}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				listed, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				if len(listed) != len(tt.expected) {
					t.Fatalf("expected %d runs, got %d", len(tt.expected), len(listed))
				}
				for i, id := range tt.expected {
					if listed[i].ID() != id {
						t.Errorf("expected run %d to be %s, got %s", i, id, listed[i].ID())
					}
				}
			})
		}
	})
}

func TestRunEventRepository(t *testing.T) {
	db := setupTestDB(t)
	runs := NewRunRepository(db)
	events := NewRunEventRepository(db)

	run := models.NewRun(models.RunReconcile, "Spotify", "p1")
	if err := runs.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	for _, e := range []models.RunEvent{
		{RunID: run.ID(), Source: "a.mp3", TrackID: "t1", Outcome: models.OutcomeAdded},
		{RunID: run.ID(), Source: "b.mp3", Outcome: models.OutcomeSkipped, Detail: "no match"},
		{RunID: run.ID(), Source: "c.mp3", TrackID: "t3", Outcome: models.OutcomeAdded},
	} {
		if err := events.Create(e); err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
	}

	t.Run("ListByRun", func(t *testing.T) {
		listed, err := events.ListByRun(run.ID(), "")
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(listed) != 3 || listed[1].Detail != "no match" || listed[0].CreatedAt.IsZero() {
			t.Errorf("unexpected events: %+v", listed)
		}
	})

	t.Run("ListByRun filtered", func(t *testing.T) {
		listed, err := events.ListByRun(run.ID(), models.OutcomeAdded)
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(listed) != 2 || listed[1].TrackID != "t3" {
			t.Errorf("unexpected events: %+v", listed)
		}
	})

	t.Run("CountByOutcome", func(t *testing.T) {
		counts, err := events.CountByOutcome(run.ID())
		if err != nil {
			t.Fatalf("failed to count events: %v", err)
		}
		if counts[models.OutcomeAdded] != 2 || counts[models.OutcomeSkipped] != 1 {
			t.Errorf("unexpected counts: %v", counts)
		}
	})

	t.Run("requires an existing run", func(t *testing.T) {
		if err := events.Create(models.RunEvent{RunID: "ghost", Outcome: models.OutcomeAdded}); err == nil {
			t.Error("expected foreign key error")
		}
		if err := events.Create(models.RunEvent{Outcome: models.OutcomeAdded}); err == nil {
			t.Error("expected error without run id")
		}
	})
}

func TestRunRecorder(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRunRecorder(db)
	ctx := context.Background()

	run := models.NewRun(models.RunDedupe, "Spotify", "p1")
	run.SetID(shared.GenerateID())
	if err := rec.StartRun(ctx, run); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	if err := rec.RecordEvent(ctx, models.RunEvent{RunID: run.ID(), TrackID: "t1", Outcome: models.OutcomeRemoved}); err != nil {
		t.Fatalf("failed to record event: %v", err)
	}

	run.Finish(models.RunFinished, models.Counters{DuplicateGroups: 1, Removed: 1})
	if err := rec.FinishRun(ctx, run); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	stored, err := NewRunRepository(db).Get(run.ID())
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if stored.Status != models.RunFinished || stored.Counters.Removed != 1 {
		t.Errorf("unexpected stored run: %+v", stored)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := rec.RecordEvent(cancelled, models.RunEvent{RunID: run.ID(), Outcome: models.OutcomeRemoved}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
