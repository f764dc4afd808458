package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/repositories"
	"github.com/desertthunder/tunesync/internal/ui"
	"github.com/urfave/cli/v3"
)

type runView struct {
	ID         string           `json:"id"`
	Sequence   int              `json:"sequence"`
	Kind       models.RunKind   `json:"kind"`
	Service    string           `json:"service"`
	Collection string           `json:"collection,omitempty"`
	Status     models.RunStatus `json:"status"`
	Counters   models.Counters  `json:"counters"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		Kind:       run.Kind,
		Service:    run.Service,
		Collection: run.Collection,
		Status:     run.Status,
		Counters:   run.Counters,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

// History lists recorded runs newest first, or the event log of one run with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, release, err := r.database()
	if err != nil {
		return err
	}
	defer release()

	if id := cmd.String("run"); id != "" {
		return r.runEvents(cmd, db, id)
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"kind":    cmd.String("kind"),
		"service": cmd.String("service"),
		"limit":   int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, true)
	}

	if len(views) == 0 {
		return r.writePlain("No runs recorded\n")
	}

	r.writePlainHeader(ui.Styles().Title("Run history"))
	for _, v := range views {
		r.writePlain("#%-4d %-9s %-14s %-24s %-8s %s\n",
			v.Sequence, v.Kind, v.Service, v.Collection, v.Status, v.StartedAt.Local().Format(time.DateTime))
		r.writePlain("      %s  %s\n", ui.Styles().Help(v.ID), summarize(v.Kind, v.Counters))
	}
	return nil
}

func (r *Runner) runEvents(cmd *cli.Command, db *sql.DB, id string) error {
	run, err := repositories.NewRunRepository(db).Get(id)
	if err != nil {
		return err
	}
	events, err := repositories.NewRunEventRepository(db).ListByRun(id, "")
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Run    runView           `json:"run"`
			Events []models.RunEvent `json:"events"`
		}{newRunView(run), events}, true)
	}

	v := newRunView(run)
	r.writePlainHeader(ui.Styles().Title(fmt.Sprintf("Run #%d %s %s", v.Sequence, v.Kind, v.Service)))
	r.writePlain("%s\n\n", summarize(v.Kind, v.Counters))
	for _, e := range events {
		line := fmt.Sprintf("%-16s %s", e.Outcome, e.Source)
		if e.TrackID != "" {
			line += " [" + e.TrackID + "]"
		}
		if e.Detail != "" {
			line += ui.Styles().Help(" (" + e.Detail + ")")
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// summarize renders the counters relevant to a run kind.
func summarize(kind models.RunKind, c models.Counters) string {
	switch kind {
	case models.RunReconcile:
		return fmt.Sprintf("total %d, added %d, already present %d, skipped %d", c.Total, c.Added, c.AlreadyPresent, c.Skipped)
	case models.RunDedupe:
		return fmt.Sprintf("duplicate groups %d, removed %d", c.DuplicateGroups, c.Removed)
	case models.RunTags:
		return fmt.Sprintf("total %d, found %d, not found %d, skipped %d, renamed %d", c.Total, c.Found, c.NotFound, c.Skipped, c.Renamed)
	default:
		return fmt.Sprintf("total %d, renamed %d, skipped %d", c.Total, c.Renamed, c.Skipped)
	}
}
