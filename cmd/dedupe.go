package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Dedupe removes repeated tracks from a playlist, or only lists them with --dry-run.
func (r *Runner) Dedupe(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}
	target, err := r.collection(ctx, cmd, svc, false)
	if err != nil {
		return err
	}
	if target.Kind == models.Favorites {
		r.logger.Warn("favorites collections are never deduplicated", "collection", target.ID)
	}

	rec, release := r.reconciler(svc)
	defer release()

	dryRun := cmd.Bool("dry-run")
	var result *tasks.DedupeResult
	title := fmt.Sprintf("Removing duplicates from %s on %s", target.ID, svc.Name())
	err = r.run(ctx, title, true, func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		if dryRun {
			result, runErr = rec.PlanDeduplication(ctx, target, progress)
		} else {
			result, runErr = rec.Deduplicate(ctx, target, progress)
		}
		return runErr
	})
	if err != nil {
		return err
	}

	return r.report(cmd, formatter.FromDedupe(result), result)
}
