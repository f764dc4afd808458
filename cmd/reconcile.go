package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tagging"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/desertthunder/tunesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Reconcile adds the tracks of the source batch that the target collection is missing.
//
// The batch comes from the tags of local files (--from-dir) or from another playlist (--from-playlist).
func (r *Runner) Reconcile(ctx context.Context, cmd *cli.Command) error {
	fromDir := cmd.String("from-dir")
	fromPlaylist := cmd.String("from-playlist")
	switch {
	case fromDir == "" && fromPlaylist == "":
		return fmt.Errorf("%w: one of --from-dir or --from-playlist is required", shared.ErrMissingArgument)
	case fromDir != "" && fromPlaylist != "":
		return fmt.Errorf("%w: cannot specify both --from-dir and --from-playlist", shared.ErrInvalidArgument)
	}

	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}
	target, err := r.collection(ctx, cmd, svc, true)
	if err != nil {
		return err
	}

	autoFirst := cmd.Bool("yes") || r.config.Sync.AutoFirst
	confirm, err := r.confirmer(cmd.String("prompt"), autoFirst)
	if err != nil {
		return err
	}
	selector := matching.NewSelector(confirm, autoFirst, r.config.Sync.MaxMatches)

	rec, release := r.reconciler(svc, tasks.WithSelector(selector), tasks.WithQueryCleaning(cmd.Bool("clean")))
	defer release()

	var batch []models.TrackQuery
	if fromDir != "" {
		files, err := tagging.Scan(fromDir)
		if err != nil {
			return err
		}
		batch = rec.QueriesFromFiles(files)
	} else {
		batch, err = r.playlistBatch(ctx, cmd, fromPlaylist)
		if err != nil {
			return err
		}
	}

	if len(batch) == 0 {
		r.writePlain("No tracks to reconcile\n")
		return nil
	}
	r.logger.Info("reconciling", "service", svc.Name(), "collection", target.ID, "tracks", len(batch))

	var result *tasks.ReconcileResult
	title := fmt.Sprintf("Reconciling %d tracks into %s on %s", len(batch), target.ID, svc.Name())
	err = r.run(ctx, title, confirm == nil, func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = rec.Reconcile(ctx, batch, target, progress)
		return runErr
	})
	if err != nil {
		if result != nil && errors.Is(err, context.Canceled) {
			r.logger.Warn("reconciliation stopped by user", "processed", len(result.Outcomes), "tracks", len(batch))
			if reportErr := r.report(cmd, formatter.FromReconcile(result), result); reportErr != nil {
				r.logger.Error("failed to write partial report", "error", reportErr)
			}
		}
		return err
	}

	return r.report(cmd, formatter.FromReconcile(result), result)
}

// playlistBatch snapshots the source playlist and turns its entries into queries.
func (r *Runner) playlistBatch(ctx context.Context, cmd *cli.Command, id string) ([]models.TrackQuery, error) {
	name := cmd.String("from-service")
	if name == "" {
		name = cmd.String("service")
	}

	src, err := r.service(ctx, name)
	if err != nil {
		return nil, err
	}

	snapshot, err := src.Snapshot(ctx, models.ParseCollection(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s playlist %s: %w", src.Name(), id, err)
	}
	return tasks.QueriesFromSnapshot(snapshot), nil
}

// report prints the summary, then the raw result when --json is set, and writes the --report file.
func (r *Runner) report(cmd *cli.Command, report formatter.Report, raw any) error {
	if cmd.Bool("json") {
		if err := r.writeJSON(raw, true); err != nil {
			return err
		}
	} else {
		r.writePlain("%s\n", ui.RenderSummary(report))
	}

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(report, path); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
	}
	return nil
}
