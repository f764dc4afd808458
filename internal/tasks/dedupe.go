package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesync/internal/dedupe"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// Deduplicate removes every repeated occurrence of a track from target, keeping the earliest one.
//
// Removals go out in chunks with a pause between them. A chunk that still fails after retries is
// logged and left in place; the remaining chunks are still attempted.
func (r *Reconciler) Deduplicate(ctx context.Context, target models.Collection, progress chan<- ProgressUpdate) (*DedupeResult, error) {
	result, groups, err := r.plan(ctx, target, progress)
	if err != nil || len(groups) == 0 {
		return result, err
	}

	run := r.startRun(ctx, models.RunDedupe, result.Service, target.ID)
	result.RunID = run.ID()
	logger := shared.WithLogger(r.logger, "run", run.ID())

	chunks := dedupe.Chunk(result.Planned, r.chunkSize)
	status := models.RunFinished
	for i, chunk := range chunks {
		if i > 0 && r.chunkPause > 0 {
			if err := r.sleeper.Sleep(ctx, r.chunkPause); err != nil {
				status = models.RunFailed
				break
			}
		}

		r.sendProgress(progress, removeChunkUpdate(i+1, len(chunks), len(chunk)))
		if _, err := r.backoff.Run(ctx, func(ctx context.Context) error {
			return r.service.Remove(ctx, target, chunk)
		}); err != nil {
			logger.Error("Failed to remove duplicate entries", "chunk", i+1, "entries", len(chunk), "error", err)
			for _, e := range chunk {
				r.recordEvent(ctx, run, e.DisplayName, e.TrackID, models.OutcomeSkipped, err.Error())
			}
			continue
		}

		result.RemovedCount += len(chunk)
		for _, e := range chunk {
			r.recordEvent(ctx, run, e.DisplayName, e.TrackID, models.OutcomeRemoved, "")
		}
	}

	r.finishRun(ctx, run, status, models.Counters{
		Total:           len(result.Planned),
		DuplicateGroups: result.DuplicateGroupCount,
		Removed:         result.RemovedCount,
	})
	logger.Info("Deduplication complete", "groups", result.DuplicateGroupCount, "removed", result.RemovedCount)
	return result, nil
}

// PlanDeduplication reports what [Reconciler.Deduplicate] would remove without mutating anything.
func (r *Reconciler) PlanDeduplication(ctx context.Context, target models.Collection, progress chan<- ProgressUpdate) (*DedupeResult, error) {
	result, _, err := r.plan(ctx, target, progress)
	if result != nil {
		result.DryRun = true
	}
	return result, err
}

func (r *Reconciler) plan(ctx context.Context, target models.Collection, progress chan<- ProgressUpdate) (*DedupeResult, dedupe.Groups, error) {
	if err := r.requireService(); err != nil {
		return nil, nil, err
	}

	name := r.service.Name()
	result := &DedupeResult{Service: name, Collection: target.ID}

	if target.Kind == models.Favorites {
		r.resolver.FindDuplicates(models.PlaylistSnapshot{Collection: target})
		return result, nil, nil
	}

	r.sendProgress(progress, fetchTargetUpdate(name, target))

	var snapshot models.PlaylistSnapshot
	if _, err := r.backoff.Run(ctx, func(ctx context.Context) error {
		s, err := r.service.Snapshot(ctx, target)
		snapshot = s
		return err
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s collection %s: %w", name, target, err)
	}

	groups := r.resolver.FindDuplicates(snapshot)
	result.DuplicateGroupCount = len(groups)
	result.Planned = r.resolver.PlanRemovals(groups)
	r.sendProgress(progress, duplicatesFoundUpdate(len(groups), groups.Extra()))
	return result, groups, nil
}
