package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tagging"
)

// UpdateTagsFromCatalog fills genre, year and cover art of local files from the release catalog.
//
// Files are handled independently: unreadable files and files without artist and title are
// skipped, lookups that fail count as not found, and neither stops the run.
func (r *Reconciler) UpdateTagsFromCatalog(ctx context.Context, files []string, cfg TagConfig, progress chan<- ProgressUpdate) (*TagUpdateResult, error) {
	if r.releases == nil {
		return nil, fmt.Errorf("%w: no release catalog configured", shared.ErrServiceUnavailable)
	}

	backoff := r.releaseBackoff()
	result := &TagUpdateResult{Total: len(files), Files: make([]FileOutcome, 0, len(files))}
	run := r.startRun(ctx, models.RunTags, "Discogs", "")
	result.RunID = run.ID()
	logger := shared.WithLogger(r.logger, "run", run.ID())
	logger.Info("Updating tags", "files", len(files), "embed_cover", cfg.EmbedCover, "rename", cfg.Rename)

	status := models.RunFinished
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			status = models.RunFailed
			break
		}

		r.sendProgress(progress, fileUpdate(FetchReleases, i+1, len(files), path, "looking up release"))
		outcome := r.tagOne(ctx, backoff, path, cfg)

		switch outcome.Outcome {
		case models.OutcomeFound:
			result.Found++
		case models.OutcomeNotFound:
			result.NotFound++
		default:
			result.Skipped++
		}
		if outcome.Merge.GenreUpdated {
			result.GenreUpdated++
		}
		if outcome.Merge.YearUpdated {
			result.YearUpdated++
		}
		if outcome.Merge.CoverUpdated {
			result.CoverUpdated++
		}
		if outcome.NewPath != "" {
			result.Renamed++
		}

		if outcome.Detail != "" {
			logger.Warn("File not updated", "path", path, "outcome", outcome.Outcome, "reason", outcome.Detail)
		}
		result.Files = append(result.Files, outcome)
		r.recordEvent(ctx, run, path, "", outcome.Outcome, outcome.Detail)
		r.sendProgress(progress, fileUpdate(WriteTags, i+1, len(files), path, string(outcome.Outcome)))
	}

	r.finishRun(ctx, run, status, models.Counters{
		Total:    result.Total,
		Found:    result.Found,
		NotFound: result.NotFound,
		Skipped:  result.Skipped,
		Renamed:  result.Renamed,
	})
	logger.Info("Tag update complete", "found", result.Found, "not_found", result.NotFound, "renamed", result.Renamed)
	return result, nil
}

func (r *Reconciler) tagOne(ctx context.Context, backoff *retry.Backoff, path string, cfg TagConfig) FileOutcome {
	out := FileOutcome{Path: path, Outcome: models.OutcomeSkipped}

	local, err := tagging.ReadTags(path)
	if err != nil {
		out.Detail = err.Error()
		return out
	}

	artist, title := strings.TrimSpace(local.Artist), strings.TrimSpace(local.Title)
	if artist == "" && title == "" {
		out.Detail = "missing artist and title"
		return out
	}

	var discovered models.DiscoveredMetadata
	if _, err := backoff.Run(ctx, func(ctx context.Context) error {
		md, err := r.releases.FetchRelease(ctx, artist, title)
		discovered = md
		return err
	}); err != nil || discovered.Empty() {
		out.Outcome = models.OutcomeNotFound
		if err != nil {
			out.Detail = err.Error()
		}
		return out
	}

	out.Outcome = models.OutcomeFound
	if !cfg.EmbedCover {
		discovered.CoverURI = ""
	}

	merge, updates := tagging.Merge(local, discovered, cfg.Policy)

	var cover tagging.Cover
	if merge.CoverUpdated {
		if _, err := backoff.Run(ctx, func(ctx context.Context) error {
			data, mime, err := r.releases.FetchCover(ctx, updates.CoverURI)
			cover = tagging.Cover{Data: data, MimeType: mime}
			return err
		}); err != nil || cover.Empty() {
			r.logger.Warn("Failed to download cover", "path", path, "uri", updates.CoverURI, "error", err)
			merge.CoverUpdated = false
			updates.CoverURI = ""
			cover = tagging.Cover{}
		}
	}

	if merge.Any() {
		if err := tagging.WriteTags(path, updates, cover); err != nil {
			out.Outcome = models.OutcomeSkipped
			out.Detail = err.Error()
			return out
		}
	}
	out.Merge = merge

	if cfg.Rename {
		newPath, renamed, err := tagging.Rename(path, local.Artist, local.Title)
		if err != nil {
			r.logger.Warn("Failed to rename file", "path", path, "error", err)
		} else if renamed {
			out.NewPath = newPath
		}
	}
	return out
}

// RenameFromTags renames every file to "{artist} - {title}" using its own tags.
func (r *Reconciler) RenameFromTags(ctx context.Context, files []string, progress chan<- ProgressUpdate) (*TagUpdateResult, error) {
	result := &TagUpdateResult{Total: len(files), Files: make([]FileOutcome, 0, len(files))}
	run := r.startRun(ctx, models.RunRename, "local", "")
	result.RunID = run.ID()

	status := models.RunFinished
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			status = models.RunFailed
			break
		}

		out := FileOutcome{Path: path, Outcome: models.OutcomeSkipped}
		if local, err := tagging.ReadTags(path); err != nil {
			out.Detail = err.Error()
		} else if newPath, renamed, err := tagging.Rename(path, local.Artist, local.Title); err != nil {
			out.Detail = err.Error()
		} else if renamed {
			out.Outcome = models.OutcomeRenamed
			out.NewPath = newPath
			result.Renamed++
		}

		if out.Outcome == models.OutcomeSkipped {
			result.Skipped++
		}
		result.Files = append(result.Files, out)
		r.recordEvent(ctx, run, path, "", out.Outcome, out.Detail)
		r.sendProgress(progress, fileUpdate(RenameFiles, i+1, len(files), path, string(out.Outcome)))
	}

	r.finishRun(ctx, run, status, models.Counters{Total: result.Total, Renamed: result.Renamed, Skipped: result.Skipped})
	r.logger.Info("Rename complete", "renamed", result.Renamed, "skipped", result.Skipped)
	return result, nil
}

// releaseBackoff shares the retry limits of the streaming backoff but classifies with the
// catalog's own rules.
func (r *Reconciler) releaseBackoff() *retry.Backoff {
	classify := retry.ClassifyShared
	if c, ok := r.releases.(interface{ Classify(error) retry.Class }); ok {
		classify = c.Classify
	}
	return &retry.Backoff{
		MaxRetries: r.backoff.MaxRetries,
		Delay:      r.backoff.Delay,
		Sleeper:    r.sleeper,
		Classify:   classify,
		Logger:     r.logger,
	}
}
