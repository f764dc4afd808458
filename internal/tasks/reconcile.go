package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tagging"
)

// Reconcile adds every query of batch to target unless it is already present.
//
// The target is fetched once up front; a failure there is returned. Every per-track failure
// (no candidates, search errors, exhausted retries, declined confirmation) is counted as a skip
// and the run continues. Cancelling a confirmation stops the run: the partial result is
// returned with the cancellation error.
func (r *Reconciler) Reconcile(ctx context.Context, batch []models.TrackQuery, target models.Collection, progress chan<- ProgressUpdate) (*ReconcileResult, error) {
	if err := r.requireService(); err != nil {
		return nil, err
	}

	name := r.service.Name()
	result := &ReconcileResult{
		Service:    name,
		Collection: target.ID,
		Total:      len(batch),
		Outcomes:   make([]TrackOutcome, 0, len(batch)),
	}

	r.sendProgress(progress, fetchTargetUpdate(name, target))

	var snapshot models.PlaylistSnapshot
	if _, err := r.backoff.Run(ctx, func(ctx context.Context) error {
		s, err := r.service.Snapshot(ctx, target)
		snapshot = s
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch %s collection %s: %w", name, target, err)
	}

	index := NewMembershipIndex(snapshot)
	r.sendProgress(progress, indexBuiltUpdate(snapshot))

	run := r.startRun(ctx, models.RunReconcile, name, target.ID)
	result.RunID = run.ID()
	logger := shared.WithLogger(r.logger, "run", run.ID())
	logger.Info("Reconciling", "service", name, "collection", target.ID, "tracks", len(batch), "present", index.Len())

	status := models.RunFinished
	var stopErr error
	for i, query := range batch {
		if err := ctx.Err(); err != nil {
			logger.Warn("Reconciliation cancelled", "processed", i, "total", len(batch))
			status = models.RunFailed
			break
		}

		r.sendProgress(progress, searchTrackUpdate(i+1, len(batch), query))
		outcome, err := r.reconcileOne(ctx, query, target, index)
		if err != nil {
			logger.Warn("Reconciliation cancelled at confirmation", "processed", i, "total", len(batch))
			status = models.RunFailed
			stopErr = fmt.Errorf("reconciliation stopped at %s: %w", query.Label(), err)
			break
		}

		switch outcome.Outcome {
		case models.OutcomeAdded:
			result.Added++
		case models.OutcomeAlreadyPresent:
			result.AlreadyPresent++
		default:
			result.Skipped++
		}

		if outcome.Outcome == models.OutcomeSkipped {
			logger.Warn("Skipped track", "track", query.Label(), "reason", outcome.Detail)
		} else {
			logger.Debug("Track reconciled", "track", query.Label(), "outcome", outcome.Outcome, "id", outcome.TrackID)
		}

		result.Outcomes = append(result.Outcomes, outcome)
		r.recordEvent(ctx, run, query.Label(), outcome.TrackID, outcome.Outcome, outcome.Detail)
		r.sendProgress(progress, trackOutcomeUpdate(i+1, len(batch), outcome))
	}

	r.finishRun(ctx, run, status, models.Counters{
		Total:          result.Total,
		Added:          result.Added,
		Skipped:        result.Skipped,
		AlreadyPresent: result.AlreadyPresent,
	})

	logger.Info("Reconciliation complete", "added", result.Added, "present", result.AlreadyPresent, "skipped", result.Skipped)
	return result, stopErr
}

// reconcileOne only returns an error when the user cancelled the confirmation.
func (r *Reconciler) reconcileOne(ctx context.Context, query models.TrackQuery, target models.Collection, index *MembershipIndex) (TrackOutcome, error) {
	skip := func(detail string) TrackOutcome {
		return TrackOutcome{Query: query, Outcome: models.OutcomeSkipped, Detail: detail}
	}

	if !query.Complete() {
		return skip("missing artist or title"), nil
	}

	search := query
	if r.clean {
		search = matching.CleanQuery(query)
	}

	var candidates []models.RemoteTrackCandidate
	if _, err := r.backoff.Run(ctx, func(ctx context.Context) error {
		c, err := r.service.Search(ctx, search)
		candidates = c
		return err
	}); err != nil {
		return skip(fmt.Sprintf("search failed: %v", err)), nil
	}

	ranked := r.ranker.Rank(search, candidates)
	if len(ranked) == 0 {
		return skip(shared.ErrNoMatch.Error()), nil
	}

	decision, err := r.selector.Decide(ctx, query, ranked)
	if err != nil {
		return skip("confirmation cancelled"), err
	}
	if decision.Skipped || decision.SelectedID == "" {
		return skip("no candidate selected"), nil
	}

	id := decision.SelectedID
	if index.Contains(id) {
		return TrackOutcome{Query: query, Outcome: models.OutcomeAlreadyPresent, TrackID: id}, nil
	}

	if _, err := r.backoff.Run(ctx, func(ctx context.Context) error {
		return r.service.Add(ctx, target, id)
	}); err != nil {
		o := skip(fmt.Sprintf("add failed: %v", err))
		o.TrackID = id
		return o, nil
	}

	index.Add(id)
	if r.pacing > 0 {
		_ = r.sleeper.Sleep(ctx, r.pacing)
	}
	return TrackOutcome{Query: query, Outcome: models.OutcomeAdded, TrackID: id}, nil
}

// QueriesFromSnapshot turns the entries of a source collection into queries.
func QueriesFromSnapshot(snapshot models.PlaylistSnapshot) []models.TrackQuery {
	queries := make([]models.TrackQuery, 0, len(snapshot.Entries))
	for _, e := range snapshot.Entries {
		queries = append(queries, e.Query())
	}
	return queries
}

// QueriesFromFiles reads the tags of every file into queries.
//
// Unreadable or unsupported files become queries without artist and title, so that they
// are reported as skipped rather than silently dropped.
func (r *Reconciler) QueriesFromFiles(files []string) []models.TrackQuery {
	queries := make([]models.TrackQuery, 0, len(files))
	for _, path := range files {
		q := models.TrackQuery{SourceLabel: path}
		tags, err := tagging.ReadTags(path)
		if err != nil {
			r.logger.Warn("Failed to read tags", "path", path, "error", err)
		} else {
			q.Artist = strings.TrimSpace(tags.Artist)
			q.Title = strings.TrimSpace(tags.Title)
		}
		queries = append(queries, q)
	}
	return queries
}
