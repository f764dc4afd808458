package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/dedupe"
	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tagging"
)

const (
	DefaultPacing     = 2 * time.Second
	DefaultChunkPause = 1 * time.Second
)

// Recorder persists run history. Errors are logged and otherwise ignored so that storage
// problems never interrupt a run.
type Recorder interface {
	StartRun(ctx context.Context, run *models.Run) error
	RecordEvent(ctx context.Context, event models.RunEvent) error
	FinishRun(ctx context.Context, run *models.Run) error
}

// TrackOutcome is the result of reconciling one query.
type TrackOutcome struct {
	Query   models.TrackQuery `json:"query"`
	Outcome models.Outcome    `json:"outcome"`
	TrackID string            `json:"track_id,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// ReconcileResult summarizes [Reconciler.Reconcile].
type ReconcileResult struct {
	RunID          string         `json:"run_id,omitempty"`
	Service        string         `json:"service"`
	Collection     string         `json:"collection"`
	Total          int            `json:"total"`
	Added          int            `json:"added"`
	Skipped        int            `json:"skipped"`
	AlreadyPresent int            `json:"already_present"`
	Outcomes       []TrackOutcome `json:"outcomes"`
}

// DedupeResult summarizes [Reconciler.Deduplicate].
type DedupeResult struct {
	RunID               string                 `json:"run_id,omitempty"`
	Service             string                 `json:"service"`
	Collection          string                 `json:"collection"`
	DuplicateGroupCount int                    `json:"duplicate_group_count"`
	RemovedCount        int                    `json:"removed_count"`
	Planned             []models.PlaylistEntry `json:"planned"`
	DryRun              bool                   `json:"dry_run"`
}

// FileOutcome is the result of tagging or renaming one file.
type FileOutcome struct {
	Path    string             `json:"path"`
	Outcome models.Outcome     `json:"outcome"`
	Merge   models.MergeResult `json:"merge"`
	NewPath string             `json:"new_path,omitempty"`
	Detail  string             `json:"detail,omitempty"`
}

// TagUpdateResult summarizes [Reconciler.UpdateTagsFromCatalog] and [Reconciler.RenameFromTags].
type TagUpdateResult struct {
	RunID        string        `json:"run_id,omitempty"`
	Total        int           `json:"total"`
	Found        int           `json:"found"`
	NotFound     int           `json:"not_found"`
	Skipped      int           `json:"skipped"`
	Renamed      int           `json:"renamed"`
	GenreUpdated int           `json:"genre_updated"`
	YearUpdated  int           `json:"year_updated"`
	CoverUpdated int           `json:"cover_updated"`
	Files        []FileOutcome `json:"files"`
}

// TagConfig controls how catalog metadata is applied to files.
type TagConfig struct {
	Policy     tagging.Policy
	EmbedCover bool
	Rename     bool
}

// TagConfigFrom converts the [tags] configuration section.
func TagConfigFrom(c shared.TagsConfig) TagConfig {
	return TagConfig{
		Policy: tagging.Policy{
			OverwriteGenre: c.OverwriteGenre,
			OverwriteYear:  c.OverwriteYear,
			OverwriteCover: c.OverwriteCover,
		},
		EmbedCover: c.EmbedCover,
		Rename:     c.RenameFile,
	}
}

// Reconciler drives batches against one service. It is single threaded: one remote
// mutation is in flight at a time and the selector's auto-first switch lasts for the
// Reconciler's lifetime.
type Reconciler struct {
	service    services.Service
	releases   services.ReleaseCatalog
	ranker     *matching.Ranker
	selector   *matching.Selector
	resolver   *dedupe.Resolver
	backoff    *retry.Backoff
	sleeper    retry.Sleeper
	recorder   Recorder
	logger     *log.Logger
	pacing     time.Duration
	chunkSize  int
	chunkPause time.Duration
	clean      bool
}

// Option configures a [Reconciler].
type Option func(*Reconciler)

// WithSelector sets how ranked candidates are confirmed. The default takes the top candidate.
func WithSelector(s *matching.Selector) Option {
	return func(r *Reconciler) { r.selector = s }
}

// WithBackoff sets the retry policy used for every remote call.
func WithBackoff(b *retry.Backoff) Option {
	return func(r *Reconciler) { r.backoff = b }
}

// WithSleeper sets the clock used for pacing and backoff.
func WithSleeper(s retry.Sleeper) Option {
	return func(r *Reconciler) { r.sleeper = s }
}

// WithRecorder enables run history.
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) { r.recorder = rec }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithReleaseCatalog sets the catalog used for tagging.
func WithReleaseCatalog(c services.ReleaseCatalog) Option {
	return func(r *Reconciler) { r.releases = c }
}

// WithPacing sets the pause after every successful mutation.
func WithPacing(d time.Duration) Option {
	return func(r *Reconciler) { r.pacing = d }
}

// WithChunking sets the removal batch size and the pause between batches.
func WithChunking(size int, pause time.Duration) Option {
	return func(r *Reconciler) {
		r.chunkSize = size
		r.chunkPause = pause
	}
}

// WithQueryCleaning toggles [matching.CleanQuery] before searching.
func WithQueryCleaning(on bool) Option {
	return func(r *Reconciler) { r.clean = on }
}

// WithSyncConfig applies the [sync] configuration section.
func WithSyncConfig(c shared.SyncConfig) Option {
	return func(r *Reconciler) {
		r.backoff = retry.New(c.MaxRetries, c.InitialDelay())
		r.pacing = c.Pacing()
		r.chunkSize = c.ChunkSize
		r.chunkPause = c.ChunkPause()
	}
}

// NewReconciler creates a [Reconciler] for svc, which may be nil for tagging only use.
func NewReconciler(svc services.Service, opts ...Option) *Reconciler {
	r := &Reconciler{
		service:    svc,
		ranker:     matching.NewRanker(),
		pacing:     DefaultPacing,
		chunkSize:  dedupe.DefaultChunkSize,
		chunkPause: DefaultChunkPause,
		clean:      true,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	if r.sleeper == nil {
		r.sleeper = retry.TimerSleeper{}
	}
	if r.selector == nil {
		r.selector = matching.NewSelector(nil, true, 0)
	}
	if r.backoff == nil {
		r.backoff = retry.New(retry.DefaultMaxRetries, retry.DefaultInitialDelay)
	}
	r.backoff.Sleeper = r.sleeper
	r.backoff.Logger = r.logger
	if svc != nil {
		r.backoff.Classify = svc.Classify
	}
	r.resolver = dedupe.NewResolver(r.logger)
	return r
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (r *Reconciler) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func (r *Reconciler) requireService() error {
	if r.service == nil {
		return fmt.Errorf("%w: no streaming service configured", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Reconciler) startRun(ctx context.Context, kind models.RunKind, service, collection string) *models.Run {
	run := models.NewRun(kind, service, collection)
	run.SetID(shared.GenerateID())
	if r.recorder != nil {
		if err := r.recorder.StartRun(ctx, run); err != nil {
			r.logger.Warn("Failed to record run start", "error", err)
		}
	}
	return run
}

func (r *Reconciler) recordEvent(ctx context.Context, run *models.Run, source, trackID string, outcome models.Outcome, detail string) {
	if r.recorder == nil {
		return
	}
	event := models.RunEvent{
		RunID:     run.ID(),
		Source:    source,
		TrackID:   trackID,
		Outcome:   outcome,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.recorder.RecordEvent(ctx, event); err != nil {
		r.logger.Warn("Failed to record run event", "error", err)
	}
}

func (r *Reconciler) finishRun(ctx context.Context, run *models.Run, status models.RunStatus, counters models.Counters) {
	run.Finish(status, counters)
	if r.recorder == nil {
		return
	}
	// The run's own context may already be cancelled; history is still worth writing.
	if err := r.recorder.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("Failed to record run finish", "error", err)
	}
}
