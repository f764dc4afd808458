package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/shared"
)

// MockService is an in-memory streaming service. Collections keep their entries in order and
// Add/Remove mutate them, so repeated runs observe earlier changes.
type MockService struct {
	mu sync.Mutex

	NameValue string

	// Results maps [shared.NormalizeTrackKey] of a query to its search results.
	Results map[string][]models.RemoteTrackCandidate

	// SearchErrs and AddErrs are consumed one per call before the call is attempted.
	SearchErrs []error
	AddErrs    []error
	RemoveErrs []error

	SnapshotErr error

	Collections map[string][]models.PlaylistEntry
	Library     []models.PlaylistSummary
	PlaylistErr error

	Searches  []models.TrackQuery
	Snapshots int
	Added     []string
	Removed   [][]models.PlaylistEntry
}

// NewMockService creates an empty [MockService].
func NewMockService(name string) *MockService {
	return &MockService{
		NameValue:   name,
		Results:     make(map[string][]models.RemoteTrackCandidate),
		Collections: make(map[string][]models.PlaylistEntry),
	}
}

// SetResults registers search results for a title and artist.
func (m *MockService) SetResults(title, artist string, results ...models.RemoteTrackCandidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[shared.NormalizeTrackKey(title, artist)] = results
}

// SetEntries replaces the entries of a collection, numbering their positions.
func (m *MockService) SetEntries(collectionID string, entries ...models.PlaylistEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range entries {
		entries[i].Position = i
	}
	m.Collections[collectionID] = entries
}

func (m *MockService) Name() string { return m.NameValue }

func (m *MockService) Classify(err error) retry.Class { return retry.ClassifyShared(err) }

func (m *MockService) Search(ctx context.Context, q models.TrackQuery) ([]models.RemoteTrackCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Searches = append(m.Searches, q)
	if err := pop(&m.SearchErrs); err != nil {
		return nil, err
	}
	return m.Results[shared.NormalizeTrackKey(q.Title, q.Artist)], nil
}

func (m *MockService) Snapshot(ctx context.Context, c models.Collection) (models.PlaylistSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Snapshots++
	if m.SnapshotErr != nil {
		return models.PlaylistSnapshot{}, m.SnapshotErr
	}

	entries := append([]models.PlaylistEntry(nil), m.Collections[c.ID]...)
	return models.PlaylistSnapshot{Collection: c, Entries: entries}, nil
}

func (m *MockService) Add(ctx context.Context, c models.Collection, trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.AddErrs); err != nil {
		return err
	}

	entries := m.Collections[c.ID]
	m.Collections[c.ID] = append(entries, models.PlaylistEntry{
		TrackID:  trackID,
		AddedAt:  time.Now(),
		Position: len(entries),
	})
	m.Added = append(m.Added, trackID)
	return nil
}

func (m *MockService) Remove(ctx context.Context, c models.Collection, removals []models.PlaylistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := pop(&m.RemoveErrs); err != nil {
		return err
	}
	if len(removals) > 100 {
		return errors.New("too many entries in one removal")
	}

	drop := make(map[int]bool, len(removals))
	for _, r := range removals {
		drop[r.Position] = true
	}

	var kept []models.PlaylistEntry
	for _, e := range m.Collections[c.ID] {
		if !drop[e.Position] {
			kept = append(kept, e)
		}
	}
	m.Collections[c.ID] = kept
	m.Removed = append(m.Removed, removals)
	return nil
}

func (m *MockService) Playlists(ctx context.Context) ([]models.PlaylistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return append([]models.PlaylistSummary(nil), m.Library...), nil
}

// CreatePlaylist appends an empty playlist with a sequential id to the library.
func (m *MockService) CreatePlaylist(ctx context.Context, name, description string, public bool) (models.PlaylistSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PlaylistErr != nil {
		return models.PlaylistSummary{}, m.PlaylistErr
	}
	p := models.PlaylistSummary{
		ID:          fmt.Sprintf("created-%d", len(m.Library)+1),
		Name:        name,
		Description: description,
		Public:      public,
	}
	m.Library = append(m.Library, p)
	m.Collections[p.ID] = nil
	return p, nil
}

// MockReleaseCatalog serves release metadata from a map keyed by [shared.NormalizeTrackKey].
type MockReleaseCatalog struct {
	Releases  map[string]models.DiscoveredMetadata
	Errs      []error
	Cover     []byte
	CoverMime string
	CoverErr  error

	Fetches      int
	CoverFetches int
}

// NewMockReleaseCatalog creates an empty [MockReleaseCatalog].
func NewMockReleaseCatalog() *MockReleaseCatalog {
	return &MockReleaseCatalog{Releases: make(map[string]models.DiscoveredMetadata)}
}

// Set registers metadata for a title and artist.
func (m *MockReleaseCatalog) Set(title, artist string, md models.DiscoveredMetadata) {
	m.Releases[shared.NormalizeTrackKey(title, artist)] = md
}

func (m *MockReleaseCatalog) FetchRelease(ctx context.Context, artist, title string) (models.DiscoveredMetadata, error) {
	m.Fetches++
	if err := pop(&m.Errs); err != nil {
		return models.DiscoveredMetadata{}, err
	}

	md, ok := m.Releases[shared.NormalizeTrackKey(title, artist)]
	if !ok {
		return models.DiscoveredMetadata{}, shared.ErrNoMatch
	}
	return md, nil
}

func (m *MockReleaseCatalog) FetchCover(ctx context.Context, uri string) ([]byte, string, error) {
	m.CoverFetches++
	if m.CoverErr != nil {
		return nil, "", m.CoverErr
	}
	return m.Cover, m.CoverMime, nil
}

// RecordingSleeper records requested durations and returns immediately.
type RecordingSleeper struct {
	mu    sync.Mutex
	Slept []time.Duration
}

func (s *RecordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Slept = append(s.Slept, d)
	return ctx.Err()
}

// Total returns the sum of all recorded sleeps.
func (s *RecordingSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.Slept {
		total += d
	}
	return total
}

// ScriptedConfirmer answers confirmations from a fixed script, skipping once it runs out.
type ScriptedConfirmer struct {
	Answers []matching.Choice
	Calls   int
	Shown   [][]models.RemoteTrackCandidate
}

func (s *ScriptedConfirmer) Confirm(ctx context.Context, q models.TrackQuery, candidates []models.RemoteTrackCandidate) (matching.Choice, error) {
	s.Calls++
	s.Shown = append(s.Shown, candidates)
	if len(s.Answers) == 0 {
		return matching.Choice{Kind: matching.SkipTrack}, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

// RateLimited returns a rate limit error for service.
func RateLimited(service string) error {
	return &shared.RateLimitError{Service: service}
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}
