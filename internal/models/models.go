// package models defines the data model for library reconciliation
package models

import (
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TrackQuery describes a track to look up in another system.
type TrackQuery struct {
	Artist      string
	Title       string
	SourceLabel string // file path or source playlist entry, for reporting only
}

// Searchable reports whether the query carries enough information to search.
//
// A query with neither artist nor title is skipped, never searched.
func (q TrackQuery) Searchable() bool {
	return strings.TrimSpace(q.Artist) != "" || strings.TrimSpace(q.Title) != ""
}

// Complete reports whether both artist and title are present.
func (q TrackQuery) Complete() bool {
	return strings.TrimSpace(q.Artist) != "" && strings.TrimSpace(q.Title) != ""
}

// Label returns the source label, or "artist - title" when none was given.
func (q TrackQuery) Label() string {
	if q.SourceLabel != "" {
		return q.SourceLabel
	}
	return q.Artist + " - " + q.Title
}

// RemoteTrackCandidate is a single remote search result.
//
// ID is the opaque foreign identifier (Spotify track id, YouTube videoId, Discogs master id).
type RemoteTrackCandidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Usable reports whether the candidate has every field needed for scoring.
func (c RemoteTrackCandidate) Usable() bool {
	return c.ID != "" && strings.TrimSpace(c.Title) != "" && strings.TrimSpace(c.Artist) != ""
}

// MatchDecision is the final outcome of ranking plus optional human confirmation.
type MatchDecision struct {
	SelectedID string
	Skipped    bool
}

// Skip is the decision used for empty candidate lists, ambiguous input and explicit skips.
func Skip() MatchDecision {
	return MatchDecision{Skipped: true}
}

// Select builds a decision for id.
func Select(id string) MatchDecision {
	return MatchDecision{SelectedID: id}
}

// LocalTagSnapshot is a read-only view of a file's tags before merging.
type LocalTagSnapshot struct {
	Artist   string
	Title    string
	Genre    string
	Year     string
	HasCover bool
}

// DiscoveredMetadata is what the release catalog returned; empty strings mean absent.
type DiscoveredMetadata struct {
	Genre    string `json:"genre,omitempty"`
	Year     string `json:"year,omitempty"`
	CoverURI string `json:"cover_uri,omitempty"`
}

// Empty reports whether nothing at all was discovered.
func (d DiscoveredMetadata) Empty() bool {
	return d.Genre == "" && d.Year == "" && d.CoverURI == ""
}

// MergeResult flags the fields a merge decided to update.
type MergeResult struct {
	GenreUpdated bool `json:"genre_updated"`
	YearUpdated  bool `json:"year_updated"`
	CoverUpdated bool `json:"cover_updated"`
}

// Any reports whether at least one field is updated.
func (m MergeResult) Any() bool {
	return m.GenreUpdated || m.YearUpdated || m.CoverUpdated
}

// FieldUpdates carries the concrete values to write; empty means leave untouched.
type FieldUpdates struct {
	Genre    string
	Year     string
	CoverURI string
}

// CollectionKind distinguishes ordinary playlists from favorites collections.
type CollectionKind int

const (
	Ordinary CollectionKind = iota
	Favorites
)

func (k CollectionKind) String() string {
	switch k {
	case Favorites:
		return "favorites"
	default:
		return "ordinary"
	}
}

// Well-known favorites identifiers: Spotify "Liked Songs" and YouTube Music "Liked Music".
const (
	SpotifyLikedID = "liked"
	YouTubeLikedID = "LM"
)

// Collection identifies a playlist, library or favorites container on one service.
type Collection struct {
	ID   string
	Kind CollectionKind
}

// ParseCollection maps a user-supplied id to a [Collection], recognizing favorites aliases.
func ParseCollection(id string) Collection {
	switch {
	case strings.EqualFold(id, SpotifyLikedID), id == YouTubeLikedID:
		return Collection{ID: id, Kind: Favorites}
	default:
		return Collection{ID: id, Kind: Ordinary}
	}
}

func (c Collection) String() string {
	return c.ID
}

// PlaylistSummary describes a playlist in the user's library.
type PlaylistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistEntry is one occurrence of a track in a collection.
type PlaylistEntry struct {
	TrackID     string    `json:"track_id"`
	Title       string    `json:"title,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	AddedAt     time.Time `json:"added_at"`
	DisplayName string    `json:"display_name"`
	Position    int       `json:"position"`          // index within the remote listing
	ItemID      string    `json:"item_id,omitempty"` // platform removal handle (YouTube setVideoId)
}

// Query describes the entry as a search for another service.
func (e PlaylistEntry) Query() TrackQuery {
	return TrackQuery{Artist: e.Artist, Title: e.Title, SourceLabel: e.DisplayName}
}

// PlaylistSnapshot is the ordered membership of a collection at fetch time.
type PlaylistSnapshot struct {
	Collection Collection
	Entries    []PlaylistEntry
}

// TrackIDs returns the distinct track ids in snapshot order.
func (s PlaylistSnapshot) TrackIDs() []string {
	seen := make(map[string]bool, len(s.Entries))
	ids := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.TrackID == "" || seen[e.TrackID] {
			continue
		}
		seen[e.TrackID] = true
		ids = append(ids, e.TrackID)
	}
	return ids
}
