// package services defines the remote collaborators of a reconciliation run
package services

import (
	"context"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
)

// Catalog searches a remote service for tracks.
type Catalog interface {
	// Search returns candidates in the remote engine's relevance order.
	Search(ctx context.Context, query models.TrackQuery) ([]models.RemoteTrackCandidate, error)
}

// Collections reads and mutates playlists and favorites.
type Collections interface {
	// Snapshot lists every entry of the collection, following pagination.
	Snapshot(ctx context.Context, collection models.Collection) (models.PlaylistSnapshot, error)

	// Add appends a single track to the collection.
	Add(ctx context.Context, collection models.Collection, trackID string) error

	// Remove deletes exactly the given entries. Implementations accept at most 100 entries per call.
	Remove(ctx context.Context, collection models.Collection, entries []models.PlaylistEntry) error

	// Playlists lists the playlists in the user's library. Favorites are not included.
	Playlists(ctx context.Context) ([]models.PlaylistSummary, error)

	// CreatePlaylist creates an empty playlist owned by the user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (models.PlaylistSummary, error)
}

// Service is a streaming platform that playlists are reconciled against.
type Service interface {
	Catalog
	Collections

	// Name returns the display name of the service (e.g., "Spotify", "YouTube Music")
	Name() string

	// Classify tells the retrying operation whether err is a rate limit refusal.
	Classify(err error) retry.Class
}

// ReleaseCatalog looks up release metadata for local files.
type ReleaseCatalog interface {
	FetchRelease(ctx context.Context, artist, title string) (models.DiscoveredMetadata, error)

	// FetchCover downloads artwork and returns its bytes and MIME type.
	FetchCover(ctx context.Context, uri string) ([]byte, string, error)
}
