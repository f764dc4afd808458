// YouTube Music [Service] implementation
//
// Communicates with the FastAPI proxy server wrapping ytmusicapi.
// The proxy handles YouTube Music authentication; the browser headers file path is sent
// via the X-Auth-File header on each request.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/shared"
)

const (
	defaultYTBaseURL     = "http://localhost:8080"
	defaultYTSearchLimit = 5
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID    string          `json:"videoId"`
	Title      string          `json:"title"`
	Artists    []YouTubeArtist `json:"artists"`
	SetVideoID string          `json:"setVideoId,omitempty"` // For playlist operations
}

// Artist returns the first credited artist.
func (t YouTubeTrack) Artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

type youtubePlaylist struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Tracks []YouTubeTrack `json:"tracks"`
}

type youtubeLibraryPlaylist struct {
	PlaylistID  string `json:"playlistId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
	Count       int    `json:"count"`
}

type youtubeRemoval struct {
	VideoID    string `json:"videoId"`
	SetVideoID string `json:"setVideoId"`
}

// YouTubeService implements [Service] for YouTube Music via the proxy.
type YouTubeService struct {
	api         *APIService
	searchLimit int
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL, authFile string, client *http.Client) *YouTubeService {
	return &YouTubeService{
		api: NewAPIService(baseURL, client,
			WithServiceName("youtube music"),
			WithHeader("X-Auth-File", authFile),
		),
		searchLimit: defaultYTSearchLimit,
	}
}

// WithSearchLimit sets how many results a search asks for.
func (y *YouTubeService) WithSearchLimit(n int) *YouTubeService {
	if n > 0 {
		y.searchLimit = n
	}
	return y
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Classify treats proxy 429 responses as rate limiting.
func (y *YouTubeService) Classify(err error) retry.Class {
	return retry.ClassifyShared(err)
}

// Search calls GET /api/search?q={title} {artist}&filter=songs on the proxy.
func (y *YouTubeService) Search(ctx context.Context, query models.TrackQuery) ([]models.RemoteTrackCandidate, error) {
	q := strings.TrimSpace(query.Title + " " + query.Artist)
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs&limit=%d", url.QueryEscape(q), y.searchLimit)

	var results []YouTubeTrack
	if err := y.api.GetJSON(ctx, endpoint, &results); err != nil {
		return nil, err
	}

	candidates := make([]models.RemoteTrackCandidate, 0, len(results))
	for _, r := range results {
		c := models.RemoteTrackCandidate{ID: r.VideoID, Title: r.Title, Artist: r.Artist()}
		if c.Usable() {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// Snapshot calls GET /api/playlists/{id}, or GET /api/library/liked-songs for favorites.
//
// The proxy does not expose when an item was added, so entries carry only their position.
func (y *YouTubeService) Snapshot(ctx context.Context, collection models.Collection) (models.PlaylistSnapshot, error) {
	endpoint := "/api/library/liked-songs"
	if collection.Kind == models.Ordinary {
		endpoint = "/api/playlists/" + url.PathEscape(collection.ID)
	}

	var playlist youtubePlaylist
	if err := y.api.GetJSON(ctx, endpoint, &playlist); err != nil {
		return models.PlaylistSnapshot{}, err
	}

	snapshot := models.PlaylistSnapshot{Collection: collection, Entries: make([]models.PlaylistEntry, 0, len(playlist.Tracks))}
	for i, track := range playlist.Tracks {
		if track.VideoID == "" {
			continue
		}
		snapshot.Entries = append(snapshot.Entries, models.PlaylistEntry{
			TrackID:     track.VideoID,
			Title:       track.Title,
			Artist:      track.Artist(),
			DisplayName: fmt.Sprintf("%s - %s", track.Artist(), track.Title),
			Position:    i,
			ItemID:      track.SetVideoID,
		})
	}
	return snapshot, nil
}

// Add calls POST /api/playlists/{id}/items, or rates the song LIKE for favorites.
func (y *YouTubeService) Add(ctx context.Context, collection models.Collection, trackID string) error {
	if collection.Kind == models.Favorites {
		endpoint := fmt.Sprintf("/api/songs/%s/rating", url.PathEscape(trackID))
		return y.api.PostJSON(ctx, endpoint, map[string]string{"rating": "LIKE"}, nil)
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(collection.ID))
	return y.api.PostJSON(ctx, endpoint, map[string][]string{"video_ids": {trackID}}, nil)
}

// Playlists calls GET /api/library/playlists on the proxy. Liked Music is left out.
func (y *YouTubeService) Playlists(ctx context.Context) ([]models.PlaylistSummary, error) {
	var library []youtubeLibraryPlaylist
	if err := y.api.GetJSON(ctx, "/api/library/playlists", &library); err != nil {
		return nil, err
	}

	playlists := make([]models.PlaylistSummary, 0, len(library))
	for _, p := range library {
		if p.PlaylistID == "" || p.PlaylistID == models.YouTubeLikedID {
			continue
		}
		playlists = append(playlists, models.PlaylistSummary{
			ID:          p.PlaylistID,
			Name:        p.Title,
			Description: p.Description,
			TrackCount:  p.Count,
			Public:      p.Privacy == "PUBLIC",
		})
	}
	return playlists, nil
}

// CreatePlaylist calls POST /api/playlists on the proxy.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string, public bool) (models.PlaylistSummary, error) {
	privacy := "PRIVATE"
	if public {
		privacy = "PUBLIC"
	}

	req := map[string]string{"title": name, "description": description, "privacy_status": privacy}
	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := y.api.PostJSON(ctx, "/api/playlists", req, &resp); err != nil {
		return models.PlaylistSummary{}, err
	}
	if resp.PlaylistID == "" {
		return models.PlaylistSummary{}, fmt.Errorf("%w: proxy returned no playlist id for %q", shared.ErrAPIRequest, name)
	}
	return models.PlaylistSummary{ID: resp.PlaylistID, Name: name, Description: description, Public: public}, nil
}

// Remove calls POST /api/playlists/{id}/items/remove with the entries' setVideoId handles.
func (y *YouTubeService) Remove(ctx context.Context, collection models.Collection, entries []models.PlaylistEntry) error {
	if collection.Kind == models.Favorites {
		return fmt.Errorf("%w: entries cannot be removed from %s", shared.ErrInvalidInput, collection)
	}
	if len(entries) == 0 {
		return nil
	}

	videos := make([]youtubeRemoval, len(entries))
	for i, e := range entries {
		videos[i] = youtubeRemoval{VideoID: e.TrackID, SetVideoID: e.ItemID}
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items/remove", url.PathEscape(collection.ID))
	return y.api.PostJSON(ctx, endpoint, map[string][]youtubeRemoval{"videos": videos}, nil)
}
