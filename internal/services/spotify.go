// Spotify [Service] implementation on top of github.com/zmb3/spotify/v2
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const defaultSpotifySearchLimit = 5

// SpotifyScopes are the permissions needed to read and modify playlists and saved tracks.
var SpotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
}

// SpotifyService implements [Service] for the Spotify Web API.
type SpotifyService struct {
	client      *spotify.Client
	searchLimit int
}

// NewSpotifyService wraps an authenticated [spotify.Client].
func NewSpotifyService(client *spotify.Client) *SpotifyService {
	return &SpotifyService{client: client, searchLimit: defaultSpotifySearchLimit}
}

// NewSpotifyAuthenticator builds the OAuth2 authenticator from configured credentials.
func NewSpotifyAuthenticator(cfg shared.SpotifyConfig) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(SpotifyScopes...),
	)
}

// NewSpotifyFromToken creates a service whose HTTP client refreshes tok as needed.
func NewSpotifyFromToken(ctx context.Context, auth *spotifyauth.Authenticator, tok *oauth2.Token) *SpotifyService {
	return NewSpotifyService(spotify.New(newSpotifyHTTPClient(auth.Client(ctx, tok))))
}

// spotifyTransport turns every 429 into a [shared.RateLimitError]. The spotify client only
// reports a typed error when the response carries a JSON body.
type spotifyTransport struct {
	base http.RoundTripper
}

func (t spotifyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, &shared.RateLimitError{Service: "Spotify", RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	}
	return resp, nil
}

func newSpotifyHTTPClient(client *http.Client) *http.Client {
	c := *client
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = spotifyTransport{base: base}
	return &c
}

// LoadToken reads an OAuth2 token saved by [SaveToken].
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no spotify token at %s, run 'tunesync auth spotify'", shared.ErrNotAuthenticated, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: token file %s: %w", shared.ErrInvalidConfig, path, err)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, readable only by the current user.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// WithSearchLimit sets how many results a search asks for.
func (s *SpotifyService) WithSearchLimit(n int) *SpotifyService {
	if n > 0 {
		s.searchLimit = n
	}
	return s
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Classify recognizes 429 responses reported as [spotify.Error].
func (s *SpotifyService) Classify(err error) retry.Class {
	var se spotify.Error
	if errors.As(err, &se) && se.Status == http.StatusTooManyRequests {
		return retry.RateLimited
	}
	var sp *spotify.Error
	if errors.As(err, &sp) && sp.Status == http.StatusTooManyRequests {
		return retry.RateLimited
	}
	return retry.ClassifyShared(err)
}

// SpotifySearchQuery builds a field filtered search string.
func SpotifySearchQuery(query models.TrackQuery) string {
	var parts []string
	if t := strings.TrimSpace(query.Title); t != "" {
		parts = append(parts, "track:"+t)
	}
	if a := strings.TrimSpace(query.Artist); a != "" {
		parts = append(parts, "artist:"+a)
	}
	return strings.Join(parts, " ")
}

// Search finds tracks with a "track:{title} artist:{artist}" query.
func (s *SpotifyService) Search(ctx context.Context, query models.TrackQuery) ([]models.RemoteTrackCandidate, error) {
	result, err := s.client.Search(ctx, SpotifySearchQuery(query), spotify.SearchTypeTrack, spotify.Limit(s.searchLimit))
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil {
		return nil, nil
	}

	candidates := make([]models.RemoteTrackCandidate, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		c := models.RemoteTrackCandidate{ID: string(t.ID), Title: t.Name, Artist: firstArtist(t.Artists)}
		if c.Usable() {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// Snapshot pages through a playlist, or the saved tracks for favorites.
//
// Playlist entries carry the playlist snapshot id in ItemID so positional removals stay
// consistent across batches.
func (s *SpotifyService) Snapshot(ctx context.Context, collection models.Collection) (models.PlaylistSnapshot, error) {
	if collection.Kind == models.Favorites {
		return s.savedTracks(ctx, collection)
	}

	id := spotify.ID(collection.ID)
	playlist, err := s.client.GetPlaylist(ctx, id, spotify.Fields("snapshot_id"))
	if err != nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("failed to fetch playlist %s: %w", collection.ID, err)
	}

	page, err := s.client.GetPlaylistItems(ctx, id)
	if err != nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("failed to fetch playlist items: %w", err)
	}

	snapshot := models.PlaylistSnapshot{Collection: collection}
	position := 0
	for {
		for _, item := range page.Items {
			if t := item.Track.Track; t != nil && t.ID != "" {
				snapshot.Entries = append(snapshot.Entries, models.PlaylistEntry{
					TrackID:     string(t.ID),
					Title:       t.Name,
					Artist:      firstArtist(t.Artists),
					AddedAt:     parseAddedAt(item.AddedAt),
					DisplayName: fmt.Sprintf("%s - %s", firstArtist(t.Artists), t.Name),
					Position:    position,
					ItemID:      playlist.SnapshotID,
				})
			}
			position++
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		} else if err != nil {
			return models.PlaylistSnapshot{}, fmt.Errorf("failed to fetch playlist items: %w", err)
		}
	}
	return snapshot, nil
}

func (s *SpotifyService) savedTracks(ctx context.Context, collection models.Collection) (models.PlaylistSnapshot, error) {
	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(50))
	if err != nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("failed to fetch saved tracks: %w", err)
	}

	snapshot := models.PlaylistSnapshot{Collection: collection}
	position := 0
	for {
		for _, t := range page.Tracks {
			snapshot.Entries = append(snapshot.Entries, models.PlaylistEntry{
				TrackID:     string(t.ID),
				Title:       t.Name,
				Artist:      firstArtist(t.Artists),
				AddedAt:     parseAddedAt(t.AddedAt),
				DisplayName: fmt.Sprintf("%s - %s", firstArtist(t.Artists), t.Name),
				Position:    position,
			})
			position++
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		} else if err != nil {
			return models.PlaylistSnapshot{}, fmt.Errorf("failed to fetch saved tracks: %w", err)
		}
	}
	return snapshot, nil
}

// Playlists pages through the current user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.PlaylistSummary, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	var playlists []models.PlaylistSummary
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, spotifySummary(p, int(p.Tracks.Total)))
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to fetch playlists: %w", err)
		}
	}
	return playlists, nil
}

// CreatePlaylist creates a playlist for the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (models.PlaylistSummary, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return models.PlaylistSummary{}, fmt.Errorf("failed to fetch current user: %w", err)
	}

	playlist, err := s.client.CreatePlaylistForUser(ctx, user.ID, name, description, public, false)
	if err != nil {
		return models.PlaylistSummary{}, fmt.Errorf("failed to create playlist %q: %w", name, err)
	}
	return spotifySummary(playlist.SimplePlaylist, 0), nil
}

func spotifySummary(p spotify.SimplePlaylist, tracks int) models.PlaylistSummary {
	return models.PlaylistSummary{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		TrackCount:  tracks,
		Public:      p.IsPublic,
	}
}

// Add appends the track to a playlist, or saves it for favorites.
func (s *SpotifyService) Add(ctx context.Context, collection models.Collection, trackID string) error {
	if collection.Kind == models.Favorites {
		return s.client.AddTracksToLibrary(ctx, spotify.ID(trackID))
	}
	_, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(collection.ID), spotify.ID(trackID))
	return err
}

// Remove deletes entries by position so that only the listed occurrences of a track go away.
func (s *SpotifyService) Remove(ctx context.Context, collection models.Collection, entries []models.PlaylistEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if collection.Kind == models.Favorites {
		ids := make([]spotify.ID, len(entries))
		for i, e := range entries {
			ids[i] = spotify.ID(e.TrackID)
		}
		return s.client.RemoveTracksFromLibrary(ctx, ids...)
	}

	var (
		order     []string
		positions = make(map[string][]int)
	)
	for _, e := range entries {
		if _, ok := positions[e.TrackID]; !ok {
			order = append(order, e.TrackID)
		}
		positions[e.TrackID] = append(positions[e.TrackID], e.Position)
	}

	tracks := make([]spotify.TrackToRemove, len(order))
	for i, id := range order {
		tracks[i] = spotify.NewTrackToRemove(id, positions[id])
	}

	_, err := s.client.RemoveTracksFromPlaylistOpt(ctx, spotify.ID(collection.ID), tracks, entries[0].ItemID)
	return err
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

func parseAddedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
