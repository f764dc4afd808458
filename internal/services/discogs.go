// Discogs database client used as the [ReleaseCatalog] for local tagging
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesync/internal/matching"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/retry"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultDiscogsBaseURL = "https://api.discogs.com"
	discogsUserAgent      = "tunesync/1.0 +https://github.com/desertthunder/tunesync"
)

type discogsSearchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type discogsImage struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// DiscogsMaster is the subset of a master release used for tagging.
type DiscogsMaster struct {
	ID     int            `json:"id"`
	Title  string         `json:"title"`
	Year   int            `json:"year"`
	Genres []string       `json:"genres"`
	Images []discogsImage `json:"images"`
}

// Metadata converts the master into tag values: sorted genres joined by ", ", the year and
// the first image.
func (m DiscogsMaster) Metadata() models.DiscoveredMetadata {
	var md models.DiscoveredMetadata
	if len(m.Genres) > 0 {
		genres := append([]string(nil), m.Genres...)
		sort.Strings(genres)
		md.Genre = strings.Join(genres, ", ")
	}
	if m.Year > 0 {
		md.Year = strconv.Itoa(m.Year)
	}
	if len(m.Images) > 0 {
		md.CoverURI = m.Images[0].URI
	}
	return md
}

// DiscogsService implements [ReleaseCatalog]. Every request waits on a shared rate limiter.
type DiscogsService struct {
	api     *APIService
	limiter *rate.Limiter
	ranker  *matching.Ranker
}

// NewDiscogsService creates a client authenticated with a personal access token.
//
// The rate limit defaults to one request per second.
func NewDiscogsService(cfg shared.DiscogsConfig, client *http.Client) *DiscogsService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDiscogsBaseURL
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}

	var auth string
	if cfg.Token != "" {
		auth = "Discogs token=" + cfg.Token
	}

	return &DiscogsService{
		api: NewAPIService(baseURL, client,
			WithServiceName("discogs"),
			WithHeader("Authorization", auth),
			WithHeader("User-Agent", discogsUserAgent),
		),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		ranker:  matching.NewRanker(),
	}
}

// Classify treats 429 responses as rate limiting.
func (d *DiscogsService) Classify(err error) retry.Class {
	return retry.ClassifyShared(err)
}

// FetchRelease searches masters for "{title} {artist}" and reads genres, year and artwork of the
// best ranked result. It returns [shared.ErrNoMatch] when the search comes back empty.
func (d *DiscogsService) FetchRelease(ctx context.Context, artist, title string) (models.DiscoveredMetadata, error) {
	query := models.TrackQuery{Artist: artist, Title: title}
	if !query.Searchable() {
		return models.DiscoveredMetadata{}, fmt.Errorf("%w: artist or title required", shared.ErrInvalidInput)
	}

	results, err := d.search(ctx, query)
	if err != nil {
		return models.DiscoveredMetadata{}, err
	}

	best, ok := d.ranker.Best(query, results)
	if !ok {
		return models.DiscoveredMetadata{}, fmt.Errorf("%w: %s", shared.ErrNoMatch, query.Label())
	}

	master, err := d.Master(ctx, best.Candidate.ID)
	if err != nil {
		return models.DiscoveredMetadata{}, err
	}
	return master.Metadata(), nil
}

func (d *DiscogsService) search(ctx context.Context, query models.TrackQuery) ([]models.RemoteTrackCandidate, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := strings.TrimSpace(query.Title + " " + query.Artist)
	endpoint := "/database/search?" + url.Values{"q": {q}, "type": {"master"}}.Encode()

	var resp struct {
		Results []discogsSearchResult `json:"results"`
	}
	if err := d.api.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.RemoteTrackCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		artist, release := splitDiscogsTitle(r.Title)
		candidates = append(candidates, models.RemoteTrackCandidate{
			ID:     strconv.Itoa(r.ID),
			Title:  release,
			Artist: artist,
		})
	}
	return candidates, nil
}

// Master fetches GET /masters/{id}.
func (d *DiscogsService) Master(ctx context.Context, id string) (*DiscogsMaster, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var master DiscogsMaster
	if err := d.api.GetJSON(ctx, "/masters/"+url.PathEscape(id), &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// FetchCover downloads the image at uri.
func (d *DiscogsService) FetchCover(ctx context.Context, uri string) ([]byte, string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	resp, err := d.api.Get(ctx, uri)
	if err != nil {
		return nil, "", err
	}
	if err := d.api.CheckStatus(uri, resp); err != nil {
		return nil, "", err
	}
	if len(resp.Body) == 0 {
		return nil, "", fmt.Errorf("%w: empty image at %s", shared.ErrAPIRequest, uri)
	}

	mime := resp.Headers.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(resp.Body)
	}
	return resp.Body, mime, nil
}

// splitDiscogsTitle splits "Artist - Title" search titles.
func splitDiscogsTitle(s string) (artist, title string) {
	if a, t, ok := strings.Cut(s, " - "); ok {
		return strings.TrimSpace(a), strings.TrimSpace(t)
	}
	return "", strings.TrimSpace(s)
}
