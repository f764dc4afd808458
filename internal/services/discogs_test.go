package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/time/rate"
)

func newDiscogsTestService(t *testing.T, handler http.HandlerFunc) *DiscogsService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewDiscogsService(shared.DiscogsConfig{Token: "secret", BaseURL: server.URL}, nil)
	svc.limiter = rate.NewLimiter(rate.Inf, 1)
	return svc
}

func TestDiscogsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Metadata", func(t *testing.T) {
		m := DiscogsMaster{
			Year:   1997,
			Genres: []string{"Rock", "Electronic"},
			Images: []discogsImage{{URI: "https://img/1.jpg"}, {URI: "https://img/2.jpg"}},
		}
		want := models.DiscoveredMetadata{Genre: "Electronic, Rock", Year: "1997", CoverURI: "https://img/1.jpg"}
		if got := m.Metadata(); got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if got := (DiscogsMaster{}).Metadata(); !got.Empty() {
			t.Errorf("expected empty metadata, got %+v", got)
		}
	})

	t.Run("FetchRelease", func(t *testing.T) {
		svc := newDiscogsTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Discogs token=secret" {
				t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
			}
			if r.Header.Get("User-Agent") == "" {
				t.Error("expected a User-Agent")
			}

			switch r.URL.Path {
			case "/database/search":
				if r.URL.Query().Get("type") != "master" || r.URL.Query().Get("q") != "OK Computer Radiohead" {
					t.Errorf("unexpected search %s", r.URL.RawQuery)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"results": []map[string]any{
						{"id": 1, "title": "Various - Rock Hits"},
						{"id": 21491, "title": "Radiohead - OK Computer"},
					},
				})
			case "/masters/21491":
				json.NewEncoder(w).Encode(map[string]any{
					"id":     21491,
					"year":   1997,
					"genres": []string{"Rock", "Electronic"},
					"images": []map[string]string{{"type": "primary", "uri": "https://img/okc.jpg"}},
				})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		})

		md, err := svc.FetchRelease(ctx, "Radiohead", "OK Computer")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := models.DiscoveredMetadata{Genre: "Electronic, Rock", Year: "1997", CoverURI: "https://img/okc.jpg"}
		if md != want {
			t.Errorf("expected %+v, got %+v", want, md)
		}
	})

	t.Run("FetchRelease without results", func(t *testing.T) {
		svc := newDiscogsTestService(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		})

		if _, err := svc.FetchRelease(ctx, "Nobody", "Nothing"); !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
		if _, err := svc.FetchRelease(ctx, "", " "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("FetchRelease rate limited", func(t *testing.T) {
		svc := newDiscogsTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := svc.FetchRelease(ctx, "Radiohead", "OK Computer")
		if !shared.IsRateLimited(err) {
			t.Errorf("expected rate limit error, got %v", err)
		}
	})

	t.Run("FetchCover", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\n0000")
		svc := newDiscogsTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(png)
		})

		data, mime, err := svc.FetchCover(ctx, svc.api.baseURL+"/images/okc.png")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(data) != len(png) {
			t.Errorf("expected %d bytes, got %d", len(png), len(data))
		}
		if mime != "image/png" {
			t.Errorf("expected sniffed image/png, got %s", mime)
		}
	})

	t.Run("splitDiscogsTitle", func(t *testing.T) {
		if a, ti := splitDiscogsTitle("Sigur Rós - ( )"); a != "Sigur Rós" || ti != "( )" {
			t.Errorf("unexpected split %q %q", a, ti)
		}
		if a, ti := splitDiscogsTitle("Untitled"); a != "" || ti != "Untitled" {
			t.Errorf("unexpected split %q %q", a, ti)
		}
	})
}
