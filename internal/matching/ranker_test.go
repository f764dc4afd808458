package matching

import (
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
)

func TestRanker(t *testing.T) {
	query := models.TrackQuery{Artist: "Radiohead", Title: "Karma Police"}

	t.Run("exact match ranks first", func(t *testing.T) {
		candidates := []models.RemoteTrackCandidate{
			{ID: "3", Title: "Paranoid Android", Artist: "Radiohead"},
			{ID: "1", Title: "Karma Police (Live)", Artist: "Radiohead Tribute Band"},
			{ID: "2", Title: "Karma Police", Artist: "Radiohead"},
		}

		ranked := NewRanker().Rank(query, candidates)
		if len(ranked) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(ranked))
		}
		if ranked[0].ID != "2" {
			t.Errorf("expected candidate 2 first, got %s", ranked[0].ID)
		}
		if ranked[2].ID != "3" {
			t.Errorf("expected candidate 3 last, got %s", ranked[2].ID)
		}
	})

	t.Run("word order does not matter", func(t *testing.T) {
		if got := Similarity("police karma radiohead", "karma police radiohead"); got != 1 {
			t.Errorf("expected token sorted similarity of 1, got %v", got)
		}
	})

	t.Run("unusable candidates are dropped", func(t *testing.T) {
		candidates := []models.RemoteTrackCandidate{
			{ID: "1", Title: "Karma Police", Artist: ""},
			{ID: "", Title: "Karma Police", Artist: "Radiohead"},
			{ID: "2", Title: "Karma Police", Artist: "Radiohead"},
		}

		ranked := NewRanker().Rank(query, candidates)
		if len(ranked) != 1 || ranked[0].ID != "2" {
			t.Errorf("expected only candidate 2, got %+v", ranked)
		}
	})

	t.Run("empty query is not scored", func(t *testing.T) {
		calls := 0
		r := NewRankerWithScorer(func(a, b string) float64 {
			calls++
			return 1
		})

		ranked := r.Rank(models.TrackQuery{Artist: " ", Title: ""}, []models.RemoteTrackCandidate{
			{ID: "1", Title: "Karma Police", Artist: "Radiohead"},
		})
		if ranked != nil {
			t.Errorf("expected no ranking, got %+v", ranked)
		}
		if calls != 0 {
			t.Errorf("expected scorer not to be called, got %d calls", calls)
		}
	})

	t.Run("ties keep remote order", func(t *testing.T) {
		r := NewRankerWithScorer(func(a, b string) float64 { return 0.5 })
		candidates := []models.RemoteTrackCandidate{
			{ID: "c", Title: "A", Artist: "B"},
			{ID: "a", Title: "A", Artist: "B"},
			{ID: "b", Title: "A", Artist: "B"},
		}

		ranked := r.Rank(query, candidates)
		for i, want := range []string{"c", "a", "b"} {
			if ranked[i].ID != want {
				t.Errorf("position %d: expected %s, got %s", i, want, ranked[i].ID)
			}
		}
	})

	t.Run("Best on empty input", func(t *testing.T) {
		if _, ok := NewRanker().Best(query, nil); ok {
			t.Error("expected no best candidate")
		}
	})

	t.Run("scores stay within bounds", func(t *testing.T) {
		scored := NewRanker().Score(query, []models.RemoteTrackCandidate{
			{ID: "1", Title: "Completely Different", Artist: "Someone Else"},
			{ID: "2", Title: "Karma Police", Artist: "Radiohead"},
		})
		for _, s := range scored {
			if s.Score < 0 || s.Score > 1 {
				t.Errorf("score out of range for %s: %v", s.Candidate.ID, s.Score)
			}
		}
		if scored[0].Score != 1 {
			t.Errorf("expected exact match to score 1, got %v", scored[0].Score)
		}
	})
}

func TestCleanQuery(t *testing.T) {
	tc := []struct {
		name   string
		in     models.TrackQuery
		artist string
		title  string
	}{
		{
			name:   "drops parenthesized suffix",
			in:     models.TrackQuery{Artist: "The Beatles", Title: "Something (Remastered 2009)"},
			artist: "The Beatles",
			title:  "Something",
		},
		{
			name:   "drops brackets and featured artists",
			in:     models.TrackQuery{Artist: "Daft Punk feat. Pharrell Williams", Title: "Get Lucky [Radio Edit]"},
			artist: "Daft Punk",
			title:  "Get Lucky",
		},
		{
			name:   "keeps first credited artist",
			in:     models.TrackQuery{Artist: "Simon & Garfunkel, Someone", Title: "America"},
			artist: "Simon",
			title:  "America",
		},
		{
			name:   "removes apostrophes",
			in:     models.TrackQuery{Artist: "Guns N' Roses", Title: "Sweet Child O' Mine"},
			artist: "Guns N Roses",
			title:  "Sweet Child O Mine",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanQuery(tt.in)
			if got.Artist != tt.artist {
				t.Errorf("expected artist %q, got %q", tt.artist, got.Artist)
			}
			if got.Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, got.Title)
			}
		})
	}
}
