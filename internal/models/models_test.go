package models

import (
	"testing"
	"time"
)

func TestTrackQuery(t *testing.T) {
	tc := []struct {
		name       string
		query      TrackQuery
		searchable bool
		complete   bool
	}{
		{name: "both fields", query: TrackQuery{Artist: "Low", Title: "Words"}, searchable: true, complete: true},
		{name: "title only", query: TrackQuery{Title: "Words"}, searchable: true, complete: false},
		{name: "blank", query: TrackQuery{Artist: "  ", Title: ""}, searchable: false, complete: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Searchable(); got != tt.searchable {
				t.Errorf("Searchable() = %v, want %v", got, tt.searchable)
			}
			if got := tt.query.Complete(); got != tt.complete {
				t.Errorf("Complete() = %v, want %v", got, tt.complete)
			}
		})
	}

	t.Run("Label falls back to artist and title", func(t *testing.T) {
		if got := (TrackQuery{Artist: "Low", Title: "Words"}).Label(); got != "Low - Words" {
			t.Errorf("unexpected label %q", got)
		}
		if got := (TrackQuery{Artist: "Low", Title: "Words", SourceLabel: "a.mp3"}).Label(); got != "a.mp3" {
			t.Errorf("unexpected label %q", got)
		}
	})
}

func TestParseCollection(t *testing.T) {
	tc := []struct {
		id   string
		kind CollectionKind
	}{
		{id: "liked", kind: Favorites},
		{id: "Liked", kind: Favorites},
		{id: "LM", kind: Favorites},
		{id: "lm", kind: Ordinary},
		{id: "37i9dQZF1DXcBWIGoYBM5M", kind: Ordinary},
	}

	for _, tt := range tc {
		t.Run(tt.id, func(t *testing.T) {
			if got := ParseCollection(tt.id); got.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, got.Kind)
			}
		})
	}
}

func TestPlaylistSnapshot(t *testing.T) {
	snap := PlaylistSnapshot{Entries: []PlaylistEntry{
		{TrackID: "a"}, {TrackID: "b"}, {TrackID: "a"}, {TrackID: ""}, {TrackID: "c"},
	}}

	ids := snap.TrackIDs()
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
		}
	}
}

func TestRun(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		if err := NewRun(RunReconcile, "Spotify", "liked").Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
		if err := NewRun("bogus", "Spotify", "").Validate(); err == nil {
			t.Error("expected invalid kind error")
		}
		if err := NewRun(RunDedupe, "", "").Validate(); err == nil {
			t.Error("expected missing service error")
		}
	})

	t.Run("Finish", func(t *testing.T) {
		run := NewRun(RunTags, "Discogs", "")
		before := run.UpdatedAt()
		time.Sleep(time.Millisecond)

		run.Finish(RunFinished, Counters{Found: 2})
		if run.Status != RunFinished || run.FinishedAt == nil {
			t.Fatalf("expected finished run, got %+v", run)
		}
		if run.Counters.Found != 2 {
			t.Errorf("expected counters to be stored")
		}
		if !run.UpdatedAt().After(before) {
			t.Error("expected updated timestamp to advance")
		}
	})
}
