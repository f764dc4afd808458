package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
)

func TestParseChoice(t *testing.T) {
	tc := []struct {
		input string
		want  Choice
	}{
		{input: "", want: Choice{Kind: Pick, Index: 0}},
		{input: "1", want: Choice{Kind: Pick, Index: 0}},
		{input: " 3 ", want: Choice{Kind: Pick, Index: 2}},
		{input: "S", want: Choice{Kind: SkipTrack}},
		{input: "a", want: Choice{Kind: AutoFirst}},
		{input: "5", want: Choice{Kind: SkipTrack}},
		{input: "0", want: Choice{Kind: SkipTrack}},
		{input: "maybe", want: Choice{Kind: SkipTrack}},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseChoice(tt.input, 4); got != tt.want {
				t.Errorf("ParseChoice(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSelector(t *testing.T) {
	ctx := context.Background()
	query := models.TrackQuery{Artist: "Low", Title: "Words"}
	ranked := []models.RemoteTrackCandidate{
		{ID: "a", Title: "Words", Artist: "Low"},
		{ID: "b", Title: "Words", Artist: "Low Tribute"},
		{ID: "c", Title: "Word", Artist: "Lo"},
	}

	answer := func(choice Choice, err error) ConfirmFunc {
		return func(context.Context, models.TrackQuery, []models.RemoteTrackCandidate) (Choice, error) {
			return choice, err
		}
	}

	t.Run("empty ranking is skipped", func(t *testing.T) {
		s := NewSelector(nil, true, 4)
		if d, _ := s.Decide(ctx, query, nil); !d.Skipped {
			t.Errorf("expected skip, got %+v", d)
		}
	})

	t.Run("nil confirmer forces auto-first", func(t *testing.T) {
		s := NewSelector(nil, false, 4)
		if !s.AutoFirst() {
			t.Fatal("expected auto-first mode")
		}
		if d, _ := s.Decide(ctx, query, ranked); d.SelectedID != "a" {
			t.Errorf("expected a, got %+v", d)
		}
	})

	t.Run("pick by index", func(t *testing.T) {
		s := NewSelector(answer(Choice{Kind: Pick, Index: 1}, nil), false, 4)
		if d, _ := s.Decide(ctx, query, ranked); d.SelectedID != "b" {
			t.Errorf("expected b, got %+v", d)
		}
	})

	t.Run("auto answer switches mode", func(t *testing.T) {
		calls := 0
		s := NewSelector(ConfirmFunc(func(context.Context, models.TrackQuery, []models.RemoteTrackCandidate) (Choice, error) {
			calls++
			return Choice{Kind: AutoFirst}, nil
		}), false, 4)

		if d, _ := s.Decide(ctx, query, ranked); d.SelectedID != "a" {
			t.Errorf("expected a, got %+v", d)
		}
		if d, _ := s.Decide(ctx, query, ranked); d.SelectedID != "a" {
			t.Errorf("expected a, got %+v", d)
		}
		if calls != 1 {
			t.Errorf("expected 1 confirmation, got %d", calls)
		}
	})

	t.Run("confirmer error skips", func(t *testing.T) {
		s := NewSelector(answer(Choice{}, errors.New("closed")), false, 4)
		d, err := s.Decide(ctx, query, ranked)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if !d.Skipped {
			t.Errorf("expected skip, got %+v", d)
		}
	})

	t.Run("cancelled confirmation is returned", func(t *testing.T) {
		s := NewSelector(answer(Choice{}, fmt.Errorf("prompt: %w", context.Canceled)), false, 4)
		d, err := s.Decide(ctx, query, ranked)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if !d.Skipped {
			t.Errorf("expected skip, got %+v", d)
		}
	})

	t.Run("only max matches are shown", func(t *testing.T) {
		var shown int
		s := NewSelector(ConfirmFunc(func(_ context.Context, _ models.TrackQuery, c []models.RemoteTrackCandidate) (Choice, error) {
			shown = len(c)
			return Choice{Kind: Pick, Index: 2}, nil
		}), false, 2)

		d, _ := s.Decide(ctx, query, ranked)
		if shown != 2 {
			t.Errorf("expected 2 shown candidates, got %d", shown)
		}
		if !d.Skipped {
			t.Errorf("expected out of range pick to skip, got %+v", d)
		}
	})
}
