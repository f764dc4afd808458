package matching

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
)

// ChoiceKind enumerates what a human answered.
type ChoiceKind int

const (
	Pick ChoiceKind = iota
	SkipTrack
	AutoFirst
)

// Choice is a confirmation answer; Index is zero-based and only used by [Pick].
type Choice struct {
	Kind  ChoiceKind
	Index int
}

// ParseChoice interprets a typed answer against n displayed candidates.
func ParseChoice(input string, n int) Choice {
	switch s := strings.ToLower(strings.TrimSpace(input)); s {
	case "":
		return Choice{Kind: Pick, Index: 0}
	case "s":
		return Choice{Kind: SkipTrack}
	case "a":
		return Choice{Kind: AutoFirst}
	default:
		idx, err := strconv.Atoi(s)
		if err != nil || idx < 1 || idx > n {
			return Choice{Kind: SkipTrack}
		}
		return Choice{Kind: Pick, Index: idx - 1}
	}
}

// Confirmer asks a human to choose among ranked candidates. Implementations block until answered.
type Confirmer interface {
	Confirm(ctx context.Context, query models.TrackQuery, candidates []models.RemoteTrackCandidate) (Choice, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, query models.TrackQuery, candidates []models.RemoteTrackCandidate) (Choice, error)

func (f ConfirmFunc) Confirm(ctx context.Context, query models.TrackQuery, candidates []models.RemoteTrackCandidate) (Choice, error) {
	return f(ctx, query, candidates)
}

// Selector finalizes ranked candidates into a [models.MatchDecision].
//
// A Selector carries the auto-first switch for one run and is not safe for concurrent use.
type Selector struct {
	confirm    Confirmer
	autoFirst  bool
	maxMatches int
}

// NewSelector creates a Selector; a nil confirmer forces auto-first mode.
func NewSelector(confirm Confirmer, autoFirst bool, maxMatches int) *Selector {
	if maxMatches <= 0 {
		maxMatches = 4
	}
	return &Selector{
		confirm:    confirm,
		autoFirst:  autoFirst || confirm == nil,
		maxMatches: maxMatches,
	}
}

// AutoFirst reports whether the top candidate is currently taken without asking.
func (s *Selector) AutoFirst() bool {
	return s.autoFirst
}

// Decide picks from ranked candidates.
//
// A confirmer that fails resolves to a skip, except when the user cancelled: then the skip is
// returned together with the cancellation so the caller can stop the run.
func (s *Selector) Decide(ctx context.Context, query models.TrackQuery, ranked []models.RemoteTrackCandidate) (models.MatchDecision, error) {
	if len(ranked) == 0 {
		return models.Skip(), nil
	}
	if s.autoFirst {
		return models.Select(ranked[0].ID), nil
	}

	shown := ranked
	if len(shown) > s.maxMatches {
		shown = shown[:s.maxMatches]
	}

	choice, err := s.confirm.Confirm(ctx, query, shown)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.Skip(), err
		}
		return models.Skip(), nil
	}

	switch choice.Kind {
	case AutoFirst:
		s.autoFirst = true
		return models.Select(shown[0].ID), nil
	case Pick:
		if choice.Index < 0 || choice.Index >= len(shown) {
			return models.Skip(), nil
		}
		return models.Select(shown[choice.Index].ID), nil
	default:
		return models.Skip(), nil
	}
}
