package matching

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/hbollon/go-edlib"
)

// Scorer returns a similarity in [0, 1] between two comparison strings.
type Scorer func(a, b string) float64

// Scored pairs a candidate with its similarity to the query.
type Scored struct {
	Candidate models.RemoteTrackCandidate
	Score     float64
}

// Ranker orders remote candidates by similarity to a query.
type Ranker struct {
	scorer Scorer
}

// NewRanker returns a [Ranker] using [Similarity].
func NewRanker() *Ranker {
	return &Ranker{scorer: Similarity}
}

// NewRankerWithScorer returns a [Ranker] with a custom scoring function.
func NewRankerWithScorer(s Scorer) *Ranker {
	if s == nil {
		s = Similarity
	}
	return &Ranker{scorer: s}
}

// ComparisonString builds the normalized "{title} {artist}" string both sides are scored on.
func ComparisonString(title, artist string) string {
	return shared.NormalizeText(title + " " + artist)
}

// Score filters unusable candidates and scores the rest, sorted by descending score.
//
// The sort is stable, so equal scores keep the remote engine's order.
func (r *Ranker) Score(query models.TrackQuery, candidates []models.RemoteTrackCandidate) []Scored {
	if !query.Searchable() || len(candidates) == 0 {
		return nil
	}

	q := ComparisonString(query.Title, query.Artist)
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if !c.Usable() {
			continue
		}
		scored = append(scored, Scored{
			Candidate: c,
			Score:     r.scorer(q, ComparisonString(c.Title, c.Artist)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Rank returns the usable candidates ordered best first. An empty result means "no matches".
func (r *Ranker) Rank(query models.TrackQuery, candidates []models.RemoteTrackCandidate) []models.RemoteTrackCandidate {
	scored := r.Score(query, candidates)
	if len(scored) == 0 {
		return nil
	}

	ranked := make([]models.RemoteTrackCandidate, len(scored))
	for i, s := range scored {
		ranked[i] = s.Candidate
	}
	return ranked
}

// Best returns the top scored candidate, or false when there is none.
func (r *Ranker) Best(query models.TrackQuery, candidates []models.RemoteTrackCandidate) (Scored, bool) {
	scored := r.Score(query, candidates)
	if len(scored) == 0 {
		return Scored{}, false
	}
	return scored[0], true
}

var jaroWinkler = &metrics.JaroWinkler{CaseSensitive: false}

// Similarity is the default [Scorer]: the better of Jaro-Winkler and token-sort Levenshtein.
func Similarity(a, b string) float64 {
	jw := strutil.Similarity(a, b, jaroWinkler)

	ts, err := edlib.StringsSimilarity(tokenSort(a), tokenSort(b), edlib.Levenshtein)
	if err != nil {
		return jw
	}
	return max(jw, float64(ts))
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
