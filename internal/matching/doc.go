// Package matching resolves a track description to an identifier in another system.
//
// # Ranking
//
// [Ranker] scores every usable candidate against the query. Both sides are reduced to a
// lowercased "{title} {artist}" comparison string and compared with two metrics:
//
//   - Jaro-Winkler similarity (github.com/adrg/strutil)
//   - token-sort Levenshtein similarity (github.com/hbollon/go-edlib), which ignores word order
//
// The higher of the two is the candidate's score. Candidates are returned in descending
// score order, ties keeping the order of the remote search. Candidates without an id, title
// or artist are dropped before scoring, and a query with neither artist nor title yields no
// ranking at all.
//
// # Selection
//
// [Selector] turns a ranking into a [models.MatchDecision]. In auto-first mode the top
// candidate wins. Otherwise the injected [Confirmer] is asked; its [Choice] may pick a
// candidate, skip the track, or switch the rest of the run to auto-first mode.
// [ParseChoice] implements the text protocol shared by the prompts:
//
//	""  or "1"  first candidate
//	"N"         N-th displayed candidate
//	"s"         skip
//	"a"         first candidate, auto-first from now on
//	anything else is treated as a skip
package matching
