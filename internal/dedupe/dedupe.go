// Package dedupe finds repeated tracks in a remote collection and plans which copies to remove.
//
// The earliest added occurrence of every track survives. Entries without a timestamp, or with
// equal timestamps, fall back to their position in the listing. Favorites collections are
// never deduplicated: a liked track can only appear once.
package dedupe

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/models"
)

// DefaultChunkSize is the largest removal batch the remote platforms accept.
const DefaultChunkSize = 100

// Groups maps a track id to all of its occurrences. Only ids seen more than once are present.
type Groups map[string][]models.PlaylistEntry

// Extra returns how many entries would be removed.
func (g Groups) Extra() int {
	n := 0
	for _, entries := range g {
		n += len(entries) - 1
	}
	return n
}

// Resolver plans duplicate removal for one collection snapshot.
type Resolver struct {
	logger *log.Logger
}

// NewResolver creates a [Resolver]. A nil logger discards output.
func NewResolver(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{logger: logger}
}

// FindDuplicates groups the snapshot's entries by track id.
func (r *Resolver) FindDuplicates(snapshot models.PlaylistSnapshot) Groups {
	if snapshot.Collection.Kind == models.Favorites {
		r.logger.Info("Favorites collections cannot contain duplicates; nothing to do", "collection", snapshot.Collection.ID)
		return Groups{}
	}

	all := make(map[string][]models.PlaylistEntry)
	for _, e := range snapshot.Entries {
		if e.TrackID == "" {
			continue
		}
		all[e.TrackID] = append(all[e.TrackID], e)
	}

	groups := Groups{}
	for id, entries := range all {
		if len(entries) > 1 {
			groups[id] = entries
		}
	}

	r.logger.Debug("Scanned collection", "collection", snapshot.Collection.ID, "entries", len(snapshot.Entries), "groups", len(groups))
	return groups
}

// PlanRemovals keeps the earliest entry of every group and returns the rest ordered by position.
func (r *Resolver) PlanRemovals(groups Groups) []models.PlaylistEntry {
	var removals []models.PlaylistEntry
	for _, entries := range groups {
		ordered := make([]models.PlaylistEntry, len(entries))
		copy(ordered, entries)
		sort.SliceStable(ordered, func(i, j int) bool {
			return earlier(ordered[i], ordered[j])
		})
		removals = append(removals, ordered[1:]...)
	}

	sort.Slice(removals, func(i, j int) bool {
		return removals[i].Position < removals[j].Position
	})
	return removals
}

func earlier(a, b models.PlaylistEntry) bool {
	if !a.AddedAt.IsZero() && !b.AddedAt.IsZero() && !a.AddedAt.Equal(b.AddedAt) {
		return a.AddedAt.Before(b.AddedAt)
	}
	if a.AddedAt.IsZero() != b.AddedAt.IsZero() {
		return !a.AddedAt.IsZero()
	}
	return a.Position < b.Position
}

// Chunk splits entries into consecutive batches of at most size entries.
func Chunk(entries []models.PlaylistEntry, size int) [][]models.PlaylistEntry {
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks [][]models.PlaylistEntry
	for start := 0; start < len(entries); start += size {
		end := min(start+size, len(entries))
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
