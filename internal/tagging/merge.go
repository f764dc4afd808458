package tagging

import (
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
)

// Policy selects which fields may replace existing local values.
type Policy struct {
	OverwriteGenre bool
	OverwriteYear  bool
	OverwriteCover bool
}

// Merge computes which discovered fields should be written over the local tags.
func Merge(local models.LocalTagSnapshot, discovered models.DiscoveredMetadata, p Policy) (models.MergeResult, models.FieldUpdates) {
	var (
		result  models.MergeResult
		updates models.FieldUpdates
	)

	if mergeText(local.Genre, discovered.Genre, p.OverwriteGenre) {
		result.GenreUpdated = true
		updates.Genre = discovered.Genre
	}

	if mergeText(local.Year, discovered.Year, p.OverwriteYear) {
		result.YearUpdated = true
		updates.Year = discovered.Year
	}

	if discovered.CoverURI != "" && (p.OverwriteCover || !local.HasCover) {
		result.CoverUpdated = true
		updates.CoverURI = discovered.CoverURI
	}
	return result, updates
}

func mergeText(local, discovered string, overwrite bool) bool {
	discovered = strings.TrimSpace(discovered)
	if discovered == "" {
		return false
	}

	local = strings.TrimSpace(local)
	if overwrite {
		return local != discovered
	}
	return local == ""
}
