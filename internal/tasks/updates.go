package tasks

import (
	"fmt"

	"github.com/desertthunder/tunesync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTarget Phase = iota
	SearchTracks
	AddTracks
	FindDuplicates
	RemoveDuplicates
	ReadTags
	FetchReleases
	WriteTags
	RenameFiles
)

func (p Phase) String() string {
	switch p {
	case FetchTarget:
		return "fetch_target"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case FindDuplicates:
		return "find_duplicates"
	case RemoveDuplicates:
		return "remove_duplicates"
	case ReadTags:
		return "read_tags"
	case FetchReleases:
		return "fetch_releases"
	case WriteTags:
		return "write_tags"
	case RenameFiles:
		return "rename_files"
	default:
		return ""
	}
}

func fetchTargetUpdate(service string, c models.Collection) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s collection %s...", service, c),
	}
}

func indexBuiltUpdate(snapshot models.PlaylistSnapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d entries in %s", len(snapshot.Entries), snapshot.Collection),
		Data:    snapshot,
	}
}

func searchTrackUpdate(step, total int, q models.TrackQuery) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, q.Label()),
	}
}

func trackOutcomeUpdate(step, total int, o TrackOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, o.Outcome, o.Query.Label()),
		Data:    o,
	}
}

func duplicatesFoundUpdate(groups, extra int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FindDuplicates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d duplicated tracks (%d extra entries)", groups, extra),
	}
}

func removeChunkUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveDuplicates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removing %d entries...", step, total, size),
	}
}

func fileUpdate(phase Phase, step, total int, path, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, path, message),
	}
}
