package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunesync/internal/models"
)

var _ list.Item = candidateItem{}

// candidateItem wraps [models.RemoteTrackCandidate] to implement [list.Item].
type candidateItem struct {
	rank      int
	candidate models.RemoteTrackCandidate
}

func (i candidateItem) FilterValue() string { return i.candidate.Title }
func (i candidateItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.candidate.Title)
}
func (i candidateItem) Description() string {
	return fmt.Sprintf("%s • %s", i.candidate.Artist, i.candidate.ID)
}

func candidateItems(candidates []models.RemoteTrackCandidate) []list.Item {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{rank: i + 1, candidate: c}
	}
	return items
}
