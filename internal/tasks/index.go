package tasks

import "github.com/desertthunder/tunesync/internal/models"

// MembershipIndex is the set of track ids present in the target collection during a run.
//
// It is filled once from a snapshot and updated after every successful add, so a track
// selected twice in one run is only added once.
type MembershipIndex struct {
	ids map[string]struct{}
}

// NewMembershipIndex builds an index from a snapshot.
func NewMembershipIndex(snapshot models.PlaylistSnapshot) *MembershipIndex {
	idx := &MembershipIndex{ids: make(map[string]struct{}, len(snapshot.Entries))}
	for _, e := range snapshot.Entries {
		idx.Add(e.TrackID)
	}
	return idx
}

// Contains reports whether id is already a member.
func (m *MembershipIndex) Contains(id string) bool {
	_, ok := m.ids[id]
	return ok
}

// Add records id as a member.
func (m *MembershipIndex) Add(id string) {
	if id != "" {
		m.ids[id] = struct{}{}
	}
}

// Len returns the number of distinct members.
func (m *MembershipIndex) Len() int {
	return len(m.ids)
}
