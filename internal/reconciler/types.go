package reconciler

import (
	"healthsync/internal/cvconfig"
)

// MutationSet is the outcome of one reconciliation pass.
//
// Deleted entries are drawn from the existing configs and carry their
// persisted identity. Updated entries are the desired configs with the
// identity of the existing config they replace. Added entries carry no
// identity. The three lists are pairwise disjoint by key.
type MutationSet struct {
	Added   []cvconfig.CVConfig `json:"added"`
	Updated []cvconfig.CVConfig `json:"updated"`
	Deleted []cvconfig.CVConfig `json:"deleted"`
}

// IsEmpty reports whether the set carries no mutation at all.
func (m MutationSet) IsEmpty() bool {
	return len(m.Added) == 0 && len(m.Updated) == 0 && len(m.Deleted) == 0
}

// HasChanges reports whether applying the set would create or remove configs.
// Updates are full replacements and are issued on every pass.
func (m MutationSet) HasChanges() bool {
	return len(m.Added) > 0 || len(m.Deleted) > 0
}

// Counts returns the number of added, updated and deleted configs.
func (m MutationSet) Counts() (added, updated, deleted int) {
	return len(m.Added), len(m.Updated), len(m.Deleted)
}

// Merge returns a set holding the mutations of m followed by those of other.
func (m MutationSet) Merge(other MutationSet) MutationSet {
	return MutationSet{
		Added:   append(append([]cvconfig.CVConfig{}, m.Added...), other.Added...),
		Updated: append(append([]cvconfig.CVConfig{}, m.Updated...), other.Updated...),
		Deleted: append(append([]cvconfig.CVConfig{}, m.Deleted...), other.Deleted...),
	}
}

// DeleteAll is the mutation set that removes every existing config.
func DeleteAll(existing []cvconfig.CVConfig) MutationSet {
	return MutationSet{
		Added:   []cvconfig.CVConfig{},
		Updated: []cvconfig.CVConfig{},
		Deleted: append([]cvconfig.CVConfig{}, existing...),
	}
}
