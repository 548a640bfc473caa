package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// ErrNotFound is returned when a mutation refers to a config that is not stored.
var ErrNotFound = errors.New("config not found")

// Store is the persistence collaborator of the reconciler.
type Store interface {
	// List returns the configs stored for a monitored service, in the order
	// they were first added.
	List(ctx context.Context, scope cvconfig.Scope, monitoredServiceIdentifier string) ([]cvconfig.CVConfig, error)
	// Apply persists a mutation set.
	Apply(ctx context.Context, mutations reconciler.MutationSet) error
}

// Location addresses the configs of one monitored service.
type Location struct {
	Scope                      cvconfig.Scope
	MonitoredServiceIdentifier string
}

func (l Location) String() string {
	return fmt.Sprintf("%s/%s", l.Scope, l.MonitoredServiceIdentifier)
}

func locationOf(c cvconfig.CVConfig) Location {
	return Location{Scope: c.Scope, MonitoredServiceIdentifier: c.MonitoredServiceIdentifier}
}

// split partitions a mutation set by location, keeping the order in which
// locations first appear.
func split(m reconciler.MutationSet) ([]Location, map[Location]*reconciler.MutationSet) {
	var order []Location
	sets := make(map[Location]*reconciler.MutationSet)
	get := func(c cvconfig.CVConfig) *reconciler.MutationSet {
		loc := locationOf(c)
		s, ok := sets[loc]
		if !ok {
			s = &reconciler.MutationSet{}
			sets[loc] = s
			order = append(order, loc)
		}
		return s
	}
	for _, c := range m.Added {
		s := get(c)
		s.Added = append(s.Added, c)
	}
	for _, c := range m.Updated {
		s := get(c)
		s.Updated = append(s.Updated, c)
	}
	for _, c := range m.Deleted {
		s := get(c)
		s.Deleted = append(s.Deleted, c)
	}
	return order, sets
}

// applyTo returns configs with m applied. configs is not modified.
func applyTo(configs []cvconfig.CVConfig, m reconciler.MutationSet) ([]cvconfig.CVConfig, error) {
	index := make(map[string]int, len(configs))
	for i, c := range configs {
		index[c.UUID] = i
	}

	result := append([]cvconfig.CVConfig{}, configs...)
	for _, c := range m.Updated {
		i, ok := index[c.UUID]
		if !ok || c.UUID == "" {
			return nil, fmt.Errorf("failed to update config %q: %w", c.UUID, ErrNotFound)
		}
		result[i] = c
	}

	removed := make(map[int]struct{}, len(m.Deleted))
	for _, c := range m.Deleted {
		i, ok := index[c.UUID]
		if !ok || c.UUID == "" {
			return nil, fmt.Errorf("failed to delete config %q: %w", c.UUID, ErrNotFound)
		}
		removed[i] = struct{}{}
	}
	if len(removed) > 0 {
		kept := result[:0]
		for i, c := range result {
			if _, gone := removed[i]; !gone {
				kept = append(kept, c)
			}
		}
		result = kept
	}

	for _, c := range m.Added {
		result = append(result, c.WithUUID(uuid.NewString()))
	}
	return result, nil
}
