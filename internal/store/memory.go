package store

import (
	"context"
	"sync"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
	"healthsync/pkg/logging"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[Location][]cvconfig.CVConfig
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: make(map[Location][]cvconfig.CVConfig)}
}

func (s *MemoryStore) List(ctx context.Context, scope cvconfig.Scope, monitoredServiceIdentifier string) ([]cvconfig.CVConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	loc := Location{Scope: scope, MonitoredServiceIdentifier: monitoredServiceIdentifier}
	return append([]cvconfig.CVConfig{}, s.configs[loc]...), nil
}

func (s *MemoryStore) Apply(ctx context.Context, mutations reconciler.MutationSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, sets := split(mutations)
	next := make(map[Location][]cvconfig.CVConfig, len(order))
	for _, loc := range order {
		updated, err := applyTo(s.configs[loc], *sets[loc])
		if err != nil {
			return err
		}
		next[loc] = updated
	}

	for loc, configs := range next {
		if len(configs) == 0 {
			delete(s.configs, loc)
			continue
		}
		s.configs[loc] = configs
	}

	added, updated, deleted := mutations.Counts()
	logging.Debug("Store", "Applied %d added, %d updated, %d deleted configs in memory", added, updated, deleted)
	return nil
}
