package monitoredservice

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"healthsync/internal/cvconfig"
	"healthsync/internal/healthsource"
	"healthsync/internal/metricpack"
	"healthsync/internal/reconciler"
	"healthsync/internal/store"
	"healthsync/pkg/logging"
)

// DefaultParallelism bounds how many health sources are planned at once.
const DefaultParallelism = 4

// Change is the planned outcome for one health source.
type Change struct {
	Identifier string                  `json:"identifier"`
	Name       string                  `json:"name"`
	Type       cvconfig.DataSourceType `json:"type"`
	// Removed is set for health sources that are stored but no longer in
	// the document.
	Removed   bool                   `json:"removed,omitempty"`
	Mutations reconciler.MutationSet `json:"mutations"`
}

// Plan is the set of changes that brings the store in line with a document.
type Plan struct {
	MonitoredServiceIdentifier string         `json:"monitoredServiceIdentifier"`
	Scope                      cvconfig.Scope `json:"scope"`
	Changes                    []Change       `json:"changes"`
}

// MutationSet merges the mutations of every change.
func (p Plan) MutationSet() reconciler.MutationSet {
	merged := reconciler.MutationSet{
		Added:   []cvconfig.CVConfig{},
		Updated: []cvconfig.CVConfig{},
		Deleted: []cvconfig.CVConfig{},
	}
	for _, c := range p.Changes {
		merged = merged.Merge(c.Mutations)
	}
	return merged
}

// HasChanges reports whether applying the plan would add or delete configs.
func (p Plan) HasChanges() bool {
	for _, c := range p.Changes {
		if c.Mutations.HasChanges() {
			return true
		}
	}
	return false
}

// Service plans and applies monitored service documents against a store.
type Service struct {
	registry    *healthsource.Registry
	store       store.Store
	packs       metricpack.Service
	scope       cvconfig.Scope
	parallelism int
}

// Option configures a Service.
type Option func(*Service)

// WithScope sets the scope used for documents that do not name one.
func WithScope(scope cvconfig.Scope) Option {
	return func(s *Service) {
		s.scope = scope
	}
}

// WithParallelism sets how many health sources are planned concurrently.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewService creates a Service.
func NewService(registry *healthsource.Registry, st store.Store, packs metricpack.Service, opts ...Option) *Service {
	s := &Service{
		registry:    registry,
		store:       st,
		packs:       packs,
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan reconciles every health source of ms against the store without
// changing it. Health sources that are stored but missing from ms are
// planned for deletion.
func (s *Service) Plan(ctx context.Context, ms MonitoredService) (Plan, error) {
	if err := ms.Validate(); err != nil {
		return Plan{}, err
	}

	specs := make([]healthsource.Spec, len(ms.HealthSources))
	for i, hs := range ms.HealthSources {
		spec, err := s.registry.Decode(hs.Type, hs.Spec)
		if err != nil {
			return Plan{}, fmt.Errorf("health source %s: %w", hs.Identifier, err)
		}
		specs[i] = spec
	}

	scope := ms.Scope(s.scope)
	stored, err := s.store.List(ctx, scope, ms.Identifier)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to list configs of %s: %w", ms.Identifier, err)
	}
	order, existing := groupByHealthSource(stored)

	changes := make([]Change, len(ms.HealthSources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, hs := range ms.HealthSources {
		i, hs := i, hs
		req := healthsource.Request{
			Scope:                      scope,
			MonitoredServiceIdentifier: ms.Identifier,
			EnvironmentRef:             ms.EnvironmentRef,
			ServiceRef:                 ms.ServiceRef,
			Identifier:                 hs.Identifier,
			Name:                       hs.Name,
			Enabled:                    ms.IsEnabled(),
			MetricPacks:                s.packs,
		}
		g.Go(func() error {
			mutations, err := specs[i].Reconcile(gctx, req, existing[hs.Identifier])
			if err != nil {
				return fmt.Errorf("health source %s: %w", hs.Identifier, err)
			}
			changes[i] = Change{Identifier: hs.Identifier, Name: hs.Name, Type: hs.Type, Mutations: mutations}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}

	declared := make(map[string]struct{}, len(ms.HealthSources))
	for _, hs := range ms.HealthSources {
		declared[hs.Identifier] = struct{}{}
	}
	for _, id := range order {
		if _, ok := declared[id]; ok {
			continue
		}
		configs := existing[id]
		changes = append(changes, Change{
			Identifier: id,
			Name:       configs[0].MonitoringSourceName,
			Type:       configs[0].Type(),
			Removed:    true,
			Mutations:  reconciler.DeleteAll(configs),
		})
	}

	logging.Debug("MonitoredService", "Planned %d health source changes for %s", len(changes), ms.Identifier)
	return Plan{MonitoredServiceIdentifier: ms.Identifier, Scope: scope, Changes: changes}, nil
}

// Apply plans ms and writes the result to the store.
func (s *Service) Apply(ctx context.Context, ms MonitoredService) (Plan, error) {
	plan, err := s.Plan(ctx, ms)
	if err != nil {
		return Plan{}, err
	}

	mutations := plan.MutationSet()
	if mutations.IsEmpty() {
		return plan, nil
	}
	if err := s.store.Apply(ctx, mutations); err != nil {
		return Plan{}, fmt.Errorf("failed to apply plan for %s: %w", ms.Identifier, err)
	}

	added, updated, deleted := mutations.Counts()
	logging.Info("MonitoredService", "Applied %s: %d added, %d updated, %d deleted", ms.Identifier, added, updated, deleted)
	return plan, nil
}

// Describe rebuilds the document of a monitored service from its stored
// configs. It fails with store.ErrNotFound when nothing is stored.
func (s *Service) Describe(ctx context.Context, scope cvconfig.Scope, monitoredServiceIdentifier string) (MonitoredService, error) {
	stored, err := s.store.List(ctx, scope, monitoredServiceIdentifier)
	if err != nil {
		return MonitoredService{}, fmt.Errorf("failed to list configs of %s: %w", monitoredServiceIdentifier, err)
	}
	if len(stored) == 0 {
		return MonitoredService{}, fmt.Errorf("monitored service %s in %s: %w", monitoredServiceIdentifier, scope, store.ErrNotFound)
	}

	first := stored[0]
	enabled := first.Enabled
	ms := MonitoredService{
		Identifier:        monitoredServiceIdentifier,
		AccountID:         scope.AccountID,
		OrgIdentifier:     scope.OrgIdentifier,
		ProjectIdentifier: scope.ProjectIdentifier,
		ServiceRef:        first.ServiceRef,
		EnvironmentRef:    first.EnvironmentRef,
		Enabled:           &enabled,
	}

	order, groups := groupByHealthSource(stored)
	for _, id := range order {
		configs := groups[id]
		spec, err := s.registry.Transform(configs[0].Type(), configs)
		if err != nil {
			return MonitoredService{}, fmt.Errorf("health source %s: %w", id, err)
		}
		raw, err := json.Marshal(spec)
		if err != nil {
			return MonitoredService{}, fmt.Errorf("failed to encode health source %s: %w", id, err)
		}
		ms.HealthSources = append(ms.HealthSources, HealthSource{
			Identifier: id,
			Name:       configs[0].MonitoringSourceName,
			Type:       spec.Type(),
			Spec:       raw,
		})
	}
	return ms, nil
}

// groupByHealthSource buckets configs by health source identifier, keeping
// the order in which identifiers first appear.
func groupByHealthSource(configs []cvconfig.CVConfig) ([]string, map[string][]cvconfig.CVConfig) {
	var order []string
	groups := make(map[string][]cvconfig.CVConfig)
	for _, c := range configs {
		if _, seen := groups[c.Identifier]; !seen {
			order = append(order, c.Identifier)
		}
		groups[c.Identifier] = append(groups[c.Identifier], c)
	}
	return order, groups
}
