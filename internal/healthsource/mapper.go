package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/metricpack"
)

// groupBy buckets items by key, keeping the order in which keys first
// appear. Items for which key reports false are dropped.
func groupBy[T any, K comparable](items []T, key func(T) (K, bool)) ([]K, map[K][]T) {
	var order []K
	groups := make(map[K][]T)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], item)
	}
	return order, groups
}

// groupCategory is the grouping key of definitions analysed together.
type groupCategory struct {
	group    string
	category cvconfig.CVMonitoringCategory
}

func byGroupAndCategory[D definition](d D) (groupCategory, bool) {
	c := d.common()
	category, ok := c.category()
	if !ok {
		return groupCategory{}, false
	}
	return groupCategory{group: c.GroupName, category: category}, true
}

// resolvePacks returns the catalog packs named by refs, in ref order.
// References to the custom pack are skipped: custom metrics come from the
// metric definitions.
func resolvePacks(ctx context.Context, req Request, t cvconfig.DataSourceType, refs []MetricPackRef) ([]cvconfig.MetricPack, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	if req.MetricPacks == nil {
		return nil, &MappingError{Type: t, Field: "metricPacks", Message: "no metric pack catalog configured"}
	}

	available, err := req.MetricPacks.GetMetricPacks(ctx, req.Scope, t)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s metric packs: %w", t, err)
	}

	seen := make(map[string]struct{}, len(refs))
	packs := make([]cvconfig.MetricPack, 0, len(refs))
	for _, ref := range refs {
		if ref.Identifier == cvconfig.CustomPackIdentifier {
			continue
		}
		if _, dup := seen[ref.Identifier]; dup {
			continue
		}
		seen[ref.Identifier] = struct{}{}

		pack, ok := metricpack.FindPack(available, ref.Identifier)
		if !ok {
			return nil, &MappingError{Type: t, Field: "metricPacks", Message: fmt.Sprintf("unknown metric pack %q", ref.Identifier)}
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// customPack builds the pack that carries user-defined metrics of one category.
func customPack(t cvconfig.DataSourceType, category cvconfig.CVMonitoringCategory, infos []cvconfig.MetricInfo, paths []string) cvconfig.MetricPack {
	pack := cvconfig.MetricPack{
		Identifier:     cvconfig.CustomPackIdentifier,
		Category:       category,
		DataSourceType: t,
		Metrics:        make([]cvconfig.MetricDefinition, 0, len(infos)),
	}
	for i, info := range infos {
		def := cvconfig.MetricDefinition{
			Identifier: info.Identifier,
			Name:       info.MetricName,
			Type:       info.MetricType,
			Included:   true,
		}
		if i < len(paths) {
			def.Path = paths[i]
		}
		pack.Metrics = append(pack.Metrics, def)
	}
	return pack
}

// sameSource checks the preconditions of every reverse transformer: configs
// are non-empty, of type t and share one monitoring source name.
func sameSource(t cvconfig.DataSourceType, configs []cvconfig.CVConfig) error {
	if len(configs) == 0 {
		return &MappingError{Type: t, Message: "no configs to transform"}
	}
	name := configs[0].MonitoringSourceName
	for _, c := range configs {
		if c.Type() != t {
			return &MappingError{Type: t, Message: fmt.Sprintf("config %q has type %s", c.UUID, c.Type())}
		}
		if c.MonitoringSourceName != name {
			return &MappingError{Type: t, Message: fmt.Sprintf("configs belong to different health sources %q and %q", name, c.MonitoringSourceName)}
		}
	}
	return nil
}

// definitionOf rebuilds the shared part of a metric definition from a
// stored metric info.
func definitionOf(info cvconfig.MetricInfo, group string, category cvconfig.CVMonitoringCategory) MetricDefinition {
	return MetricDefinition{
		Identifier: info.Identifier,
		MetricName: info.MetricName,
		GroupName:  group,
		SLI:        &Toggle{Enabled: info.SLI},
		Analysis: &Analysis{
			RiskProfile:            &RiskProfile{Category: category, MetricType: info.MetricType},
			LiveMonitoring:         Toggle{Enabled: info.LiveMonitoring},
			DeploymentVerification: DeploymentVerification{Enabled: info.DeploymentVerification},
		},
	}
}

// queryNameKey identifies a log config by its query name.
type queryNameKey struct {
	name string
}

// queryNameKeyOf works for every log payload: they are all labelled by
// query name.
func queryNameKeyOf(c cvconfig.CVConfig) queryNameKey {
	return queryNameKey{name: c.Label()}
}
