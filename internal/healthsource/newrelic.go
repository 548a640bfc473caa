package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// NewRelicMetricDefinition is a custom NRQL metric.
type NewRelicMetricDefinition struct {
	MetricDefinition
	NRQL            string                 `json:"nrql"`
	ResponseMapping *MetricResponseMapping `json:"responseMapping,omitempty"`
}

// NewRelicSpec monitors one New Relic application.
type NewRelicSpec struct {
	ConnectorIdentifier string                     `json:"connectorRef"`
	Feature             string                     `json:"feature,omitempty"`
	ApplicationName     string                     `json:"applicationName"`
	ApplicationID       int64                      `json:"applicationId"`
	MetricPacks         []MetricPackRef            `json:"metricPacks,omitempty"`
	MetricDefinitions   []NewRelicMetricDefinition `json:"metricDefinitions,omitempty"`
}

type newRelicKey struct {
	application   string
	applicationID int64
	pack          string
	group         string
	category      cvconfig.CVMonitoringCategory
}

func newRelicKeyOf(c cvconfig.CVConfig) newRelicKey {
	p := payloadOf[cvconfig.NewRelicPayload](c)
	return newRelicKey{
		application:   p.ApplicationName,
		applicationID: p.ApplicationID,
		pack:          p.MetricPack.Identifier,
		group:         p.GroupName,
		category:      c.Category,
	}
}

func (s NewRelicSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeNewRelic }
func (s NewRelicSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s NewRelicSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	if len(s.MetricPacks) > 0 {
		ve.requireField("applicationName", s.ApplicationName)
	}
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		ve.requireField(prefix+".nrql", d.NRQL)
		if d.ResponseMapping == nil {
			ve.Add(prefix+".responseMapping", "is required")
		}
	}
	return ve.Err()
}

func (s NewRelicSpec) CVConfigs(ctx context.Context, req Request) ([]cvconfig.CVConfig, error) {
	packs, err := resolvePacks(ctx, req, s.Type(), s.MetricPacks)
	if err != nil {
		return nil, err
	}

	var configs []cvconfig.CVConfig
	for _, pack := range packs {
		configs = append(configs, req.base(s.ConnectorIdentifier, pack.Category, cvconfig.NewRelicPayload{
			ApplicationName: s.ApplicationName,
			ApplicationID:   s.ApplicationID,
			MetricPack:      pack,
		}))
	}

	order, groups := groupBy(s.MetricDefinitions, byGroupAndCategory[NewRelicMetricDefinition])
	for _, k := range order {
		defs := groups[k]
		infos := make([]cvconfig.NewRelicMetricInfo, 0, len(defs))
		common := make([]cvconfig.MetricInfo, 0, len(defs))
		queries := make([]string, 0, len(defs))
		for _, d := range defs {
			field := fmt.Sprintf("metricDefinitions[%s].responseMapping", d.Identifier)
			mapping, err := deriveMapping(s.Type(), field, d.ResponseMapping, d.deploymentVerification().Enabled)
			if err != nil {
				return nil, err
			}
			info := cvconfig.NewRelicMetricInfo{MetricInfo: d.metricInfo(), NRQL: d.NRQL, ResponseMapping: mapping}
			infos = append(infos, info)
			common = append(common, info.MetricInfo)
			queries = append(queries, d.NRQL)
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, cvconfig.NewRelicPayload{
			ApplicationName: s.ApplicationName,
			ApplicationID:   s.ApplicationID,
			GroupName:       k.group,
			MetricPack:      customPack(s.Type(), k.category, common, queries),
			MetricInfos:     infos,
		}))
	}
	return configs, nil
}

func (s NewRelicSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, newRelicKeyOf)
}

func transformNewRelic(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeNewRelic, configs); err != nil {
		return nil, err
	}
	first := payloadOf[cvconfig.NewRelicPayload](configs[0])
	spec := NewRelicSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		ApplicationName:     first.ApplicationName,
		ApplicationID:       first.ApplicationID,
	}
	for _, c := range configs {
		p := payloadOf[cvconfig.NewRelicPayload](c)
		if !p.MetricPack.IsCustom() {
			spec.MetricPacks = append(spec.MetricPacks, MetricPackRef{Identifier: p.MetricPack.Identifier})
			continue
		}
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, NewRelicMetricDefinition{
				MetricDefinition: definitionOf(info.MetricInfo, p.GroupName, c.Category),
				NRQL:             info.NRQL,
				ResponseMapping:  specMapping(info.ResponseMapping),
			})
		}
	}
	return spec, nil
}
