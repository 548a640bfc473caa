package healthsource

import (
	"context"
	"fmt"
	"slices"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// DynatraceMetricDefinition is a custom metric addressed by a Dynatrace metric selector.
type DynatraceMetricDefinition struct {
	MetricDefinition
	MetricSelector string `json:"metricSelector"`
	IsManualQuery  bool   `json:"isManualQuery,omitempty"`
}

// DynatraceSpec monitors one Dynatrace service.
type DynatraceSpec struct {
	ConnectorIdentifier string                      `json:"connectorRef"`
	Feature             string                      `json:"feature,omitempty"`
	ServiceID           string                      `json:"serviceId"`
	ServiceName         string                      `json:"serviceName,omitempty"`
	ServiceMethodIDs    []string                    `json:"serviceMethodIds,omitempty"`
	MetricPacks         []MetricPackRef             `json:"metricPacks,omitempty"`
	MetricDefinitions   []DynatraceMetricDefinition `json:"metricDefinitions,omitempty"`
}

type dynatraceKey struct {
	service  string
	pack     string
	group    string
	category cvconfig.CVMonitoringCategory
}

func dynatraceKeyOf(c cvconfig.CVConfig) dynatraceKey {
	p := payloadOf[cvconfig.DynatracePayload](c)
	return dynatraceKey{
		service:  p.ServiceID,
		pack:     p.MetricPack.Identifier,
		group:    p.GroupName,
		category: c.Category,
	}
}

func (s DynatraceSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeDynatrace }
func (s DynatraceSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s DynatraceSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	ve.requireField("serviceId", s.ServiceID)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		ve.requireField(prefix+".metricSelector", d.MetricSelector)
	}
	return ve.Err()
}

func (s DynatraceSpec) payload(group string, pack cvconfig.MetricPack, infos []cvconfig.DynatraceMetricInfo) cvconfig.DynatracePayload {
	return cvconfig.DynatracePayload{
		ServiceID:        s.ServiceID,
		ServiceName:      s.ServiceName,
		ServiceMethodIDs: slices.Clone(s.ServiceMethodIDs),
		GroupName:        group,
		MetricPack:       pack,
		MetricInfos:      infos,
	}
}

func (s DynatraceSpec) CVConfigs(ctx context.Context, req Request) ([]cvconfig.CVConfig, error) {
	packs, err := resolvePacks(ctx, req, s.Type(), s.MetricPacks)
	if err != nil {
		return nil, err
	}

	var configs []cvconfig.CVConfig
	for _, pack := range packs {
		configs = append(configs, req.base(s.ConnectorIdentifier, pack.Category, s.payload("", pack, nil)))
	}

	order, groups := groupBy(s.MetricDefinitions, byGroupAndCategory[DynatraceMetricDefinition])
	for _, k := range order {
		defs := groups[k]
		infos := make([]cvconfig.DynatraceMetricInfo, 0, len(defs))
		common := make([]cvconfig.MetricInfo, 0, len(defs))
		selectors := make([]string, 0, len(defs))
		for _, d := range defs {
			info := cvconfig.DynatraceMetricInfo{MetricInfo: d.metricInfo(), MetricSelector: d.MetricSelector, IsManualQuery: d.IsManualQuery}
			infos = append(infos, info)
			common = append(common, info.MetricInfo)
			selectors = append(selectors, d.MetricSelector)
		}
		pack := customPack(s.Type(), k.category, common, selectors)
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, s.payload(k.group, pack, infos)))
	}
	return configs, nil
}

func (s DynatraceSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, dynatraceKeyOf)
}

func transformDynatrace(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeDynatrace, configs); err != nil {
		return nil, err
	}
	first := payloadOf[cvconfig.DynatracePayload](configs[0])
	spec := DynatraceSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		ServiceID:           first.ServiceID,
		ServiceName:         first.ServiceName,
		ServiceMethodIDs:    first.ServiceMethodIDs,
	}
	for _, c := range configs {
		p := payloadOf[cvconfig.DynatracePayload](c)
		if !p.MetricPack.IsCustom() {
			spec.MetricPacks = append(spec.MetricPacks, MetricPackRef{Identifier: p.MetricPack.Identifier})
			continue
		}
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, DynatraceMetricDefinition{
				MetricDefinition: definitionOf(info.MetricInfo, p.GroupName, c.Category),
				MetricSelector:   info.MetricSelector,
				IsManualQuery:    info.IsManualQuery,
			})
		}
	}
	return spec, nil
}
