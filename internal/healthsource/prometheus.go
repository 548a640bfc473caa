package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// PrometheusMetricDefinition is shared by Prometheus and AWS managed Prometheus.
type PrometheusMetricDefinition struct {
	MetricDefinition
	Query         string `json:"query"`
	IsManualQuery bool   `json:"isManualQuery,omitempty"`
}

func (d PrometheusMetricDefinition) metricInfo() cvconfig.PrometheusMetricInfo {
	return cvconfig.PrometheusMetricInfo{
		MetricInfo:               d.MetricDefinition.metricInfo(),
		Query:                    d.Query,
		ServiceInstanceFieldName: d.deploymentVerification().ServiceInstanceFieldName,
		IsManualQuery:            d.IsManualQuery,
	}
}

func prometheusDefinitionOf(info cvconfig.PrometheusMetricInfo, group string, category cvconfig.CVMonitoringCategory) PrometheusMetricDefinition {
	d := PrometheusMetricDefinition{
		MetricDefinition: definitionOf(info.MetricInfo, group, category),
		Query:            info.Query,
		IsManualQuery:    info.IsManualQuery,
	}
	d.Analysis.DeploymentVerification.ServiceInstanceFieldName = info.ServiceInstanceFieldName
	return d
}

func validatePrometheusDefinitions(ve *ValidationErrors, defs []PrometheusMetricDefinition) {
	validateDefinitions(ve, "metricDefinitions", defs)
	for i, d := range defs {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		ve.requireField(prefix+".query", d.Query)
		if dv := d.deploymentVerification(); dv.Enabled && dv.ServiceInstanceFieldName == "" {
			ve.Add(prefix+".analysis.deploymentVerification.serviceInstanceFieldName", "is required when deployment verification is enabled")
		}
	}
}

// prometheusGroups maps grouped definitions to their metric infos.
func prometheusGroups(defs []PrometheusMetricDefinition) ([]groupCategory, map[groupCategory][]cvconfig.PrometheusMetricInfo) {
	order, groups := groupBy(defs, byGroupAndCategory[PrometheusMetricDefinition])
	infos := make(map[groupCategory][]cvconfig.PrometheusMetricInfo, len(groups))
	for k, group := range groups {
		for _, d := range group {
			infos[k] = append(infos[k], d.metricInfo())
		}
	}
	return order, infos
}

// PrometheusSpec monitors PromQL queries against a Prometheus server.
type PrometheusSpec struct {
	ConnectorIdentifier string                       `json:"connectorRef"`
	MetricDefinitions   []PrometheusMetricDefinition `json:"metricDefinitions"`
}

func prometheusKeyOf(c cvconfig.CVConfig) groupCategory {
	return groupCategory{group: payloadOf[cvconfig.PrometheusPayload](c).GroupName, category: c.Category}
}

func (s PrometheusSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypePrometheus }
func (s PrometheusSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s PrometheusSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validatePrometheusDefinitions(&ve, s.MetricDefinitions)
	return ve.Err()
}

func (s PrometheusSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, infos := prometheusGroups(s.MetricDefinitions)
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, cvconfig.PrometheusPayload{
			GroupName:   k.group,
			MetricInfos: infos[k],
		}))
	}
	return configs, nil
}

func (s PrometheusSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, prometheusKeyOf)
}

func transformPrometheus(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypePrometheus, configs); err != nil {
		return nil, err
	}
	spec := PrometheusSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.PrometheusPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, prometheusDefinitionOf(info, p.GroupName, c.Category))
		}
	}
	return spec, nil
}

// AwsPrometheusSpec monitors PromQL queries against an Amazon Managed Prometheus workspace.
type AwsPrometheusSpec struct {
	ConnectorIdentifier string                       `json:"connectorRef"`
	Region              string                       `json:"region"`
	WorkspaceID         string                       `json:"workspaceId"`
	MetricDefinitions   []PrometheusMetricDefinition `json:"metricDefinitions"`
}

type awsPrometheusKey struct {
	region    string
	workspace string
	group     string
	category  cvconfig.CVMonitoringCategory
}

func awsPrometheusKeyOf(c cvconfig.CVConfig) awsPrometheusKey {
	p := payloadOf[cvconfig.AwsPrometheusPayload](c)
	return awsPrometheusKey{region: p.Region, workspace: p.WorkspaceID, group: p.GroupName, category: c.Category}
}

func (s AwsPrometheusSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeAwsPrometheus }
func (s AwsPrometheusSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s AwsPrometheusSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	ve.requireField("region", s.Region)
	ve.requireField("workspaceId", s.WorkspaceID)
	validatePrometheusDefinitions(&ve, s.MetricDefinitions)
	return ve.Err()
}

func (s AwsPrometheusSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, infos := prometheusGroups(s.MetricDefinitions)
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, cvconfig.AwsPrometheusPayload{
			Region:      s.Region,
			WorkspaceID: s.WorkspaceID,
			GroupName:   k.group,
			MetricInfos: infos[k],
		}))
	}
	return configs, nil
}

func (s AwsPrometheusSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, awsPrometheusKeyOf)
}

func transformAwsPrometheus(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeAwsPrometheus, configs); err != nil {
		return nil, err
	}
	first := payloadOf[cvconfig.AwsPrometheusPayload](configs[0])
	spec := AwsPrometheusSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		Region:              first.Region,
		WorkspaceID:         first.WorkspaceID,
	}
	for _, c := range configs {
		p := payloadOf[cvconfig.AwsPrometheusPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, prometheusDefinitionOf(info, p.GroupName, c.Category))
		}
	}
	return spec, nil
}
