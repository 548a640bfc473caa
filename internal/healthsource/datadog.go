package healthsource

import (
	"context"
	"fmt"
	"slices"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// DatadogMetricDefinition is a Datadog metric query on a dashboard.
type DatadogMetricDefinition struct {
	MetricDefinition
	DashboardName                string `json:"dashboardName"`
	DashboardID                  string `json:"dashboardId,omitempty"`
	Query                        string `json:"query"`
	GroupingQuery                string `json:"groupingQuery,omitempty"`
	Aggregation                  string `json:"aggregation,omitempty"`
	ServiceInstanceIdentifierTag string `json:"serviceInstanceIdentifierTag,omitempty"`
	IsManualQuery                bool   `json:"isManualQuery,omitempty"`
}

// DatadogMetricsSpec monitors Datadog dashboards.
type DatadogMetricsSpec struct {
	ConnectorIdentifier string                    `json:"connectorRef"`
	Feature             string                    `json:"feature,omitempty"`
	MetricDefinitions   []DatadogMetricDefinition `json:"metricDefinitions"`
}

func datadogMetricsKeyOf(c cvconfig.CVConfig) dashboardKey {
	return dashboardKey{dashboard: payloadOf[cvconfig.DatadogMetricsPayload](c).DashboardName, category: c.Category}
}

func (s DatadogMetricsSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeDatadogMetrics }
func (s DatadogMetricsSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s DatadogMetricsSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".dashboardName", d.DashboardName)
		ve.requireField(prefix+".query", d.Query)
		if d.deploymentVerification().Enabled {
			ve.requireField(prefix+".serviceInstanceIdentifierTag", d.ServiceInstanceIdentifierTag)
		}
	}
	return ve.Err()
}

func byDatadogDashboard(d DatadogMetricDefinition) (dashboardKey, bool) {
	category, ok := d.category()
	return dashboardKey{dashboard: d.DashboardName, category: category}, ok
}

func (s DatadogMetricsSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, groups := groupBy(s.MetricDefinitions, byDatadogDashboard)
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		defs := groups[k]
		payload := cvconfig.DatadogMetricsPayload{
			DashboardName: k.dashboard,
			DashboardID:   defs[0].DashboardID,
			MetricInfos:   make([]cvconfig.DatadogMetricInfo, 0, len(defs)),
		}
		for _, d := range defs {
			payload.MetricInfos = append(payload.MetricInfos, cvconfig.DatadogMetricInfo{
				MetricInfo:                   d.metricInfo(),
				Query:                        d.Query,
				GroupingQuery:                d.GroupingQuery,
				Aggregation:                  d.Aggregation,
				ServiceInstanceIdentifierTag: d.ServiceInstanceIdentifierTag,
				IsManualQuery:                d.IsManualQuery,
			})
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, payload))
	}
	return configs, nil
}

func (s DatadogMetricsSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, datadogMetricsKeyOf)
}

func transformDatadogMetrics(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeDatadogMetrics, configs); err != nil {
		return nil, err
	}
	spec := DatadogMetricsSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.DatadogMetricsPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, DatadogMetricDefinition{
				MetricDefinition:             definitionOf(info.MetricInfo, "", c.Category),
				DashboardName:                p.DashboardName,
				DashboardID:                  p.DashboardID,
				Query:                        info.Query,
				GroupingQuery:                info.GroupingQuery,
				Aggregation:                  info.Aggregation,
				ServiceInstanceIdentifierTag: info.ServiceInstanceIdentifierTag,
				IsManualQuery:                info.IsManualQuery,
			})
		}
	}
	return spec, nil
}

// DatadogLogQuery is a Datadog log search.
type DatadogLogQuery struct {
	LogQuery
	Indexes []string `json:"indexes,omitempty"`
}

// DatadogLogSpec monitors Datadog logs.
type DatadogLogSpec struct {
	ConnectorIdentifier string            `json:"connectorRef"`
	Feature             string            `json:"feature,omitempty"`
	Queries             []DatadogLogQuery `json:"queries"`
}

func (s DatadogLogSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeDatadogLog }
func (s DatadogLogSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s DatadogLogSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateLogQueries(&ve, "queries", s.Queries)
	for i, q := range s.Queries {
		ve.requireField(fmt.Sprintf("queries[%d].serviceInstanceIdentifier", i), q.ServiceInstanceIdentifier)
	}
	return ve.Err()
}

func (s DatadogLogSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	configs := make([]cvconfig.CVConfig, 0, len(s.Queries))
	for _, q := range s.Queries {
		configs = append(configs, req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.DatadogLogPayload{
			QueryName:                 q.Name,
			Query:                     q.Query,
			Indexes:                   slices.Clone(q.Indexes),
			ServiceInstanceIdentifier: q.ServiceInstanceIdentifier,
		}))
	}
	return configs, nil
}

func (s DatadogLogSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, queryNameKeyOf)
}

func transformDatadogLog(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeDatadogLog, configs); err != nil {
		return nil, err
	}
	spec := DatadogLogSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.DatadogLogPayload](c)
		spec.Queries = append(spec.Queries, DatadogLogQuery{
			LogQuery: LogQuery{
				Name:                      p.QueryName,
				Query:                     p.Query,
				ServiceInstanceIdentifier: p.ServiceInstanceIdentifier,
			},
			Indexes: p.Indexes,
		})
	}
	return spec, nil
}
