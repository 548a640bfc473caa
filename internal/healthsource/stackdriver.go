package healthsource

import (
	"context"
	"encoding/json"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// StackdriverDefinition is a metric of a Google Cloud Operations dashboard.
type StackdriverDefinition struct {
	MetricDefinition
	DashboardName        string `json:"dashboardName"`
	DashboardPath        string `json:"dashboardPath,omitempty"`
	JSONMetricDefinition string `json:"jsonMetricDefinition"`
	IsManualQuery        bool   `json:"isManualQuery,omitempty"`
}

// StackdriverSpec monitors Google Cloud Operations dashboards.
type StackdriverSpec struct {
	ConnectorIdentifier string                  `json:"connectorRef"`
	MetricDefinitions   []StackdriverDefinition `json:"metricDefinitions"`
}

type dashboardKey struct {
	dashboard string
	category  cvconfig.CVMonitoringCategory
}

func stackdriverKeyOf(c cvconfig.CVConfig) dashboardKey {
	return dashboardKey{dashboard: payloadOf[cvconfig.StackdriverPayload](c).DashboardName, category: c.Category}
}

func (s StackdriverSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeStackdriver }
func (s StackdriverSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s StackdriverSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".dashboardName", d.DashboardName)
		ve.requireField(prefix+".jsonMetricDefinition", d.JSONMetricDefinition)
	}
	return ve.Err()
}

func byDashboardAndCategory(d StackdriverDefinition) (dashboardKey, bool) {
	category, ok := d.category()
	return dashboardKey{dashboard: d.DashboardName, category: category}, ok
}

func (s StackdriverSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, groups := groupBy(s.MetricDefinitions, byDashboardAndCategory)
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		defs := groups[k]
		payload := cvconfig.StackdriverPayload{
			DashboardName: k.dashboard,
			DashboardPath: defs[0].DashboardPath,
			MetricInfos:   make([]cvconfig.StackdriverMetricInfo, 0, len(defs)),
		}
		for _, d := range defs {
			var definition map[string]any
			if err := json.Unmarshal([]byte(d.JSONMetricDefinition), &definition); err != nil {
				return nil, &MappingError{
					Type:    s.Type(),
					Field:   fmt.Sprintf("metricDefinitions[%s].jsonMetricDefinition", d.Identifier),
					Message: "invalid metric definition",
					Err:     err,
				}
			}
			payload.MetricInfos = append(payload.MetricInfos, cvconfig.StackdriverMetricInfo{
				MetricInfo:           d.metricInfo(),
				JSONMetricDefinition: definition,
				ServiceInstanceField: d.deploymentVerification().ServiceInstanceFieldName,
				IsManualQuery:        d.IsManualQuery,
			})
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, payload))
	}
	return configs, nil
}

func (s StackdriverSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, stackdriverKeyOf)
}

func transformStackdriver(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeStackdriver, configs); err != nil {
		return nil, err
	}
	spec := StackdriverSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.StackdriverPayload](c)
		for _, info := range p.MetricInfos {
			raw, err := json.Marshal(info.JSONMetricDefinition)
			if err != nil {
				return nil, &MappingError{Type: cvconfig.DataSourceTypeStackdriver, Field: info.Identifier, Err: err}
			}
			d := StackdriverDefinition{
				MetricDefinition:     definitionOf(info.MetricInfo, "", c.Category),
				DashboardName:        p.DashboardName,
				DashboardPath:        p.DashboardPath,
				JSONMetricDefinition: string(raw),
				IsManualQuery:        info.IsManualQuery,
			}
			d.Analysis.DeploymentVerification.ServiceInstanceFieldName = info.ServiceInstanceField
			spec.MetricDefinitions = append(spec.MetricDefinitions, d)
		}
	}
	return spec, nil
}

// StackdriverLogQuery is a Google Cloud Operations log filter.
type StackdriverLogQuery struct {
	LogQuery
	MessageIdentifier string `json:"messageIdentifier"`
}

// StackdriverLogSpec monitors Google Cloud Operations logs.
type StackdriverLogSpec struct {
	ConnectorIdentifier string                `json:"connectorRef"`
	Queries             []StackdriverLogQuery `json:"queries"`
}

func (s StackdriverLogSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeStackdriverLog }
func (s StackdriverLogSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s StackdriverLogSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateLogQueries(&ve, "queries", s.Queries)
	for i, q := range s.Queries {
		prefix := fmt.Sprintf("queries[%d]", i)
		ve.requireField(prefix+".messageIdentifier", q.MessageIdentifier)
		ve.requireField(prefix+".serviceInstanceIdentifier", q.ServiceInstanceIdentifier)
	}
	return ve.Err()
}

func (s StackdriverLogSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	configs := make([]cvconfig.CVConfig, 0, len(s.Queries))
	for _, q := range s.Queries {
		configs = append(configs, req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.StackdriverLogPayload{
			QueryName:                 q.Name,
			Query:                     q.Query,
			MessageIdentifier:         q.MessageIdentifier,
			ServiceInstanceIdentifier: q.ServiceInstanceIdentifier,
		}))
	}
	return configs, nil
}

func (s StackdriverLogSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, queryNameKeyOf)
}

func transformStackdriverLog(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeStackdriverLog, configs); err != nil {
		return nil, err
	}
	spec := StackdriverLogSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.StackdriverLogPayload](c)
		spec.Queries = append(spec.Queries, StackdriverLogQuery{
			LogQuery: LogQuery{
				Name:                      p.QueryName,
				Query:                     p.Query,
				ServiceInstanceIdentifier: p.ServiceInstanceIdentifier,
			},
			MessageIdentifier: p.MessageIdentifier,
		})
	}
	return spec, nil
}
