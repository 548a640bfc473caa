package healthsource

import (
	"context"
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// SplunkSpec monitors Splunk log searches.
type SplunkSpec struct {
	ConnectorIdentifier string     `json:"connectorRef"`
	Feature             string     `json:"feature,omitempty"`
	Queries             []LogQuery `json:"queries"`
}

func (s SplunkSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeSplunk }
func (s SplunkSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s SplunkSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateLogQueries(&ve, "queries", s.Queries)
	for i, q := range s.Queries {
		ve.requireField(fmt.Sprintf("queries[%d].serviceInstanceIdentifier", i), q.ServiceInstanceIdentifier)
	}
	return ve.Err()
}

func (s SplunkSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	configs := make([]cvconfig.CVConfig, 0, len(s.Queries))
	for _, q := range s.Queries {
		configs = append(configs, req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.SplunkPayload{
			QueryName:                 q.Name,
			Query:                     q.Query,
			ServiceInstanceIdentifier: q.ServiceInstanceIdentifier,
		}))
	}
	return configs, nil
}

func (s SplunkSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, queryNameKeyOf)
}

func transformSplunk(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeSplunk, configs); err != nil {
		return nil, err
	}
	spec := SplunkSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.SplunkPayload](c)
		spec.Queries = append(spec.Queries, LogQuery{
			Name:                      p.QueryName,
			Query:                     p.Query,
			ServiceInstanceIdentifier: p.ServiceInstanceIdentifier,
		})
	}
	return spec, nil
}

// SplunkMetricDefinition is a Splunk search that yields a metric.
type SplunkMetricDefinition struct {
	MetricDefinition
	Query string `json:"query"`
}

// SplunkMetricSpec monitors metrics derived from Splunk searches.
type SplunkMetricSpec struct {
	ConnectorIdentifier string                   `json:"connectorRef"`
	Feature             string                   `json:"feature,omitempty"`
	MetricDefinitions   []SplunkMetricDefinition `json:"metricDefinitions"`
}

func splunkMetricKeyOf(c cvconfig.CVConfig) groupCategory {
	return groupCategory{group: payloadOf[cvconfig.SplunkMetricPayload](c).GroupName, category: c.Category}
}

func (s SplunkMetricSpec) Type() cvconfig.DataSourceType { return cvconfig.DataSourceTypeSplunkMetric }
func (s SplunkMetricSpec) ConnectorRef() string          { return s.ConnectorIdentifier }

func (s SplunkMetricSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		ve.requireField(prefix+".query", d.Query)
	}
	return ve.Err()
}

func (s SplunkMetricSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, groups := groupBy(s.MetricDefinitions, byGroupAndCategory[SplunkMetricDefinition])
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		payload := cvconfig.SplunkMetricPayload{GroupName: k.group}
		for _, d := range groups[k] {
			payload.MetricInfos = append(payload.MetricInfos, cvconfig.SplunkMetricInfo{MetricInfo: d.metricInfo(), Query: d.Query})
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, payload))
	}
	return configs, nil
}

func (s SplunkMetricSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, splunkMetricKeyOf)
}

func transformSplunkMetric(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeSplunkMetric, configs); err != nil {
		return nil, err
	}
	spec := SplunkMetricSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.SplunkMetricPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, SplunkMetricDefinition{
				MetricDefinition: definitionOf(info.MetricInfo, p.GroupName, c.Category),
				Query:            info.Query,
			})
		}
	}
	return spec, nil
}
