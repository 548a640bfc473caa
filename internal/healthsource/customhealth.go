package healthsource

import (
	"context"
	"fmt"
	"net/http"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

func validateRequest(ve *ValidationErrors, prefix string, r cvconfig.RequestDefinition) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		ve.Add(prefix+".method", "must be GET or POST", r.Method)
	}
	ve.requireField(prefix+".urlPath", r.URLPath)
	if r.Method == http.MethodPost {
		ve.requireField(prefix+".requestBody", r.RequestBody)
	}
}

// CustomHealthMetricDefinition is a metric read from an HTTP response.
type CustomHealthMetricDefinition struct {
	MetricDefinition
	QueryType         cvconfig.HealthSourceQueryType `json:"queryType"`
	RequestDefinition cvconfig.RequestDefinition     `json:"requestDefinition"`
	ResponseMapping   *MetricResponseMapping         `json:"responseMapping,omitempty"`
}

// CustomHealthMetricSpec monitors metrics served by arbitrary HTTP endpoints.
type CustomHealthMetricSpec struct {
	ConnectorIdentifier string                         `json:"connectorRef"`
	MetricDefinitions   []CustomHealthMetricDefinition `json:"metricDefinitions"`
}

type customHealthKey struct {
	group     string
	category  cvconfig.CVMonitoringCategory
	queryType cvconfig.HealthSourceQueryType
}

func customHealthMetricKeyOf(c cvconfig.CVConfig) customHealthKey {
	p := payloadOf[cvconfig.CustomHealthMetricPayload](c)
	return customHealthKey{group: p.GroupName, category: c.Category, queryType: p.QueryType}
}

func byGroupCategoryAndQueryType(d CustomHealthMetricDefinition) (customHealthKey, bool) {
	category, ok := d.category()
	return customHealthKey{group: d.GroupName, category: category, queryType: d.QueryType}, ok
}

func (s CustomHealthMetricSpec) Type() cvconfig.DataSourceType {
	return cvconfig.DataSourceTypeCustomHealthMetric
}
func (s CustomHealthMetricSpec) ConnectorRef() string { return s.ConnectorIdentifier }

// Validate checks the query type rules: host based queries return one
// series per instance and cannot back an SLI, service based queries cannot
// tell instances apart and cannot be used for deployment verification.
func (s CustomHealthMetricSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		validateRequest(&ve, prefix+".requestDefinition", d.RequestDefinition)
		if d.ResponseMapping == nil {
			ve.Add(prefix+".responseMapping", "is required")
		}

		switch d.QueryType {
		case cvconfig.QueryTypeHostBased:
			if d.sliEnabled() {
				ve.Add(prefix+".sli", "host based queries can not be used for SLI")
			}
		case cvconfig.QueryTypeServiceBased:
			if d.deploymentVerification().Enabled {
				ve.Add(prefix+".analysis.deploymentVerification", "service based queries can not be used for deployment verification")
			}
		default:
			ve.Add(prefix+".queryType", "must be HOST_BASED or SERVICE_BASED", d.QueryType)
		}
	}
	return ve.Err()
}

func (s CustomHealthMetricSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, groups := groupBy(s.MetricDefinitions, byGroupCategoryAndQueryType)
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		payload := cvconfig.CustomHealthMetricPayload{GroupName: k.group, QueryType: k.queryType}
		for _, d := range groups[k] {
			field := fmt.Sprintf("metricDefinitions[%s].responseMapping", d.Identifier)
			mapping, err := deriveMapping(s.Type(), field, d.ResponseMapping, k.queryType == cvconfig.QueryTypeHostBased)
			if err != nil {
				return nil, err
			}
			payload.MetricInfos = append(payload.MetricInfos, cvconfig.CustomHealthMetricInfo{
				MetricInfo:        d.metricInfo(),
				RequestDefinition: d.RequestDefinition,
				ResponseMapping:   mapping,
			})
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, payload))
	}
	return configs, nil
}

func (s CustomHealthMetricSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, customHealthMetricKeyOf)
}

func transformCustomHealthMetric(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeCustomHealthMetric, configs); err != nil {
		return nil, err
	}
	spec := CustomHealthMetricSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.CustomHealthMetricPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, CustomHealthMetricDefinition{
				MetricDefinition:  definitionOf(info.MetricInfo, p.GroupName, c.Category),
				QueryType:         p.QueryType,
				RequestDefinition: info.RequestDefinition,
				ResponseMapping:   specMapping(info.ResponseMapping),
			})
		}
	}
	return spec, nil
}

// CustomHealthLogDefinition is a log query read from an HTTP response.
type CustomHealthLogDefinition struct {
	QueryName               string                     `json:"queryName"`
	RequestDefinition       cvconfig.RequestDefinition `json:"requestDefinition"`
	LogMessageJSONPath      string                     `json:"logMessageJsonPath"`
	TimestampJSONPath       string                     `json:"timestampJsonPath"`
	ServiceInstanceJSONPath string                     `json:"serviceInstanceJsonPath"`
}

func (d CustomHealthLogDefinition) logQuery() LogQuery {
	return LogQuery{
		Name:  d.QueryName,
		Query: d.RequestDefinition.Method + " " + d.RequestDefinition.URLPath + " " + d.RequestDefinition.RequestBody,
	}
}

// CustomHealthLogSpec monitors logs served by arbitrary HTTP endpoints.
type CustomHealthLogSpec struct {
	ConnectorIdentifier string                      `json:"connectorRef"`
	LogDefinitions      []CustomHealthLogDefinition `json:"logDefinitions"`
}

func (s CustomHealthLogSpec) Type() cvconfig.DataSourceType {
	return cvconfig.DataSourceTypeCustomHealthLog
}
func (s CustomHealthLogSpec) ConnectorRef() string { return s.ConnectorIdentifier }

func (s CustomHealthLogSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	validateLogQueries(&ve, "logDefinitions", s.LogDefinitions)
	for i, d := range s.LogDefinitions {
		prefix := fmt.Sprintf("logDefinitions[%d]", i)
		validateRequest(&ve, prefix+".requestDefinition", d.RequestDefinition)
		ve.requireField(prefix+".logMessageJsonPath", d.LogMessageJSONPath)
		ve.requireField(prefix+".timestampJsonPath", d.TimestampJSONPath)
		ve.requireField(prefix+".serviceInstanceJsonPath", d.ServiceInstanceJSONPath)
	}
	return ve.Err()
}

func (s CustomHealthLogSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	configs := make([]cvconfig.CVConfig, 0, len(s.LogDefinitions))
	for _, d := range s.LogDefinitions {
		configs = append(configs, req.base(s.ConnectorIdentifier, cvconfig.CategoryErrors, cvconfig.CustomHealthLogPayload{
			QueryName:               d.QueryName,
			RequestDefinition:       d.RequestDefinition,
			LogMessageJSONPath:      d.LogMessageJSONPath,
			TimestampJSONPath:       d.TimestampJSONPath,
			ServiceInstanceJSONPath: d.ServiceInstanceJSONPath,
		}))
	}
	return configs, nil
}

func (s CustomHealthLogSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, queryNameKeyOf)
}

func transformCustomHealthLog(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeCustomHealthLog, configs); err != nil {
		return nil, err
	}
	spec := CustomHealthLogSpec{ConnectorIdentifier: configs[0].ConnectorIdentifier}
	for _, c := range configs {
		p := payloadOf[cvconfig.CustomHealthLogPayload](c)
		spec.LogDefinitions = append(spec.LogDefinitions, CustomHealthLogDefinition{
			QueryName:               p.QueryName,
			RequestDefinition:       p.RequestDefinition,
			LogMessageJSONPath:      p.LogMessageJSONPath,
			TimestampJSONPath:       p.TimestampJSONPath,
			ServiceInstanceJSONPath: p.ServiceInstanceJSONPath,
		})
	}
	return spec, nil
}
