package cvconfig

// packLabel names a metric pack config by its pack, or by its group when the
// pack holds custom metrics.
func packLabel(pack MetricPack, group string) string {
	if pack.IsCustom() {
		return group
	}
	return pack.Identifier
}

// AppDynamicsMetricInfo is a custom AppDynamics metric.
type AppDynamicsMetricInfo struct {
	MetricInfo
	BaseFolder         string `json:"baseFolder,omitempty"`
	MetricPath         string `json:"metricPath,omitempty"`
	CompleteMetricPath string `json:"completeMetricPath,omitempty"`
}

// AppDynamicsPayload is one metric pack of an AppDynamics application tier.
type AppDynamicsPayload struct {
	ApplicationName string                  `json:"applicationName"`
	TierName        string                  `json:"tierName"`
	GroupName       string                  `json:"groupName,omitempty"`
	MetricPack      MetricPack              `json:"metricPack"`
	MetricInfos     []AppDynamicsMetricInfo `json:"metricInfos,omitempty"`
}

func (AppDynamicsPayload) DataSourceType() DataSourceType { return DataSourceTypeAppDynamics }
func (p AppDynamicsPayload) Label() string                { return packLabel(p.MetricPack, p.GroupName) }
func (AppDynamicsPayload) isPayload()                     {}

// NewRelicMetricInfo is a custom NRQL metric.
type NewRelicMetricInfo struct {
	MetricInfo
	NRQL            string          `json:"nrql"`
	ResponseMapping ResponseMapping `json:"responseMapping"`
}

// NewRelicPayload is one metric pack of a New Relic application.
type NewRelicPayload struct {
	ApplicationName string               `json:"applicationName"`
	ApplicationID   int64                `json:"applicationId"`
	GroupName       string               `json:"groupName,omitempty"`
	MetricPack      MetricPack           `json:"metricPack"`
	MetricInfos     []NewRelicMetricInfo `json:"metricInfos,omitempty"`
}

func (NewRelicPayload) DataSourceType() DataSourceType { return DataSourceTypeNewRelic }
func (p NewRelicPayload) Label() string                { return packLabel(p.MetricPack, p.GroupName) }
func (NewRelicPayload) isPayload()                     {}

// DynatraceMetricInfo is a custom Dynatrace metric selector.
type DynatraceMetricInfo struct {
	MetricInfo
	MetricSelector string `json:"metricSelector"`
	IsManualQuery  bool   `json:"isManualQuery"`
}

// DynatracePayload is one metric pack of a Dynatrace service.
type DynatracePayload struct {
	ServiceID        string                `json:"serviceId"`
	ServiceName      string                `json:"serviceName,omitempty"`
	ServiceMethodIDs []string              `json:"serviceMethodIds,omitempty"`
	GroupName        string                `json:"groupName,omitempty"`
	MetricPack       MetricPack            `json:"metricPack"`
	MetricInfos      []DynatraceMetricInfo `json:"metricInfos,omitempty"`
}

func (DynatracePayload) DataSourceType() DataSourceType { return DataSourceTypeDynatrace }
func (p DynatracePayload) Label() string                { return packLabel(p.MetricPack, p.GroupName) }
func (DynatracePayload) isPayload()                     {}

// PrometheusMetricInfo is shared by Prometheus and AWS managed Prometheus.
type PrometheusMetricInfo struct {
	MetricInfo
	Query                    string `json:"query"`
	ServiceInstanceFieldName string `json:"serviceInstanceFieldName,omitempty"`
	IsManualQuery            bool   `json:"isManualQuery"`
}

// PrometheusPayload is one metric group of a Prometheus health source.
type PrometheusPayload struct {
	GroupName   string                 `json:"groupName"`
	MetricInfos []PrometheusMetricInfo `json:"metricInfos"`
}

func (PrometheusPayload) DataSourceType() DataSourceType { return DataSourceTypePrometheus }
func (p PrometheusPayload) Label() string                { return p.GroupName }
func (PrometheusPayload) isPayload()                     {}

// AwsPrometheusPayload is one metric group of an Amazon Managed Prometheus workspace.
type AwsPrometheusPayload struct {
	Region      string                 `json:"region"`
	WorkspaceID string                 `json:"workspaceId"`
	GroupName   string                 `json:"groupName"`
	MetricInfos []PrometheusMetricInfo `json:"metricInfos"`
}

func (AwsPrometheusPayload) DataSourceType() DataSourceType { return DataSourceTypeAwsPrometheus }
func (p AwsPrometheusPayload) Label() string                { return p.GroupName }
func (AwsPrometheusPayload) isPayload()                     {}

// StackdriverMetricInfo carries the parsed monitoring dashboard definition.
type StackdriverMetricInfo struct {
	MetricInfo
	JSONMetricDefinition map[string]any `json:"jsonMetricDefinition"`
	ServiceInstanceField string         `json:"serviceInstanceField,omitempty"`
	IsManualQuery        bool           `json:"isManualQuery"`
}

// StackdriverPayload is one dashboard of Google Cloud Operations metrics.
type StackdriverPayload struct {
	DashboardName string                  `json:"dashboardName"`
	DashboardPath string                  `json:"dashboardPath,omitempty"`
	MetricInfos   []StackdriverMetricInfo `json:"metricInfos"`
}

func (StackdriverPayload) DataSourceType() DataSourceType { return DataSourceTypeStackdriver }
func (p StackdriverPayload) Label() string                { return p.DashboardName }
func (StackdriverPayload) isPayload()                     {}

// StackdriverLogPayload is one Google Cloud Operations log query.
type StackdriverLogPayload struct {
	QueryName                 string `json:"queryName"`
	Query                     string `json:"query"`
	MessageIdentifier         string `json:"messageIdentifier"`
	ServiceInstanceIdentifier string `json:"serviceInstanceIdentifier"`
}

func (StackdriverLogPayload) DataSourceType() DataSourceType { return DataSourceTypeStackdriverLog }
func (p StackdriverLogPayload) Label() string                { return p.QueryName }
func (StackdriverLogPayload) isPayload()                     {}

// DatadogMetricInfo is one metric of a Datadog dashboard.
type DatadogMetricInfo struct {
	MetricInfo
	Query                        string `json:"query"`
	GroupingQuery                string `json:"groupingQuery,omitempty"`
	Aggregation                  string `json:"aggregation,omitempty"`
	ServiceInstanceIdentifierTag string `json:"serviceInstanceIdentifierTag,omitempty"`
	IsManualQuery                bool   `json:"isManualQuery"`
}

// DatadogMetricsPayload is one Datadog dashboard.
type DatadogMetricsPayload struct {
	DashboardName string              `json:"dashboardName"`
	DashboardID   string              `json:"dashboardId,omitempty"`
	MetricInfos   []DatadogMetricInfo `json:"metricInfos"`
}

func (DatadogMetricsPayload) DataSourceType() DataSourceType { return DataSourceTypeDatadogMetrics }
func (p DatadogMetricsPayload) Label() string                { return p.DashboardName }
func (DatadogMetricsPayload) isPayload()                     {}

// DatadogLogPayload is one Datadog log query.
type DatadogLogPayload struct {
	QueryName                 string   `json:"queryName"`
	Query                     string   `json:"query"`
	Indexes                   []string `json:"indexes,omitempty"`
	ServiceInstanceIdentifier string   `json:"serviceInstanceIdentifier"`
}

func (DatadogLogPayload) DataSourceType() DataSourceType { return DataSourceTypeDatadogLog }
func (p DatadogLogPayload) Label() string                { return p.QueryName }
func (DatadogLogPayload) isPayload()                     {}

// SplunkPayload is one Splunk log query.
type SplunkPayload struct {
	QueryName                 string `json:"queryName"`
	Query                     string `json:"query"`
	ServiceInstanceIdentifier string `json:"serviceInstanceIdentifier"`
}

func (SplunkPayload) DataSourceType() DataSourceType { return DataSourceTypeSplunk }
func (p SplunkPayload) Label() string                { return p.QueryName }
func (SplunkPayload) isPayload()                     {}

// SplunkMetricInfo is one Splunk metric query.
type SplunkMetricInfo struct {
	MetricInfo
	Query string `json:"query"`
}

// SplunkMetricPayload is one metric group of a Splunk health source.
type SplunkMetricPayload struct {
	GroupName   string             `json:"groupName"`
	MetricInfos []SplunkMetricInfo `json:"metricInfos"`
}

func (SplunkMetricPayload) DataSourceType() DataSourceType { return DataSourceTypeSplunkMetric }
func (p SplunkMetricPayload) Label() string                { return p.GroupName }
func (SplunkMetricPayload) isPayload()                     {}

// ElasticSearchPayload is one Elasticsearch log query.
type ElasticSearchPayload struct {
	QueryName                 string `json:"queryName"`
	Query                     string `json:"query"`
	Index                     string `json:"index"`
	ServiceInstanceIdentifier string `json:"serviceInstanceIdentifier"`
	TimestampIdentifier       string `json:"timestampIdentifier"`
	MessageIdentifier         string `json:"messageIdentifier"`
	TimestampFormat           string `json:"timestampFormat,omitempty"`
}

func (ElasticSearchPayload) DataSourceType() DataSourceType { return DataSourceTypeElasticSearch }
func (p ElasticSearchPayload) Label() string                { return p.QueryName }
func (ElasticSearchPayload) isPayload()                     {}

// CloudWatchMetricInfo is one CloudWatch metric expression.
type CloudWatchMetricInfo struct {
	MetricInfo
	Expression string `json:"expression"`
}

// CloudWatchMetricsPayload is one metric group of a CloudWatch region.
type CloudWatchMetricsPayload struct {
	Region      string                 `json:"region"`
	GroupName   string                 `json:"groupName"`
	MetricInfos []CloudWatchMetricInfo `json:"metricInfos"`
}

func (CloudWatchMetricsPayload) DataSourceType() DataSourceType {
	return DataSourceTypeCloudWatchMetrics
}
func (p CloudWatchMetricsPayload) Label() string { return p.GroupName }
func (CloudWatchMetricsPayload) isPayload()      {}

// ErrorTrackingPayload has no query: the whole monitored service is tracked.
type ErrorTrackingPayload struct {
	Feature string `json:"feature,omitempty"`
}

func (ErrorTrackingPayload) DataSourceType() DataSourceType { return DataSourceTypeErrorTracking }
func (p ErrorTrackingPayload) Label() string                { return p.Feature }
func (ErrorTrackingPayload) isPayload()                     {}

// CustomHealthMetricInfo is one metric read from a custom HTTP endpoint.
type CustomHealthMetricInfo struct {
	MetricInfo
	RequestDefinition RequestDefinition `json:"requestDefinition"`
	ResponseMapping   ResponseMapping   `json:"responseMapping"`
}

// CustomHealthMetricPayload is one metric group of a custom health source.
type CustomHealthMetricPayload struct {
	GroupName   string                   `json:"groupName"`
	QueryType   HealthSourceQueryType    `json:"queryType"`
	MetricInfos []CustomHealthMetricInfo `json:"metricInfos"`
}

func (CustomHealthMetricPayload) DataSourceType() DataSourceType {
	return DataSourceTypeCustomHealthMetric
}
func (p CustomHealthMetricPayload) Label() string { return p.GroupName }
func (CustomHealthMetricPayload) isPayload()      {}

// CustomHealthLogPayload is one log query against a custom HTTP endpoint.
type CustomHealthLogPayload struct {
	QueryName               string            `json:"queryName"`
	RequestDefinition       RequestDefinition `json:"requestDefinition"`
	LogMessageJSONPath      string            `json:"logMessageJsonPath"`
	TimestampJSONPath       string            `json:"timestampJsonPath"`
	ServiceInstanceJSONPath string            `json:"serviceInstanceJsonPath"`
}

func (CustomHealthLogPayload) DataSourceType() DataSourceType {
	return DataSourceTypeCustomHealthLog
}
func (p CustomHealthLogPayload) Label() string { return p.QueryName }
func (CustomHealthLogPayload) isPayload()      {}
