package cvconfig

import (
	"fmt"
	"slices"
	"strings"
)

// DataSourceType identifies the kind of health source. It doubles as the
// discriminator of the Payload union and of the health-source specification.
type DataSourceType string

const (
	DataSourceTypeAppDynamics        DataSourceType = "AppDynamics"
	DataSourceTypeNewRelic           DataSourceType = "NewRelic"
	DataSourceTypeDynatrace          DataSourceType = "Dynatrace"
	DataSourceTypePrometheus         DataSourceType = "Prometheus"
	DataSourceTypeAwsPrometheus      DataSourceType = "AwsPrometheus"
	DataSourceTypeStackdriver        DataSourceType = "Stackdriver"
	DataSourceTypeStackdriverLog     DataSourceType = "StackdriverLog"
	DataSourceTypeDatadogMetrics     DataSourceType = "DatadogMetrics"
	DataSourceTypeDatadogLog         DataSourceType = "DatadogLog"
	DataSourceTypeSplunk             DataSourceType = "Splunk"
	DataSourceTypeSplunkMetric       DataSourceType = "SplunkMetric"
	DataSourceTypeElasticSearch      DataSourceType = "ElasticSearch"
	DataSourceTypeCloudWatchMetrics  DataSourceType = "CloudWatchMetrics"
	DataSourceTypeErrorTracking      DataSourceType = "ErrorTracking"
	DataSourceTypeCustomHealthMetric DataSourceType = "CustomHealthMetric"
	DataSourceTypeCustomHealthLog    DataSourceType = "CustomHealthLog"
)

var logDataSourceTypes = []DataSourceType{
	DataSourceTypeStackdriverLog,
	DataSourceTypeDatadogLog,
	DataSourceTypeSplunk,
	DataSourceTypeElasticSearch,
	DataSourceTypeCustomHealthLog,
	DataSourceTypeErrorTracking,
}

// IsLog reports whether the type produces log (as opposed to time series) configs.
func (t DataSourceType) IsLog() bool {
	return slices.Contains(logDataSourceTypes, t)
}

// CVMonitoringCategory is the risk category a config is analysed under.
type CVMonitoringCategory string

const (
	CategoryPerformance    CVMonitoringCategory = "Performance"
	CategoryErrors         CVMonitoringCategory = "Errors"
	CategoryInfrastructure CVMonitoringCategory = "Infrastructure"
)

var categories = []CVMonitoringCategory{CategoryPerformance, CategoryErrors, CategoryInfrastructure}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (CVMonitoringCategory, error) {
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown monitoring category %q", s)
}

// Valid reports whether c is one of the known categories.
func (c CVMonitoringCategory) Valid() bool {
	return slices.Contains(categories, c)
}

// TimeSeriesMetricType classifies a metric for analysis.
type TimeSeriesMetricType string

const (
	MetricTypeResponseTime TimeSeriesMetricType = "RESP_TIME"
	MetricTypeThroughput   TimeSeriesMetricType = "THROUGHPUT"
	MetricTypeError        TimeSeriesMetricType = "ERROR"
	MetricTypeInfra        TimeSeriesMetricType = "INFRA"
	MetricTypeApdex        TimeSeriesMetricType = "APDEX"
	MetricTypeOther        TimeSeriesMetricType = "OTHER"
)

// HealthSourceQueryType tells whether a custom health query returns one
// series per service instance or one series for the whole service.
type HealthSourceQueryType string

const (
	QueryTypeHostBased    HealthSourceQueryType = "HOST_BASED"
	QueryTypeServiceBased HealthSourceQueryType = "SERVICE_BASED"
)

// Scope is the account/org/project triple every config is stored under.
type Scope struct {
	AccountID         string `json:"accountId"`
	OrgIdentifier     string `json:"orgIdentifier"`
	ProjectIdentifier string `json:"projectIdentifier"`
}

func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.AccountID, s.OrgIdentifier, s.ProjectIdentifier)
}

// IsZero reports whether no scope field is set.
func (s Scope) IsZero() bool {
	return s == Scope{}
}
