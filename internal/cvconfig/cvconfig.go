package cvconfig

// Payload is the type-specific part of a CVConfig. The set of
// implementations is closed: only types in this package satisfy it.
type Payload interface {
	DataSourceType() DataSourceType
	// Label is a short human readable name for the unit of configuration,
	// such as a group, dashboard, query or metric pack name.
	Label() string

	isPayload()
}

// CVConfig is the persisted unit of monitoring configuration.
type CVConfig struct {
	// UUID is the persisted identity assigned by storage. It is empty on
	// configs freshly derived from a specification.
	UUID string `json:"uuid,omitempty"`

	Scope

	MonitoredServiceIdentifier string `json:"monitoredServiceIdentifier"`
	EnvironmentRef             string `json:"environmentRef,omitempty"`
	ServiceRef                 string `json:"serviceRef,omitempty"`

	// Identifier is the health source identifier the config was generated from.
	Identifier           string               `json:"identifier"`
	MonitoringSourceName string               `json:"monitoringSourceName"`
	ConnectorIdentifier  string               `json:"connectorIdentifier,omitempty"`
	Category             CVMonitoringCategory `json:"category"`
	Enabled              bool                 `json:"enabled"`

	Payload Payload `json:"-"`
}

// Type returns the discriminator of the config's payload.
func (c CVConfig) Type() DataSourceType {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.DataSourceType()
}

// Label returns the payload label, or an empty string without a payload.
func (c CVConfig) Label() string {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.Label()
}

// WithUUID returns a copy of c carrying the given persisted identity.
func (c CVConfig) WithUUID(uuid string) CVConfig {
	c.UUID = uuid
	return c
}

// IsPersisted reports whether storage has assigned an identity.
func (c CVConfig) IsPersisted() bool {
	return c.UUID != ""
}

// MetricInfo holds the analysis settings shared by every time series metric.
type MetricInfo struct {
	Identifier             string               `json:"identifier"`
	MetricName             string               `json:"metricName"`
	MetricType             TimeSeriesMetricType `json:"metricType,omitempty"`
	SLI                    bool                 `json:"sli"`
	LiveMonitoring         bool                 `json:"liveMonitoring"`
	DeploymentVerification bool                 `json:"deploymentVerification"`
	Thresholds             []Threshold          `json:"thresholds,omitempty"`
}

// Threshold is a metric pack analysis threshold.
type Threshold struct {
	Action       string  `json:"action"`
	CriteriaType string  `json:"criteriaType"`
	Value        float64 `json:"value"`
}

// MetricDefinition is one metric inside a metric pack.
type MetricDefinition struct {
	Identifier string               `json:"identifier"`
	Name       string               `json:"name"`
	Type       TimeSeriesMetricType `json:"type,omitempty"`
	Path       string               `json:"path,omitempty"`
	Included   bool                 `json:"included"`
	Thresholds []Threshold          `json:"thresholds,omitempty"`
}

// CustomPackIdentifier is the pack identifier given to user-defined metrics.
const CustomPackIdentifier = "Custom"

// MetricPack is a bundle of metrics analysed under one category.
type MetricPack struct {
	Identifier     string               `json:"identifier"`
	Category       CVMonitoringCategory `json:"category"`
	DataSourceType DataSourceType       `json:"dataSourceType"`
	Metrics        []MetricDefinition   `json:"metrics,omitempty"`
}

// IsCustom reports whether the pack holds user-defined metrics.
func (p MetricPack) IsCustom() bool {
	return p.Identifier == CustomPackIdentifier
}

// TimestampInfo describes how a custom request renders a time bound.
type TimestampInfo struct {
	Placeholder           string `json:"placeholder,omitempty"`
	TimestampFormat       string `json:"timestampFormat,omitempty"`
	CustomTimestampFormat string `json:"customTimestampFormat,omitempty"`
}

// RequestDefinition is the HTTP request a custom health source issues.
type RequestDefinition struct {
	Method        string        `json:"method"`
	URLPath       string        `json:"urlPath"`
	RequestBody   string        `json:"requestBody,omitempty"`
	StartTimeInfo TimestampInfo `json:"startTimeInfo"`
	EndTimeInfo   TimestampInfo `json:"endTimeInfo"`
}

// ResponseMapping locates metric values inside a JSON response. The
// Relative* fields are derived from the absolute paths during mapping.
type ResponseMapping struct {
	MetricValueJSONPath     string `json:"metricValueJsonPath"`
	TimestampJSONPath       string `json:"timestampJsonPath"`
	ServiceInstanceJSONPath string `json:"serviceInstanceJsonPath,omitempty"`
	TimestampFormat         string `json:"timestampFormat,omitempty"`

	RelativeMetricListJSONPath      string `json:"relativeMetricListJsonPath,omitempty"`
	RelativeMetricValueJSONPath     string `json:"relativeMetricValueJsonPath,omitempty"`
	RelativeTimestampJSONPath       string `json:"relativeTimestampJsonPath,omitempty"`
	RelativeServiceInstanceListPath string `json:"relativeServiceInstanceListPath,omitempty"`
	RelativeServiceInstanceJSONPath string `json:"relativeServiceInstanceJsonPath,omitempty"`
}
