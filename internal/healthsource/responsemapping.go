package healthsource

import (
	"healthsync/internal/cvconfig"
	"healthsync/internal/jsonpath"
)

// MetricResponseMapping locates metric values in a JSON response.
type MetricResponseMapping struct {
	MetricValueJSONPath     string `json:"metricValueJsonPath"`
	TimestampJSONPath       string `json:"timestampJsonPath"`
	ServiceInstanceJSONPath string `json:"serviceInstanceJsonPath,omitempty"`
	TimestampFormat         string `json:"timestampFormat,omitempty"`
}

// deriveMapping validates m and fills in the relative paths. The service
// instance path is only required when hostBased is set.
func deriveMapping(t cvconfig.DataSourceType, field string, m *MetricResponseMapping, hostBased bool) (cvconfig.ResponseMapping, error) {
	if m == nil {
		m = &MetricResponseMapping{}
	}
	rel, err := jsonpath.Derive(jsonpath.Mapping{
		MetricValue:     m.MetricValueJSONPath,
		Timestamp:       m.TimestampJSONPath,
		ServiceInstance: m.ServiceInstanceJSONPath,
	}, hostBased)
	if err != nil {
		return cvconfig.ResponseMapping{}, &MappingError{Type: t, Field: field, Err: err}
	}

	mapping := cvconfig.ResponseMapping{
		MetricValueJSONPath:         m.MetricValueJSONPath,
		TimestampJSONPath:           m.TimestampJSONPath,
		TimestampFormat:             m.TimestampFormat,
		RelativeMetricListJSONPath:  rel.MetricList,
		RelativeMetricValueJSONPath: rel.MetricValue,
		RelativeTimestampJSONPath:   rel.Timestamp,
	}
	if hostBased {
		mapping.ServiceInstanceJSONPath = m.ServiceInstanceJSONPath
		mapping.RelativeServiceInstanceListPath = rel.ServiceInstanceList
		mapping.RelativeServiceInstanceJSONPath = rel.ServiceInstance
	}
	return mapping, nil
}

// specMapping is the inverse of deriveMapping.
func specMapping(m cvconfig.ResponseMapping) *MetricResponseMapping {
	return &MetricResponseMapping{
		MetricValueJSONPath:     m.MetricValueJSONPath,
		TimestampJSONPath:       m.TimestampJSONPath,
		ServiceInstanceJSONPath: m.ServiceInstanceJSONPath,
		TimestampFormat:         m.TimestampFormat,
	}
}
