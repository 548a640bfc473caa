package healthsource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"healthsync/internal/cvconfig"
)

// Decoder builds a Spec from its JSON form.
type Decoder func(data []byte) (Spec, error)

// Transformer rebuilds a Spec from the configs of one health source.
type Transformer func(configs []cvconfig.CVConfig) (Spec, error)

// Registration binds one data source type to its decoder and transformer.
type Registration struct {
	Decode    Decoder
	Transform Transformer
}

// Registry dispatches specifications and stored configs to the health
// source implementation of their type. It is immutable after construction.
type Registry struct {
	entries map[cvconfig.DataSourceType]Registration
}

// NewRegistry returns a registry over the given table.
func NewRegistry(entries map[cvconfig.DataSourceType]Registration) *Registry {
	r := &Registry{entries: make(map[cvconfig.DataSourceType]Registration, len(entries))}
	for t, e := range entries {
		r.entries[t] = e
	}
	return r
}

// decodeStrict decodes data into S, rejecting unknown fields.
func decodeStrict[S Spec](data []byte) (Spec, error) {
	var s S
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultRegistry returns the registry of every built-in health source type.
func DefaultRegistry() *Registry {
	return NewRegistry(map[cvconfig.DataSourceType]Registration{
		cvconfig.DataSourceTypeAppDynamics:        {Decode: decodeStrict[AppDynamicsSpec], Transform: transformAppDynamics},
		cvconfig.DataSourceTypeNewRelic:           {Decode: decodeStrict[NewRelicSpec], Transform: transformNewRelic},
		cvconfig.DataSourceTypeDynatrace:          {Decode: decodeStrict[DynatraceSpec], Transform: transformDynatrace},
		cvconfig.DataSourceTypePrometheus:         {Decode: decodeStrict[PrometheusSpec], Transform: transformPrometheus},
		cvconfig.DataSourceTypeAwsPrometheus:      {Decode: decodeStrict[AwsPrometheusSpec], Transform: transformAwsPrometheus},
		cvconfig.DataSourceTypeStackdriver:        {Decode: decodeStrict[StackdriverSpec], Transform: transformStackdriver},
		cvconfig.DataSourceTypeStackdriverLog:     {Decode: decodeStrict[StackdriverLogSpec], Transform: transformStackdriverLog},
		cvconfig.DataSourceTypeDatadogMetrics:     {Decode: decodeStrict[DatadogMetricsSpec], Transform: transformDatadogMetrics},
		cvconfig.DataSourceTypeDatadogLog:         {Decode: decodeStrict[DatadogLogSpec], Transform: transformDatadogLog},
		cvconfig.DataSourceTypeSplunk:             {Decode: decodeStrict[SplunkSpec], Transform: transformSplunk},
		cvconfig.DataSourceTypeSplunkMetric:       {Decode: decodeStrict[SplunkMetricSpec], Transform: transformSplunkMetric},
		cvconfig.DataSourceTypeElasticSearch:      {Decode: decodeStrict[ElasticSearchSpec], Transform: transformElasticSearch},
		cvconfig.DataSourceTypeCloudWatchMetrics:  {Decode: decodeStrict[CloudWatchMetricsSpec], Transform: transformCloudWatchMetrics},
		cvconfig.DataSourceTypeErrorTracking:      {Decode: decodeStrict[ErrorTrackingSpec], Transform: transformErrorTracking},
		cvconfig.DataSourceTypeCustomHealthMetric: {Decode: decodeStrict[CustomHealthMetricSpec], Transform: transformCustomHealthMetric},
		cvconfig.DataSourceTypeCustomHealthLog:    {Decode: decodeStrict[CustomHealthLogSpec], Transform: transformCustomHealthLog},
	})
}

func (r *Registry) lookup(t cvconfig.DataSourceType) (Registration, error) {
	e, ok := r.entries[t]
	if !ok {
		return Registration{}, &UnknownTypeError{Type: t}
	}
	return e, nil
}

// Decode builds the Spec of type t from its JSON form. Unknown fields are
// rejected as validation errors.
func (r *Registry) Decode(t cvconfig.DataSourceType, data []byte) (Spec, error) {
	e, err := r.lookup(t)
	if err != nil {
		return nil, err
	}
	s, err := e.Decode(data)
	if err != nil {
		return nil, ValidationErrors{{Field: "spec", Message: fmt.Sprintf("invalid %s spec: %v", t, err)}}
	}
	return s, nil
}

// Transform rebuilds the Spec of type t from stored configs.
func (r *Registry) Transform(t cvconfig.DataSourceType, configs []cvconfig.CVConfig) (Spec, error) {
	e, err := r.lookup(t)
	if err != nil {
		return nil, err
	}
	return e.Transform(configs)
}

// Types returns the registered types, sorted by name.
func (r *Registry) Types() []cvconfig.DataSourceType {
	types := make([]cvconfig.DataSourceType, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
