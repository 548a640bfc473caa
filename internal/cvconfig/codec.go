package cvconfig

import (
	"encoding/json"
	"fmt"
	"slices"
)

type payloadDecoder func(json.RawMessage) (Payload, error)

var payloadDecoders = map[DataSourceType]payloadDecoder{
	DataSourceTypeAppDynamics:        decodeAs[AppDynamicsPayload],
	DataSourceTypeNewRelic:           decodeAs[NewRelicPayload],
	DataSourceTypeDynatrace:          decodeAs[DynatracePayload],
	DataSourceTypePrometheus:         decodeAs[PrometheusPayload],
	DataSourceTypeAwsPrometheus:      decodeAs[AwsPrometheusPayload],
	DataSourceTypeStackdriver:        decodeAs[StackdriverPayload],
	DataSourceTypeStackdriverLog:     decodeAs[StackdriverLogPayload],
	DataSourceTypeDatadogMetrics:     decodeAs[DatadogMetricsPayload],
	DataSourceTypeDatadogLog:         decodeAs[DatadogLogPayload],
	DataSourceTypeSplunk:             decodeAs[SplunkPayload],
	DataSourceTypeSplunkMetric:       decodeAs[SplunkMetricPayload],
	DataSourceTypeElasticSearch:      decodeAs[ElasticSearchPayload],
	DataSourceTypeCloudWatchMetrics:  decodeAs[CloudWatchMetricsPayload],
	DataSourceTypeErrorTracking:      decodeAs[ErrorTrackingPayload],
	DataSourceTypeCustomHealthMetric: decodeAs[CustomHealthMetricPayload],
	DataSourceTypeCustomHealthLog:    decodeAs[CustomHealthLogPayload],
}

func decodeAs[P Payload](raw json.RawMessage) (Payload, error) {
	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// DataSourceTypes returns every known type, sorted by name.
func DataSourceTypes() []DataSourceType {
	types := make([]DataSourceType, 0, len(payloadDecoders))
	for t := range payloadDecoders {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Known reports whether t is a registered data source type.
func (t DataSourceType) Known() bool {
	_, ok := payloadDecoders[t]
	return ok
}

// DecodePayload decodes raw into the payload struct registered for t.
func DecodePayload(t DataSourceType, raw json.RawMessage) (Payload, error) {
	decode, ok := payloadDecoders[t]
	if !ok {
		return nil, fmt.Errorf("unknown data source type %q", t)
	}
	p, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", t, err)
	}
	return p, nil
}

// plain drops the CVConfig methods so the codec can reuse the default
// struct encoding.
type plain CVConfig

type envelope struct {
	plain
	Type    DataSourceType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (c CVConfig) MarshalJSON() ([]byte, error) {
	if c.Payload == nil {
		return nil, fmt.Errorf("config %q has no payload", c.Identifier)
	}
	raw, err := json.Marshal(c.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", c.Type(), err)
	}
	return json.Marshal(envelope{plain: plain(c), Type: c.Type(), Payload: raw})
}

func (c *CVConfig) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Type == "" {
		return fmt.Errorf("config %q has no type", env.Identifier)
	}
	p, err := DecodePayload(env.Type, env.Payload)
	if err != nil {
		return err
	}
	*c = CVConfig(env.plain)
	c.Payload = p
	return nil
}
