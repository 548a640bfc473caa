package healthsource

import (
	"context"
	"fmt"
	"regexp"

	"healthsync/internal/cvconfig"
	"healthsync/internal/reconciler"
)

// CloudWatch metric query ids must start with a lower case letter.
var cloudWatchIdentifier = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

// CloudWatchMetricDefinition is a metric computed by a CloudWatch expression.
type CloudWatchMetricDefinition struct {
	MetricDefinition
	Expression string `json:"expression"`
}

// CloudWatchMetricsSpec monitors CloudWatch metrics in one region.
type CloudWatchMetricsSpec struct {
	ConnectorIdentifier string                       `json:"connectorRef"`
	Feature             string                       `json:"feature,omitempty"`
	Region              string                       `json:"region"`
	MetricDefinitions   []CloudWatchMetricDefinition `json:"metricDefinitions"`
}

type cloudWatchKey struct {
	region   string
	group    string
	category cvconfig.CVMonitoringCategory
}

func cloudWatchKeyOf(c cvconfig.CVConfig) cloudWatchKey {
	p := payloadOf[cvconfig.CloudWatchMetricsPayload](c)
	return cloudWatchKey{region: p.Region, group: p.GroupName, category: c.Category}
}

func (s CloudWatchMetricsSpec) Type() cvconfig.DataSourceType {
	return cvconfig.DataSourceTypeCloudWatchMetrics
}
func (s CloudWatchMetricsSpec) ConnectorRef() string { return s.ConnectorIdentifier }

func (s CloudWatchMetricsSpec) Validate() error {
	var ve ValidationErrors
	ve.requireField("connectorRef", s.ConnectorIdentifier)
	ve.requireField("region", s.Region)
	validateDefinitions(&ve, "metricDefinitions", s.MetricDefinitions)
	for i, d := range s.MetricDefinitions {
		prefix := fmt.Sprintf("metricDefinitions[%d]", i)
		ve.requireField(prefix+".groupName", d.GroupName)
		ve.requireField(prefix+".expression", d.Expression)
		if d.Identifier != "" && !cloudWatchIdentifier.MatchString(d.Identifier) {
			ve.Add(prefix+".identifier", "must start with a lower case letter followed by letters, digits or underscores", d.Identifier)
		}
	}
	return ve.Err()
}

func (s CloudWatchMetricsSpec) CVConfigs(_ context.Context, req Request) ([]cvconfig.CVConfig, error) {
	order, groups := groupBy(s.MetricDefinitions, byGroupAndCategory[CloudWatchMetricDefinition])
	configs := make([]cvconfig.CVConfig, 0, len(order))
	for _, k := range order {
		payload := cvconfig.CloudWatchMetricsPayload{Region: s.Region, GroupName: k.group}
		for _, d := range groups[k] {
			payload.MetricInfos = append(payload.MetricInfos, cvconfig.CloudWatchMetricInfo{MetricInfo: d.metricInfo(), Expression: d.Expression})
		}
		configs = append(configs, req.base(s.ConnectorIdentifier, k.category, payload))
	}
	return configs, nil
}

func (s CloudWatchMetricsSpec) Reconcile(ctx context.Context, req Request, existing []cvconfig.CVConfig) (reconciler.MutationSet, error) {
	return reconcileSpec(ctx, s, req, existing, cloudWatchKeyOf)
}

func transformCloudWatchMetrics(configs []cvconfig.CVConfig) (Spec, error) {
	if err := sameSource(cvconfig.DataSourceTypeCloudWatchMetrics, configs); err != nil {
		return nil, err
	}
	spec := CloudWatchMetricsSpec{
		ConnectorIdentifier: configs[0].ConnectorIdentifier,
		Region:              payloadOf[cvconfig.CloudWatchMetricsPayload](configs[0]).Region,
	}
	for _, c := range configs {
		p := payloadOf[cvconfig.CloudWatchMetricsPayload](c)
		for _, info := range p.MetricInfos {
			spec.MetricDefinitions = append(spec.MetricDefinitions, CloudWatchMetricDefinition{
				MetricDefinition: definitionOf(info.MetricInfo, p.GroupName, c.Category),
				Expression:       info.Expression,
			})
		}
	}
	return spec, nil
}
