package healthsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsync/internal/cvconfig"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr []string
	}{
		{
			name:    "appdynamics missing application",
			spec:    AppDynamicsSpec{ConnectorIdentifier: "appd", TierName: "docker"},
			wantErr: []string{"field 'applicationName': is required"},
		},
		{
			name: "appdynamics definition without path",
			spec: AppDynamicsSpec{
				ConnectorIdentifier: "appd", ApplicationName: "app", TierName: "docker",
				MetricDefinitions: []AppDynamicsMetricDefinition{{MetricDefinition: metricDef("m1", "g1", cvconfig.CategoryPerformance), BaseFolder: "Overall"}},
			},
			wantErr: []string{"metricDefinitions[0].completeMetricPath"},
		},
		{
			name: "duplicate metric identifier and name",
			spec: PrometheusSpec{
				ConnectorIdentifier: "prom",
				MetricDefinitions: []PrometheusMetricDefinition{
					{MetricDefinition: metricDef("m1", "g1", cvconfig.CategoryPerformance), Query: "a"},
					{MetricDefinition: metricDef("m1", "g1", cvconfig.CategoryPerformance), Query: "b"},
				},
			},
			wantErr: []string{"duplicate metric identifier", "duplicate metric name"},
		},
		{
			name: "unknown category",
			spec: SplunkMetricSpec{
				ConnectorIdentifier: "splunk",
				MetricDefinitions:   []SplunkMetricDefinition{{MetricDefinition: metricDef("m1", "g1", "Latency"), Query: "q"}},
			},
			wantErr: []string{"unknown monitoring category"},
		},
		{
			name: "prometheus deployment verification without instance field",
			spec: PrometheusSpec{
				ConnectorIdentifier: "prom",
				MetricDefinitions: []PrometheusMetricDefinition{{
					MetricDefinition: MetricDefinition{
						Identifier: "m1", MetricName: "m1", GroupName: "g1",
						Analysis: &Analysis{
							RiskProfile:            &RiskProfile{Category: cvconfig.CategoryErrors},
							DeploymentVerification: DeploymentVerification{Enabled: true},
						},
					},
					Query: "up",
				}},
			},
			wantErr: []string{"serviceInstanceFieldName': is required when deployment verification is enabled"},
		},
		{
			name:    "aws prometheus missing workspace",
			spec:    AwsPrometheusSpec{ConnectorIdentifier: "aws", Region: "us-east-1"},
			wantErr: []string{"field 'workspaceId': is required"},
		},
		{
			name:    "dynatrace missing service",
			spec:    DynatraceSpec{ConnectorIdentifier: "dt"},
			wantErr: []string{"field 'serviceId': is required"},
		},
		{
			name: "newrelic definition without response mapping",
			spec: NewRelicSpec{
				ConnectorIdentifier: "nr",
				MetricDefinitions:   []NewRelicMetricDefinition{{MetricDefinition: metricDef("m1", "g1", cvconfig.CategoryPerformance), NRQL: "SELECT 1"}},
			},
			wantErr: []string{"field 'metricDefinitions[0].responseMapping': is required"},
		},
		{
			name: "stackdriver missing dashboard",
			spec: StackdriverSpec{
				ConnectorIdentifier: "gcp",
				MetricDefinitions:   []StackdriverDefinition{{MetricDefinition: metricDef("m1", "", cvconfig.CategoryPerformance), JSONMetricDefinition: "{}"}},
			},
			wantErr: []string{"field 'metricDefinitions[0].dashboardName': is required"},
		},
		{
			name: "duplicate log query",
			spec: SplunkSpec{
				ConnectorIdentifier: "splunk",
				Queries: []LogQuery{
					{Name: "q1", Query: "error", ServiceInstanceIdentifier: "host"},
					{Name: "q2", Query: " error ", ServiceInstanceIdentifier: "host"},
				},
			},
			wantErr: []string{"field 'queries[1].query': duplicate query"},
		},
		{
			name: "datadog log missing instance identifier",
			spec: DatadogLogSpec{
				ConnectorIdentifier: "dd",
				Queries:             []DatadogLogQuery{{LogQuery: LogQuery{Name: "q1", Query: "status:error"}}},
			},
			wantErr: []string{"field 'queries[0].serviceInstanceIdentifier': is required"},
		},
		{
			name: "elasticsearch missing index",
			spec: ElasticSearchSpec{
				ConnectorIdentifier: "elk",
				Queries: []ElasticSearchQuery{{
					LogQuery:            LogQuery{Name: "q1", Query: "*", ServiceInstanceIdentifier: "host"},
					TimestampIdentifier: "@timestamp", MessageIdentifier: "message",
				}},
			},
			wantErr: []string{"field 'queries[0].index': is required"},
		},
		{
			name: "cloudwatch identifier",
			spec: CloudWatchMetricsSpec{
				ConnectorIdentifier: "aws", Region: "eu-west-1",
				MetricDefinitions: []CloudWatchMetricDefinition{{MetricDefinition: metricDef("CPU", "g1", cvconfig.CategoryInfrastructure), Expression: "x"}},
			},
			wantErr: []string{"must start with a lower case letter"},
		},
		{
			name: "custom health log post without body",
			spec: CustomHealthLogSpec{
				ConnectorIdentifier: "custom",
				LogDefinitions: []CustomHealthLogDefinition{{
					QueryName:          "logs",
					RequestDefinition:  cvconfig.RequestDefinition{Method: "POST", URLPath: "/logs"},
					LogMessageJSONPath: "$.[*].msg", TimestampJSONPath: "$.[*].ts", ServiceInstanceJSONPath: "$.[*].host",
				}},
			},
			wantErr: []string{"requestDefinition.requestBody': is required"},
		},
		{
			name:    "error tracking has no required fields",
			spec:    ErrorTrackingSpec{},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
