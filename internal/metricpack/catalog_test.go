package metricpack

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsync/internal/cvconfig"
)

var testScope = cvconfig.Scope{AccountID: "acc", OrgIdentifier: "org", ProjectIdentifier: "proj"}

func TestNewCatalog_Defaults(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	packs, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypeAppDynamics)
	require.NoError(t, err)
	require.Len(t, packs, 3)

	perf, ok := FindPack(packs, "Performance")
	require.True(t, ok)
	assert.Equal(t, cvconfig.CategoryPerformance, perf.Category)
	assert.Equal(t, cvconfig.DataSourceTypeAppDynamics, perf.DataSourceType)
	assert.NotEmpty(t, perf.Metrics)
	assert.Equal(t, 50.0, perf.Metrics[0].Thresholds[0].Value)

	errs, ok := FindPack(packs, "Errors")
	require.True(t, ok)
	assert.Equal(t, 0.05, errs.Metrics[0].Thresholds[0].Value)

	_, ok = FindPack(packs, "Missing")
	assert.False(t, ok)
}

func TestCatalog_UnknownTypeHasNoPacks(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	packs, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypePrometheus)
	require.NoError(t, err)
	assert.Empty(t, packs)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	first, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypeNewRelic)
	require.NoError(t, err)
	first[0].Metrics[0].Name = "changed"

	second, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypeNewRelic)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second[0].Metrics[0].Name)
}

func TestCatalog_RegisterIsScoped(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	catalog.Register(testScope, cvconfig.MetricPack{
		Identifier:     "Performance",
		Category:       cvconfig.CategoryPerformance,
		DataSourceType: cvconfig.DataSourceTypeDynatrace,
		Metrics:        []cvconfig.MetricDefinition{{Identifier: "only", Name: "Only", Included: true}},
	})

	packs, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypeDynatrace)
	require.NoError(t, err)
	perf, ok := FindPack(packs, "Performance")
	require.True(t, ok)
	require.Len(t, perf.Metrics, 1)
	assert.Equal(t, "only", perf.Metrics[0].Identifier)

	other := cvconfig.Scope{AccountID: "other"}
	packs, err = catalog.GetMetricPacks(context.Background(), other, cvconfig.DataSourceTypeDynatrace)
	require.NoError(t, err)
	perf, _ = FindPack(packs, "Performance")
	assert.Len(t, perf.Metrics, 2)
}

func TestCatalog_LoadFile(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "packs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
packs:
  - dataSourceType: Prometheus
    identifier: Performance
    category: performance
    metrics:
      - name: Request Latency
        identifier: latency
        included: "false"
        thresholds:
          - action: FailImmediately
            criteriaType: Absolute
            value: "1.5"
`), 0o644))
	require.NoError(t, catalog.LoadFile(path))

	packs, err := catalog.GetMetricPacks(context.Background(), testScope, cvconfig.DataSourceTypePrometheus)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, cvconfig.CategoryPerformance, packs[0].Category)
	assert.False(t, packs[0].Metrics[0].Included)
	assert.Equal(t, 1.5, packs[0].Metrics[0].Thresholds[0].Value)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown type", data: "packs:\n  - dataSourceType: Graphite\n    identifier: P\n    category: Performance\n"},
		{name: "missing identifier", data: "packs:\n  - dataSourceType: AppDynamics\n    category: Performance\n"},
		{name: "unknown category", data: "packs:\n  - dataSourceType: AppDynamics\n    identifier: P\n    category: Latency\n"},
		{name: "bad threshold", data: "packs:\n  - dataSourceType: AppDynamics\n    identifier: P\n    category: Errors\n    metrics:\n      - identifier: m\n        thresholds:\n          - value: high\n"},
		{name: "bad included flag", data: "packs:\n  - dataSourceType: AppDynamics\n    identifier: P\n    category: Errors\n    metrics:\n      - identifier: m\n        included: maybe\n"},
		{name: "not yaml", data: "packs: [::"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_CancelledContext(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = catalog.GetMetricPacks(ctx, testScope, cvconfig.DataSourceTypeAppDynamics)
	assert.ErrorIs(t, err, context.Canceled)
}
