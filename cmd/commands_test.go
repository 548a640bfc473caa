package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_PlanThenApply(t *testing.T) {
	dir := testEnv(t)
	doc := writeDoc(t, dir, "payments.yaml", paymentsDoc)
	storePath := filepath.Join(dir, "store")

	out, _, err := execute(t, "reconcile", "-f", doc, "--store-path", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "payments_prod")
	assert.Contains(t, out, "1 to add, 0 to update, 0 to delete")

	// A plan does not write to the store.
	out, _, err = execute(t, "reconcile", "-f", doc, "--store-path", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 to add, 0 to update, 0 to delete")

	_, _, err = execute(t, "reconcile", "-f", doc, "--store-path", storePath, "--apply")
	require.NoError(t, err)

	out, _, err = execute(t, "reconcile", "-f", doc, "--store-path", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 to add, 1 to update, 0 to delete")
}

func TestReconcile_JSONOutput(t *testing.T) {
	dir := testEnv(t)
	doc := writeDoc(t, dir, "payments.yaml", paymentsDoc)

	out, _, err := execute(t, "reconcile", "-f", doc, "--store", "memory", "-o", "json")
	require.NoError(t, err)

	var plan struct {
		MonitoredServiceIdentifier string `json:"monitoredServiceIdentifier"`
		Changes                    []struct {
			Identifier string `json:"identifier"`
			Type       string `json:"type"`
			Mutations  struct {
				Added []map[string]any `json:"added"`
			} `json:"mutations"`
		} `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "payments_prod", plan.MonitoredServiceIdentifier)
	require.Len(t, plan.Changes, 1)
	assert.Equal(t, "logs", plan.Changes[0].Identifier)
	assert.Equal(t, "Splunk", plan.Changes[0].Type)
	require.Len(t, plan.Changes[0].Mutations.Added, 1)
	assert.Equal(t, "Splunk", plan.Changes[0].Mutations.Added[0]["type"])
}

func TestReconcile_Errors(t *testing.T) {
	dir := testEnv(t)

	tests := []struct {
		name     string
		doc      string
		args     []string
		wantCode int
	}{
		{
			name:     "missing file",
			args:     []string{"-f", filepath.Join(dir, "missing.yaml")},
			wantCode: ExitCodeError,
		},
		{
			name: "unknown type",
			doc: `
identifier: payments_prod
serviceRef: payments
environmentRef: prod
healthSources:
  - identifier: nagios
    name: Nagios
    type: Nagios
    spec: {}
`,
			wantCode: ExitCodeDispatch,
		},
		{
			name: "invalid health source",
			doc: `
identifier: payments_prod
serviceRef: payments
environmentRef: prod
healthSources:
  - identifier: logs
    name: Splunk logs
    type: Splunk
    spec:
      connectorRef: splunk-connector
      queries:
        - name: errors
          query: "level=error"
`,
			wantCode: ExitCodeValidation,
		},
		{
			name:     "unknown output format",
			doc:      paymentsDoc,
			args:     []string{"-o", "xml"},
			wantCode: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"reconcile", "--store", "memory"}
			if tt.doc != "" {
				args = append(args, "-f", writeDoc(t, t.TempDir(), "doc.yaml", tt.doc))
			}
			args = append(args, tt.args...)

			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, getExitCode(err))
		})
	}
}

func TestValidate(t *testing.T) {
	dir := testEnv(t)
	good := writeDoc(t, dir, "good.yaml", paymentsDoc)
	bad := writeDoc(t, dir, "bad.yaml", `
identifier: payments_prod
environmentRef: prod
healthSources: []
`)

	out, _, err := execute(t, "validate", "-f", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.yaml is valid (1 health sources)")

	out, stderr, err := execute(t, "validate", "-f", good, "-f", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
	assert.Contains(t, out, "good.yaml is valid")
	assert.Contains(t, stderr, "bad.yaml")
	assert.Contains(t, stderr, "serviceRef")
}

func TestDescribe(t *testing.T) {
	dir := testEnv(t)
	doc := writeDoc(t, dir, "payments.yaml", paymentsDoc)
	storePath := filepath.Join(dir, "store")
	scope := []string{"--store-path", storePath, "--account", "acc", "--org", "org", "--project", "proj"}

	_, _, err := execute(t, append([]string{"describe", "payments_prod"}, scope...)...)
	require.Error(t, err)

	_, _, err = execute(t, "reconcile", "-f", doc, "--store-path", storePath, "--apply")
	require.NoError(t, err)

	out, _, err := execute(t, append([]string{"describe", "payments_prod"}, scope...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "identifier: payments_prod")
	assert.Contains(t, out, "type: Splunk")
	assert.Contains(t, out, "connectorRef: splunk-connector")

	// The described document reconciles without additions or deletions.
	described := writeDoc(t, dir, "described.yaml", out)
	out, _, err = execute(t, append([]string{"reconcile", "-f", described}, scope...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "0 to add, 1 to update, 0 to delete")
}

func TestTypes(t *testing.T) {
	testEnv(t)

	out, _, err := execute(t, "types", "-o", "json")
	require.NoError(t, err)
	for _, want := range []string{"AppDynamics", "Splunk", "CustomHealth", "ErrorTracking"} {
		assert.Contains(t, out, want)
	}
}
