package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsync/internal/config"
	"healthsync/internal/cvconfig"
	"healthsync/internal/healthsource"
	"healthsync/internal/reconciler"
)

const paymentsDoc = `
identifier: payments_prod
name: Payments
accountId: acc
orgIdentifier: org
projectIdentifier: proj
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
          serviceInstanceIdentifier: host
`

// testEnv isolates a command run from the user's home and working directory.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs a fresh command tree and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")

	if GetVersion() != "1.2.3-test" {
		t.Errorf("Expected version to be 1.2.3-test, got %s", GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "healthsync" {
		t.Errorf("Expected Use to be 'healthsync', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "healthsync version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	if err := testCmd.Execute(); err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	if got := buf.String(); got != "healthsync version 1.0.0\n" {
		t.Errorf("Expected version output %q, got %q", "healthsync version 1.0.0\n", got)
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"version", "reconcile", "validate", "describe", "types", "watch"} {
		if !found[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	flags := newRootCmd().PersistentFlags()
	for _, name := range []string{"config", "log-level", "log-format", "store", "store-path", "account", "org", "project", "catalog", "parallelism"} {
		assert.NotNil(t, flags.Lookup(name), "flag %s", name)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "general error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
		{
			name: "health source validation",
			err:  fmt.Errorf("health source appd: %w", healthsource.ValidationErrors{{Field: "applicationName", Message: "is required"}}),
			want: ExitCodeValidation,
		},
		{
			name: "config validation",
			err:  config.ValidationErrors{{Field: "store.type", Message: "must be one of: file, memory"}},
			want: ExitCodeValidation,
		},
		{
			name: "mapping",
			err:  &healthsource.MappingError{Message: "no configs"},
			want: ExitCodeMapping,
		},
		{
			name: "key collision",
			err:  &reconciler.KeyCollisionError{Key: "q1"},
			want: ExitCodeMapping,
		},
		{
			name: "unknown type",
			err:  &healthsource.UnknownTypeError{Type: cvconfig.DataSourceType("Nagios")},
			want: ExitCodeDispatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestInvalidConfigFails(t *testing.T) {
	testEnv(t)

	_, _, err := execute(t, "types", "--store", "s3")
	require.Error(t, err)
	assert.Equal(t, ExitCodeValidation, getExitCode(err))
}
