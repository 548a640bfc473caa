package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthsync/internal/cvconfig"
)

// withHome points the user home directory at a temporary directory.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	original := osUserHomeDir
	osUserHomeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { osUserHomeDir = original })
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "healthsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := withHome(t)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, StoreTypeFile, cfg.Store.Type)
	assert.Equal(t, filepath.Join(home, ".config", "healthsync", "store"), cfg.Store.Path)
	assert.Equal(t, DefaultParallelism, cfg.Plan.Parallelism)
	assert.True(t, cfg.CVScope().IsZero())
}

func TestLoad_File(t *testing.T) {
	home := withHome(t)
	path := writeConfig(t, `
log:
  level: debug
  format: json
store:
  type: file
  path: ~/cv-store
scope:
  accountId: acc
  orgIdentifier: org
  projectIdentifier: proj
catalog:
  path: ./packs.yaml
plan:
  parallelism: 2
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, filepath.Join(home, "cv-store"), cfg.Store.Path)
	assert.Equal(t, "./packs.yaml", cfg.Catalog.Path)
	assert.Equal(t, 2, cfg.Plan.Parallelism)
	assert.Equal(t, cvconfig.Scope{AccountID: "acc", OrgIdentifier: "org", ProjectIdentifier: "proj"}, cfg.CVScope())
}

func TestLoad_Environment(t *testing.T) {
	withHome(t)
	t.Setenv("HEALTHSYNC_PLAN_PARALLELISM", "8")
	t.Setenv("HEALTHSYNC_SCOPE_ACCOUNTID", "from-env")
	t.Setenv("HEALTHSYNC_STORE_TYPE", "memory")

	path := writeConfig(t, "plan:\n  parallelism: 2\n")
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Plan.Parallelism)
	assert.Equal(t, "from-env", cfg.Scope.AccountID)
	assert.Equal(t, StoreTypeMemory, cfg.Store.Type)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	withHome(t)
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestLoad_Invalid(t *testing.T) {
	withHome(t)
	path := writeConfig(t, "log:\n  level: loud\nplan:\n  parallelism: 0\n")

	_, err := Load(viper.New(), path)
	require.Error(t, err)

	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve, 2)
	assert.Equal(t, "log.level", ve[0].Field)
	assert.Equal(t, "plan.parallelism", ve[1].Field)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{Type: StoreTypeFile, Path: "/tmp/store"},
		Plan:  PlanConfig{Parallelism: 1},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "memory store needs no path",
			mutate: func(c *Config) { c.Store = StoreConfig{Type: StoreTypeMemory} },
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "field 'log.format': must be one of: text, json",
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.Store.Type = "s3" },
			wantErr: "field 'store.type': must be one of: file, memory",
		},
		{
			name:    "file store without path",
			mutate:  func(c *Config) { c.Store.Path = " " },
			wantErr: "field 'store.path': is required for the file store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("a", "is bad", 1)
	errs.Add("", "everything is bad")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, 1, errs[0].Value)
	assert.Equal(t, "validation failed: field 'a': is bad; everything is bad", errs.Error())
}
