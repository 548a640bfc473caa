package config

import "healthsync/internal/cvconfig"

// Config is the top-level configuration structure for healthsync.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Scope   ScopeConfig   `mapstructure:"scope" yaml:"scope"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Plan    PlanConfig    `mapstructure:"plan" yaml:"plan"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn or error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// StoreType selects the config store implementation.
type StoreType string

const (
	StoreTypeFile   StoreType = "file"
	StoreTypeMemory StoreType = "memory"
)

// StoreConfig selects where CVConfigs are persisted.
type StoreConfig struct {
	Type StoreType `mapstructure:"type" yaml:"type"`
	Path string    `mapstructure:"path" yaml:"path"` // root directory of the file store
}

// ScopeConfig is the scope used for documents that do not name one.
type ScopeConfig struct {
	AccountID         string `mapstructure:"accountId" yaml:"accountId"`
	OrgIdentifier     string `mapstructure:"orgIdentifier" yaml:"orgIdentifier"`
	ProjectIdentifier string `mapstructure:"projectIdentifier" yaml:"projectIdentifier"`
}

// CatalogConfig points at an optional metric pack file loaded on top of
// the built-in packs.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// PlanConfig tunes planning.
type PlanConfig struct {
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
}

// CVScope returns the configured scope.
func (c Config) CVScope() cvconfig.Scope {
	return cvconfig.Scope{
		AccountID:         c.Scope.AccountID,
		OrgIdentifier:     c.Scope.OrgIdentifier,
		ProjectIdentifier: c.Scope.ProjectIdentifier,
	}
}
