package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the log format used when none is configured.
	DefaultLogFormat = "text"

	// DefaultParallelism bounds how many health sources are planned at once.
	DefaultParallelism = 4
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("store.type", string(StoreTypeFile))
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("scope.accountId", "")
	v.SetDefault("scope.orgIdentifier", "")
	v.SetDefault("scope.projectIdentifier", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("plan.parallelism", DefaultParallelism)
}

func defaultStorePath() string {
	dir, err := UserConfigDir()
	if err != nil {
		return ".healthsync"
	}
	return filepath.Join(dir, "store")
}
