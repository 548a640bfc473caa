// Package config provides configuration management for healthsync.
//
// Configuration is read with viper from three sources, later ones winning:
// built-in defaults, a healthsync.yaml file and HEALTHSYNC_ environment
// variables. Command line flags bound by the CLI override all of them.
//
// # Configuration File
//
// Without an explicit --config flag the file is searched in the working
// directory and in ~/.config/healthsync. A missing file is not an error.
//
//	log:
//	  level: info
//	  format: text
//	store:
//	  type: file
//	  path: ~/.config/healthsync/store
//	scope:
//	  accountId: kmpySmUISimoRrJL6NL73w
//	  orgIdentifier: default
//	  projectIdentifier: payments
//	catalog:
//	  path: ./metric-packs.yaml
//	plan:
//	  parallelism: 4
//
// # Environment Variables
//
// Every key maps to an upper case variable with dots replaced by
// underscores, for example HEALTHSYNC_SCOPE_ACCOUNTID or
// HEALTHSYNC_PLAN_PARALLELISM.
//
// # Validation
//
// Load validates the result and returns ValidationErrors listing every
// invalid field.
package config
