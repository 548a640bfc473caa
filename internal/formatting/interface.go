// Package formatting renders plans, monitored service documents and the
// list of health source types for the CLI.
//
// Three output formats are supported: a rich table for terminals, and JSON
// and YAML for scripting. JSON and YAML output of configs goes through the
// configs' JSON encoding, so both carry the same type tags.
package formatting

import (
	"fmt"

	"healthsync/internal/cvconfig"
	"healthsync/internal/monitoredservice"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Formatter renders CLI results.
type Formatter interface {
	FormatPlan(plan monitoredservice.Plan) (string, error)
	FormatMonitoredService(ms monitoredservice.MonitoredService) (string, error)
	FormatTypes(types []cvconfig.DataSourceType) (string, error)
}

// ParseFormat validates an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be one of table, json, yaml", s)
	}
}

// NewFormatter creates the formatter for options.Format. Unknown formats
// fall back to the table formatter.
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}
