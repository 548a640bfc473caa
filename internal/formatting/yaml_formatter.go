package formatting

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"healthsync/internal/cvconfig"
	"healthsync/internal/monitoredservice"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

func (f *YAMLFormatter) FormatPlan(plan monitoredservice.Plan) (string, error) {
	return toYAML(plan)
}

func (f *YAMLFormatter) FormatMonitoredService(ms monitoredservice.MonitoredService) (string, error) {
	return toYAML(ms)
}

func (f *YAMLFormatter) FormatTypes(types []cvconfig.DataSourceType) (string, error) {
	return toYAML(typeRows(types))
}

// toYAML renders v through its JSON encoding so that custom JSON
// marshalers are honoured.
func toYAML(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var generic interface{}
	if err := yaml.Unmarshal(b, &generic); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
