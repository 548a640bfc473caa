package formatting

import (
	"encoding/json"

	"healthsync/internal/cvconfig"
	"healthsync/internal/monitoredservice"
)

// JSONFormatter provides JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

func (f *JSONFormatter) FormatPlan(plan monitoredservice.Plan) (string, error) {
	return indentJSON(plan)
}

func (f *JSONFormatter) FormatMonitoredService(ms monitoredservice.MonitoredService) (string, error) {
	return indentJSON(ms)
}

func (f *JSONFormatter) FormatTypes(types []cvconfig.DataSourceType) (string, error) {
	return indentJSON(typeRows(types))
}

func indentJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
