package healthsource

import (
	"fmt"
	"strings"

	"healthsync/internal/cvconfig"
)

// RiskProfile places a metric in a category for analysis.
type RiskProfile struct {
	Category   cvconfig.CVMonitoringCategory `json:"category,omitempty"`
	MetricType cvconfig.TimeSeriesMetricType `json:"metricType,omitempty"`
	Thresholds []string                      `json:"thresholdTypes,omitempty"`
}

// Toggle is an on/off switch in a specification.
type Toggle struct {
	Enabled bool `json:"enabled"`
}

// DeploymentVerification enables a metric for canary analysis and names the
// field that separates service instances.
type DeploymentVerification struct {
	Enabled                  bool   `json:"enabled"`
	ServiceInstanceFieldName string `json:"serviceInstanceFieldName,omitempty"`
	ServiceInstanceJSONPath  string `json:"serviceInstanceMetricPath,omitempty"`
}

// Analysis groups the analysis settings of a metric definition.
type Analysis struct {
	RiskProfile            *RiskProfile           `json:"riskProfile,omitempty"`
	LiveMonitoring         Toggle                 `json:"liveMonitoring"`
	DeploymentVerification DeploymentVerification `json:"deploymentVerification"`
}

// MetricDefinition holds the fields every time series definition shares.
// Definitions without a category are not analysed and produce no config.
type MetricDefinition struct {
	Identifier  string       `json:"identifier"`
	MetricName  string       `json:"metricName"`
	GroupName   string       `json:"groupName,omitempty"`
	RiskProfile *RiskProfile `json:"riskProfile,omitempty"`
	Analysis    *Analysis    `json:"analysis,omitempty"`
	SLI         *Toggle      `json:"sli,omitempty"`
}

func (d MetricDefinition) riskProfile() *RiskProfile {
	if d.Analysis != nil && d.Analysis.RiskProfile != nil {
		return d.Analysis.RiskProfile
	}
	return d.RiskProfile
}

// category returns the analysis category, if the definition has one.
func (d MetricDefinition) category() (cvconfig.CVMonitoringCategory, bool) {
	rp := d.riskProfile()
	if rp == nil || rp.Category == "" {
		return "", false
	}
	return rp.Category, true
}

func (d MetricDefinition) sliEnabled() bool {
	return d.SLI != nil && d.SLI.Enabled
}

func (d MetricDefinition) deploymentVerification() DeploymentVerification {
	if d.Analysis == nil {
		return DeploymentVerification{}
	}
	return d.Analysis.DeploymentVerification
}

func (d MetricDefinition) liveMonitoringEnabled() bool {
	return d.Analysis != nil && d.Analysis.LiveMonitoring.Enabled
}

func (d MetricDefinition) metricInfo() cvconfig.MetricInfo {
	info := cvconfig.MetricInfo{
		Identifier:             d.Identifier,
		MetricName:             d.MetricName,
		SLI:                    d.sliEnabled(),
		LiveMonitoring:         d.liveMonitoringEnabled(),
		DeploymentVerification: d.deploymentVerification().Enabled,
	}
	if rp := d.riskProfile(); rp != nil {
		info.MetricType = rp.MetricType
	}
	return info
}

// MetricPackRef selects a catalog metric pack by identifier.
type MetricPackRef struct {
	Identifier string `json:"identifier"`
}

// LogQuery is a named log query.
type LogQuery struct {
	Name                      string `json:"name"`
	Identifier                string `json:"identifier,omitempty"`
	Query                     string `json:"query"`
	ServiceInstanceIdentifier string `json:"serviceInstanceIdentifier,omitempty"`
}

// definition is implemented by every metric definition type.
type definition interface {
	common() MetricDefinition
}

func (d MetricDefinition) common() MetricDefinition { return d }

// validateDefinitions checks the rules shared by every metric definition
// list: identifiers and names are set and unique, and categories are known.
func validateDefinitions[D definition](ve *ValidationErrors, field string, defs []D) {
	identifiers := make(map[string]struct{}, len(defs))
	names := make(map[string]struct{}, len(defs))
	for i, def := range defs {
		d := def.common()
		prefix := fmt.Sprintf("%s[%d]", field, i)

		ve.requireField(prefix+".identifier", d.Identifier)
		ve.requireField(prefix+".metricName", d.MetricName)
		if _, dup := identifiers[d.Identifier]; dup && d.Identifier != "" {
			ve.Add(prefix+".identifier", "duplicate metric identifier", d.Identifier)
		}
		if _, dup := names[d.MetricName]; dup && d.MetricName != "" {
			ve.Add(prefix+".metricName", "duplicate metric name", d.MetricName)
		}
		identifiers[d.Identifier] = struct{}{}
		names[d.MetricName] = struct{}{}

		if c, ok := d.category(); ok && !c.Valid() {
			ve.Add(prefix+".riskProfile.category", "unknown monitoring category", c)
		}
	}
}

type query interface {
	logQuery() LogQuery
}

func (q LogQuery) logQuery() LogQuery { return q }

// validateLogQueries checks that query names and query texts are unique.
func validateLogQueries[Q query](ve *ValidationErrors, field string, queries []Q) {
	names := make(map[string]struct{}, len(queries))
	texts := make(map[string]struct{}, len(queries))
	for i, lq := range queries {
		q := lq.logQuery()
		prefix := fmt.Sprintf("%s[%d]", field, i)

		ve.requireField(prefix+".name", q.Name)
		ve.requireField(prefix+".query", q.Query)
		if _, dup := names[q.Name]; dup && q.Name != "" {
			ve.Add(prefix+".name", "duplicate query name", q.Name)
		}
		text := strings.TrimSpace(q.Query)
		if _, dup := texts[text]; dup && text != "" {
			ve.Add(prefix+".query", "duplicate query", q.Query)
		}
		names[q.Name] = struct{}{}
		texts[text] = struct{}{}
	}
}
