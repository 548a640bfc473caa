package monitoredservice

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"healthsync/internal/cvconfig"
	"healthsync/internal/healthsource"
)

// MonitoredService is the desired monitoring configuration of one service
// in one environment.
type MonitoredService struct {
	Identifier        string         `json:"identifier"`
	Name              string         `json:"name,omitempty"`
	AccountID         string         `json:"accountId,omitempty"`
	OrgIdentifier     string         `json:"orgIdentifier,omitempty"`
	ProjectIdentifier string         `json:"projectIdentifier,omitempty"`
	ServiceRef        string         `json:"serviceRef"`
	EnvironmentRef    string         `json:"environmentRef"`
	Enabled           *bool          `json:"enabled,omitempty"`
	HealthSources     []HealthSource `json:"healthSources"`
}

// HealthSource is one entry of a monitored service. Spec holds the
// type-specific specification and is decoded by the registry.
type HealthSource struct {
	Identifier string                  `json:"identifier"`
	Name       string                  `json:"name"`
	Type       cvconfig.DataSourceType `json:"type"`
	Spec       json.RawMessage         `json:"spec"`
}

// Scope returns the scope of the monitored service. Fields the document
// leaves empty are taken from fallback.
func (ms MonitoredService) Scope(fallback cvconfig.Scope) cvconfig.Scope {
	scope := cvconfig.Scope{
		AccountID:         ms.AccountID,
		OrgIdentifier:     ms.OrgIdentifier,
		ProjectIdentifier: ms.ProjectIdentifier,
	}
	if scope.AccountID == "" {
		scope.AccountID = fallback.AccountID
	}
	if scope.OrgIdentifier == "" {
		scope.OrgIdentifier = fallback.OrgIdentifier
	}
	if scope.ProjectIdentifier == "" {
		scope.ProjectIdentifier = fallback.ProjectIdentifier
	}
	return scope
}

// IsEnabled reports whether the monitored service is enabled. Services are
// enabled unless the document says otherwise.
func (ms MonitoredService) IsEnabled() bool {
	return ms.Enabled == nil || *ms.Enabled
}

// Validate checks the document itself. Health source specifications are
// validated by their own Validate.
func (ms MonitoredService) Validate() error {
	var ve healthsource.ValidationErrors
	if ms.Identifier == "" {
		ve.Add("identifier", "is required")
	}
	if ms.ServiceRef == "" {
		ve.Add("serviceRef", "is required")
	}
	if ms.EnvironmentRef == "" {
		ve.Add("environmentRef", "is required")
	}

	seen := make(map[string]struct{}, len(ms.HealthSources))
	for i, hs := range ms.HealthSources {
		prefix := fmt.Sprintf("healthSources[%d]", i)
		if hs.Identifier == "" {
			ve.Add(prefix+".identifier", "is required")
		} else if _, dup := seen[hs.Identifier]; dup {
			ve.Add(prefix+".identifier", "duplicate health source identifier", hs.Identifier)
		}
		seen[hs.Identifier] = struct{}{}

		if hs.Name == "" {
			ve.Add(prefix+".name", "is required")
		}
		if hs.Type == "" {
			ve.Add(prefix+".type", "is required")
		}
	}
	return ve.Err()
}

// Decode parses a monitored service document in YAML or JSON.
func Decode(data []byte) (MonitoredService, error) {
	var ms MonitoredService
	if err := yaml.UnmarshalStrict(data, &ms); err != nil {
		return MonitoredService{}, fmt.Errorf("failed to parse monitored service: %w", err)
	}
	return ms, nil
}

// LoadFile reads and parses a monitored service document.
func LoadFile(path string) (MonitoredService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MonitoredService{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	ms, err := Decode(data)
	if err != nil {
		return MonitoredService{}, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

// Encode renders a monitored service document as YAML.
func Encode(ms MonitoredService) ([]byte, error) {
	return yaml.Marshal(ms)
}
