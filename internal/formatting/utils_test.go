package formatting

import (
	"encoding/json"
	"strings"
	"testing"

	"healthsync/internal/cvconfig"
)

func TestPrettyJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:  "health source spec",
			input: json.RawMessage(`{"connectorRef":"splunk-connector","queries":[{"name":"errors"}]}`),
			expected: `{
  "connectorRef": "splunk-connector",
  "queries": [
    {
      "name": "errors"
    }
  ]
}`,
		},
		{
			name:     "empty spec",
			input:    json.RawMessage(`{}`),
			expected: "{}",
		},
		{
			name:     "missing spec",
			input:    json.RawMessage(nil),
			expected: "null",
		},
		{
			name:     "type list",
			input:    []cvconfig.DataSourceType{cvconfig.DataSourceTypeSplunk},
			expected: "[\n  \"Splunk\"\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PrettyJSON(tt.input)
			if result != tt.expected {
				t.Errorf("PrettyJSON() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestPrettyJSONWithMalformedSpec(t *testing.T) {
	result := PrettyJSON(json.RawMessage(`{"connectorRef":`))

	// Falls back to the raw bytes instead of failing the whole table.
	if result == "" || strings.Contains(result, "connectorRef") {
		t.Errorf("PrettyJSON() = %q, want the unformatted fallback", result)
	}
}

func TestTypeRows(t *testing.T) {
	rows := typeRows([]cvconfig.DataSourceType{
		cvconfig.DataSourceTypePrometheus,
		cvconfig.DataSourceTypeSplunk,
	})

	if len(rows) != 2 {
		t.Fatalf("typeRows() returned %d rows, want 2", len(rows))
	}
	if rows[0].Kind != "metrics" {
		t.Errorf("Prometheus kind = %q, want metrics", rows[0].Kind)
	}
	if rows[1].Kind != "logs" {
		t.Errorf("Splunk kind = %q, want logs", rows[1].Kind)
	}
}
