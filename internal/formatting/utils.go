package formatting

import (
	"encoding/json"
	"fmt"

	"healthsync/internal/cvconfig"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It handles marshaling errors gracefully by falling back to fmt.Sprintf.
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// TypeRow describes one health source type.
type TypeRow struct {
	Type cvconfig.DataSourceType `json:"type"`
	Kind string                  `json:"kind"`
}

func typeRows(types []cvconfig.DataSourceType) []TypeRow {
	rows := make([]TypeRow, 0, len(types))
	for _, t := range types {
		kind := "metrics"
		if t.IsLog() {
			kind = "logs"
		}
		rows = append(rows, TypeRow{Type: t, Kind: kind})
	}
	return rows
}
