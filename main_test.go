package main

import (
	"testing"

	"healthsync/cmd"
)

func TestDefaultVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestSetVersionReachesCommand(t *testing.T) {
	original := cmd.GetVersion()
	defer cmd.SetVersion(original)

	tests := []struct {
		name    string
		version string
	}{
		{
			name:    "default version",
			version: version,
		},
		{
			name:    "release version",
			version: "v1.0.0",
		},
		{
			name:    "pre-release version",
			version: "2.3.4-beta.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.SetVersion(tt.version)
			if got := cmd.GetVersion(); got != tt.version {
				t.Errorf("Expected command version %s, got %s", tt.version, got)
			}
		})
	}
}
