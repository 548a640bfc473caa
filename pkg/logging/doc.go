// Package logging provides the subsystem-tagged structured logger used across
// healthsync.
//
// The package is a thin layer over Go's slog package. Every entry carries a
// subsystem attribute so reconciliation passes, stores and the CLI can be
// filtered independently.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Reconcile", "Planned %d health sources", n)
//	logging.Debug("Store", "Loaded %d configs from %s", len(configs), path)
//	logging.Error("Apply", err, "Failed to apply mutations for %s", identifier)
//
// InitForCLIWithFormat selects between the text and JSON handlers; the JSON
// handler is intended for log aggregation when the CLI runs in automation.
//
// Logging before initialization is a no-op, which keeps library packages
// silent in tests unless a test opts in.
package logging
