package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthsync/internal/config"
	"healthsync/internal/monitoredservice"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check monitored service documents without touching the store",
		Long: `Validate decodes each document, validates every health source and maps
it to configs, reporting the first problem found per document. The
configured store is never read or written.

Examples:
  healthsync validate -f payments.yaml
  healthsync validate -f payments.yaml -f checkout.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, files)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "monitored service document (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runValidate(cmd *cobra.Command, root *rootOptions, files []string) error {
	cfg := root.cfg
	cfg.Store.Type = config.StoreTypeMemory
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	var firstErr error
	for _, file := range files {
		n, err := validateFile(cmd, a, file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", file, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d health sources)\n", file, n)
	}
	return firstErr
}

// validateFile plans the document against an empty store, which runs every
// decoding, validation and mapping step.
func validateFile(cmd *cobra.Command, a *app, file string) (int, error) {
	ms, err := monitoredservice.LoadFile(file)
	if err != nil {
		return 0, err
	}
	if _, err := a.service.Plan(cmd.Context(), ms); err != nil {
		return 0, err
	}
	return len(ms.HealthSources), nil
}
