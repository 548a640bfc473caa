package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthsync/internal/formatting"
)

func newDescribeCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "describe <monitored-service>",
		Short: "Rebuild a monitored service document from the stored configs",
		Long: `Describe reads the configs stored for a monitored service in the
configured scope and turns them back into health source specifications.
The YAML output can be fed to reconcile unchanged.

Examples:
  healthsync describe payments_prod
  healthsync describe payments_prod --account acc --org default --project payments`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			a, err := newApp(root.cfg)
			if err != nil {
				return err
			}

			ms, err := a.service.Describe(cmd.Context(), root.cfg.CVScope(), args[0])
			if err != nil {
				return err
			}
			out, err := formatter.FormatMonitoredService(ms)
			if err != nil {
				return fmt.Errorf("failed to format monitored service: %w", err)
			}
			printResult(cmd, out)
			return nil
		},
	}

	addOutputFlag(cmd, &output, formatting.FormatYAML)
	return cmd
}
