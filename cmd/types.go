package cmd

import (
	"github.com/spf13/cobra"

	"healthsync/internal/formatting"
	"healthsync/internal/healthsource"
)

func newTypesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the supported health source types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			out, err := formatter.FormatTypes(healthsource.DefaultRegistry().Types())
			if err != nil {
				return err
			}
			printResult(cmd, out)
			return nil
		},
	}

	addOutputFlag(cmd, &output, formatting.FormatTable)
	return cmd
}
