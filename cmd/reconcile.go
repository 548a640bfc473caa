package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"healthsync/internal/formatting"
	"healthsync/internal/monitoredservice"
)

type reconcileOptions struct {
	file   string
	apply  bool
	output string
}

func newReconcileCmd(root *rootOptions) *cobra.Command {
	opts := &reconcileOptions{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compute the config changes for a monitored service document",
		Long: `Reconcile compares the health sources of a monitored service document
with the configs in the store and prints which configs would be added,
updated and deleted. With --apply the changes are written to the store.

Examples:
  healthsync reconcile -f payments.yaml
  healthsync reconcile -f payments.yaml --apply
  healthsync reconcile -f payments.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "monitored service document (required)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "write the changes to the store")
	addOutputFlag(cmd, &opts.output, formatting.FormatTable)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runReconcile(cmd *cobra.Command, root *rootOptions, opts *reconcileOptions) error {
	formatter, err := newFormatter(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	a, err := newApp(root.cfg)
	if err != nil {
		return err
	}

	ms, err := monitoredservice.LoadFile(opts.file)
	if err != nil {
		return err
	}

	plan, err := reconcileDocument(cmd.Context(), a, ms, opts.apply)
	if err != nil {
		return err
	}

	out, err := formatter.FormatPlan(plan)
	if err != nil {
		return fmt.Errorf("failed to format plan: %w", err)
	}
	printResult(cmd, out)
	return nil
}

func reconcileDocument(ctx context.Context, a *app, ms monitoredservice.MonitoredService, apply bool) (monitoredservice.Plan, error) {
	if apply {
		return a.service.Apply(ctx, ms)
	}
	return a.service.Plan(ctx, ms)
}
