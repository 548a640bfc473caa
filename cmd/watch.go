package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"healthsync/internal/formatting"
	"healthsync/internal/monitoredservice"
	"healthsync/internal/watch"
	"healthsync/pkg/logging"
)

type watchOptions struct {
	files    []string
	apply    bool
	output   string
	debounce time.Duration
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile monitored service documents whenever they change",
		Long: `Watch reconciles each document once at startup and again every time the
file is written. Deleted files are ignored; the stored configs are left
alone until the document comes back. Stop with Ctrl+C.

Examples:
  healthsync watch -f payments.yaml
  healthsync watch -f payments.yaml -f checkout.yaml --apply`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "monitored service document (repeatable)")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "write the changes to the store")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before a change is reconciled")
	addOutputFlag(cmd, &opts.output, formatting.FormatTable)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions) error {
	formatter, err := newFormatter(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	a, err := newApp(root.cfg)
	if err != nil {
		return err
	}

	handle := func(ctx context.Context, path string) error {
		ms, err := monitoredservice.LoadFile(path)
		if err != nil {
			return err
		}
		plan, err := reconcileDocument(ctx, a, ms, opts.apply)
		if err != nil {
			return err
		}
		out, err := formatter.FormatPlan(plan)
		if err != nil {
			return err
		}
		printResult(cmd, out)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, file := range opts.files {
		if err := handle(ctx, file); err != nil {
			logging.Error("CLI", err, "Initial reconcile of %s failed", file)
		}
	}

	w, err := watch.NewWatcher(opts.debounce, opts.files...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	logging.Info("CLI", "Watching %d documents", len(opts.files))
	return watch.Run(ctx, w, func(ctx context.Context, event watch.Event) error {
		if event.Operation == watch.OperationDelete {
			logging.Warn("CLI", "%s was deleted, keeping stored configs", event.Path)
			return nil
		}
		return handle(ctx, event.Path)
	})
}
