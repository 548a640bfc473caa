package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"healthsync/internal/config"
	"healthsync/internal/formatting"
	"healthsync/internal/healthsource"
	"healthsync/internal/metricpack"
	"healthsync/internal/monitoredservice"
	"healthsync/internal/store"
	"healthsync/pkg/logging"
)

// app bundles the components a command needs, built from the loaded configuration.
type app struct {
	service *monitoredservice.Service
}

func newApp(cfg config.Config) (*app, error) {
	catalog, err := metricpack.NewCatalog()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.Path != "" {
		if err := catalog.LoadFile(cfg.Catalog.Path); err != nil {
			return nil, err
		}
		logging.Debug("CLI", "Loaded metric packs from %s", cfg.Catalog.Path)
	}

	var st store.Store
	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		st = store.NewMemoryStore()
	default:
		st = store.NewFileStore(cfg.Store.Path)
	}

	return &app{
		service: monitoredservice.NewService(healthsource.DefaultRegistry(), st, catalog,
			monitoredservice.WithScope(cfg.CVScope()),
			monitoredservice.WithParallelism(cfg.Plan.Parallelism),
		),
	}, nil
}

// addOutputFlag registers the -o flag on cmd.
func addOutputFlag(cmd *cobra.Command, target *string, def formatting.OutputFormat) {
	cmd.Flags().StringVarP(target, "output", "o", string(def), "output format: table, json or yaml")
}

// newFormatter parses the output flag and builds a formatter for w.
func newFormatter(output string, w io.Writer) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.NewFormatter(formatting.Options{Format: format, Color: isTerminal(w)}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func printResult(cmd *cobra.Command, out string) {
	fmt.Fprint(cmd.OutOrStdout(), out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
