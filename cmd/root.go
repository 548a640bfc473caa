package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"healthsync/internal/config"
	"healthsync/internal/healthsource"
	"healthsync/internal/reconciler"
	"healthsync/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidation indicates an invalid document, health source or configuration.
	ExitCodeValidation = 2
	// ExitCodeMapping indicates a valid specification that could not be turned into configs.
	ExitCodeMapping = 3
	// ExitCodeDispatch indicates an unknown health source type.
	ExitCodeDispatch = 4
)

// rootOptions holds the state shared by every subcommand of one command tree.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
}

// rootCmd represents the base command for the healthsync application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "healthsync",
		Short: "Reconcile monitored service health sources into monitoring configs",
		Long: `healthsync turns declarative monitored service documents into the
monitoring configs that drive continuous verification. Every run computes
which configs to add, update and delete, keeping the identity of configs
that survive, and can apply the result to a config store.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default is ./healthsync.yaml or $HOME/.config/healthsync/healthsync.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("store", "", "config store: file or memory")
	flags.String("store-path", "", "root directory of the file store")
	flags.String("account", "", "account identifier for documents that do not set one")
	flags.String("org", "", "organization identifier for documents that do not set one")
	flags.String("project", "", "project identifier for documents that do not set one")
	flags.String("catalog", "", "metric pack file loaded on top of the built-in packs")
	flags.Int("parallelism", 0, "number of health sources planned concurrently")

	bindings := map[string]string{
		"log.level":               "log-level",
		"log.format":              "log-format",
		"store.type":              "store",
		"store.path":              "store-path",
		"scope.accountId":         "account",
		"scope.orgIdentifier":     "org",
		"scope.projectIdentifier": "project",
		"catalog.path":            "catalog",
		"plan.parallelism":        "parallelism",
	}
	for key, flag := range bindings {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newReconcileCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newDescribeCmd(opts))
	cmd.AddCommand(newTypesCmd())
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

// load reads the configuration and initializes logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.InitForCLIWithFormat(level, logging.Format(cfg.Log.Format), cmd.ErrOrStderr())
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It executes the root command and exits with a code describing the failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "healthsync version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var configErr config.ValidationErrors
	if healthsource.IsValidationError(err) || errors.As(err, &configErr) {
		return ExitCodeValidation
	}

	var collision *reconciler.KeyCollisionError
	if healthsource.IsMappingError(err) || errors.As(err, &collision) {
		return ExitCodeMapping
	}

	if healthsource.IsUnknownType(err) {
		return ExitCodeDispatch
	}

	return ExitCodeError
}
