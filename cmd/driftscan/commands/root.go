package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dserrors "github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/internal/logger"
	"github.com/yairfalse/driftscan/internal/output"
	"github.com/yairfalse/driftscan/internal/storage"
	"github.com/yairfalse/driftscan/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "driftscan",
	Short: "Detect drift between Terraform state and the Docker runtime",
	Long: `driftscan compares the infrastructure Terraform declares with what the
Docker daemon is actually running, reports every mismatch with a
severity, and keeps a durable history of all checks.

Each check stores its report, so drift can be inspected, trended and
exported long after the run that found it.

Exit codes follow the automation contract:
  0  no drift detected
  1  drift detected
  2  the check itself failed`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			runVersion(cmd, []string{})
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command and maps failures to exit codes
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		dserrors.DisplayError(err)
		os.Exit(dserrors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.driftscan/config.yaml)")
	rootCmd.PersistentFlags().StringP("environment", "e", "", "environment the reports belong to")
	rootCmd.PersistentFlags().String("db", "", "report database path")
	rootCmd.PersistentFlags().String("format", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newLatestCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newTrendsCommand())
	rootCmd.AddCommand(newCleanupCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig loads the configuration and applies flag overrides on top
func initConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("environment") {
		cfg.Environment, _ = flags.GetString("environment")
	}
	if flags.Changed("db") {
		cfg.Storage.Path, _ = flags.GetString("db")
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.ExpandPaths(); err != nil {
		return err
	}

	return cfg.Validate()
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

func newLogger() logger.Logger {
	return logger.NewLogrus(cfg.Logging.Level, cfg.Logging.Format)
}

func newRenderer() (*output.Renderer, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(format, cfg.Output.NoColor), nil
}

func openStore() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, dserrors.StorageOpenError(cfg.Storage.Path, err)
	}
	return store, nil
}

// environmentFilter scopes a query to the --environment flag when it was
// given; queries are unscoped by default.
func environmentFilter(cmd *cobra.Command) string {
	if cmd.Flags().Changed("environment") {
		env, _ := cmd.Flags().GetString("environment")
		return env
	}
	return ""
}

func printRendered(data []byte) {
	fmt.Println(strings.TrimSuffix(string(data), "\n"))
}
