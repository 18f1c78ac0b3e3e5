// Package cmd provides the CLI commands for ldeploy.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leighajarett/looker-deployer/internal/config"
	"github.com/leighajarett/looker-deployer/internal/creds"
	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/gzr"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/looker"
)

// Version information - set via ldflags at build time in main.go.
// These are exported so main.go can set them before Execute().
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// cfg is the loaded tool configuration, populated by the persistent pre-run.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ldeploy",
	Short: "looker-deployer - promote Looker content between instances",
	Long: `looker-deployer (ldeploy) promotes Looker content and configuration
between Looker instances.

Content (dashboards and looks exported with gzr) is deployed into folder
trees rooted at Shared, creating missing folders on the way. Database
connections can be promoted directly through the Looker API.

Credentials come from a looker.ini file with one section per environment,
the same file the Looker SDK uses.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("ini", "", "Path to looker.ini credentials file (default \"looker.ini\")")
	rootCmd.PersistentFlags().String("config", "", "Path to deployer config file (default \".lookerdeployer/config.yaml\")")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress console log output (file logs are still written)")
	rootCmd.PersistentFlags().String("log-dir", "", "Directory for log files (default \".lookerdeployer/logs\")")

	rootCmd.PersistentPreRunE = setup

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("ldeploy {{.Version}}\n")
}

// versionString formats the build info for the --version flag.
func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// setup loads configuration and initializes logging before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags win over config file and environment.
	if iniPath, _ := cmd.Flags().GetString("ini"); iniPath != "" {
		cfg.Ini = iniPath
	}
	if logDir, _ := cmd.Flags().GetString("log-dir"); logDir != "" {
		cfg.Logging.Dir = logDir
	}

	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	logConfig := &logging.Config{
		Level:       level,
		LogDir:      cfg.Logging.Dir,
		MaxLogFiles: cfg.Logging.MaxFiles,
		MaxLogAge:   cfg.Logging.MaxAge,
		Console:     !quiet,
		JSONFormat:  cfg.Logging.Format == config.LogFormatJSON,
	}
	if err := logging.InitGlobal(logConfig); err != nil {
		// Non-fatal: deploys still work without file logging.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
	} else {
		logging.Info("ldeploy starting", "version", Version, "debug", debug)
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// main.go sets the build variables after package init, so refresh.
	rootCmd.Version = versionString()

	err := rootCmd.Execute()
	_ = logging.CloseGlobal()

	if err != nil {
		var deployErr *errors.DeployError
		if stderrors.As(err, &deployErr) {
			fmt.Fprint(os.Stderr, deployErr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}

// environment resolves one environment's credentials from the ini file.
func environment(name string) (creds.Environment, error) {
	file, err := creds.Load(cfg.Ini)
	if err != nil {
		return creds.Environment{}, err
	}
	return file.Environment(name)
}

// newRunner builds a gzr runner for the given environment.
func newRunner(env creds.Environment) (*gzr.Runner, error) {
	gc, err := env.GzrCreds()
	if err != nil {
		return nil, err
	}
	runner := gzr.NewRunner(cfg.Gzr, gc, logging.Global())
	if err := runner.CheckAvailable(); err != nil {
		return nil, err
	}
	return runner, nil
}

// newAPIClient builds a retrying Looker API client for the given environment.
func newAPIClient(envName string) (looker.Client, error) {
	client, err := looker.NewClient(cfg.Ini, envName)
	if err != nil {
		return nil, err
	}
	return looker.WithRetry(client, cfg.Retry.Attempts, cfg.Retry.Delay), nil
}
