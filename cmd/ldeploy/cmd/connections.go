package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leighajarett/looker-deployer/internal/connections"
	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/logging"
)

// connectionsCmd promotes database connections between environments.
var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Promote database connections between Looker instances",
	Long: `Promote database connection definitions from a source environment to a
target environment. Existing connections are updated, missing ones created.

Connection passwords are write-only in the Looker API, so provide them
through a YAML file mapping connection names to passwords:

  warehouse:
    password: hunter2

Examples:
  ldeploy connections --source-env dev --target-env prod
  ldeploy connections --source-env dev --target-env prod --pattern '^bq_'
  ldeploy connections --source-env dev --target-env prod --db-config db.yaml
  ldeploy connections --source-env dev --target-env prod --delete`,
	RunE: runConnections,
}

func init() {
	rootCmd.AddCommand(connectionsCmd)

	connectionsCmd.Flags().String("source-env", "", "Environment to read connections from")
	connectionsCmd.Flags().String("target-env", "", "Environment to write connections to")
	connectionsCmd.Flags().String("pattern", "", "Regex restricting which connection names are promoted")
	connectionsCmd.Flags().String("db-config", "", "YAML file with connection passwords")
	connectionsCmd.Flags().Bool("delete", false, "Delete target connections missing from the source")
	_ = connectionsCmd.MarkFlagRequired("source-env")
	_ = connectionsCmd.MarkFlagRequired("target-env")
}

// runConnections handles "ldeploy connections".
func runConnections(cmd *cobra.Command, args []string) error {
	sourceEnv, _ := cmd.Flags().GetString("source-env")
	targetEnv, _ := cmd.Flags().GetString("target-env")
	pattern, _ := cmd.Flags().GetString("pattern")
	dbConfig, _ := cmd.Flags().GetString("db-config")
	del, _ := cmd.Flags().GetBool("delete")

	if sourceEnv == targetEnv {
		return errors.New(errors.ErrConfig, "source and target environments must differ")
	}

	// Validate both sections exist before opening API sessions.
	if _, err := environment(sourceEnv); err != nil {
		return err
	}
	if _, err := environment(targetEnv); err != nil {
		return err
	}

	source, err := newAPIClient(sourceEnv)
	if err != nil {
		return err
	}
	target, err := newAPIClient(targetEnv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.Global().With("source", sourceEnv, "target", targetEnv)
	syncer := connections.NewSyncer(source, target, log)

	rep, err := syncer.Send(ctx, connections.Options{
		Pattern:      pattern,
		DBConfigPath: dbConfig,
		Delete:       del,
	})
	if rep != nil {
		fmt.Fprint(cmd.OutOrStdout(), rep.Render())
	}
	if err != nil {
		return err
	}
	if rep.HasFailures() {
		_, failed := rep.Counts()
		return errors.New(errors.ErrConnection, fmt.Sprintf("%d connection write(s) failed", failed))
	}
	return nil
}
