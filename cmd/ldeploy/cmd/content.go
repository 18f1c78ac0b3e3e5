package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leighajarett/looker-deployer/internal/content"
	"github.com/leighajarett/looker-deployer/internal/errors"
	"github.com/leighajarett/looker-deployer/internal/folders"
	"github.com/leighajarett/looker-deployer/internal/logging"
	"github.com/leighajarett/looker-deployer/internal/report"
)

// contentCmd groups the content subcommands.
var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Deploy or export Looker content",
}

// contentDeployCmd deploys exported content into a target environment.
var contentDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy folders, dashboards or looks to a Looker instance",
	Long: `Deploy gzr-exported content into a target Looker instance.

The local path of each folder or file is cut at the Shared directory and the
remainder becomes the Looker folder path, created on the target if missing.

Examples:
  ldeploy content deploy --env prod --folders ./export/Shared/Data_Team
  ldeploy content deploy --env prod --folders ./export/Shared --recursive
  ldeploy content deploy --env prod --dashboards ./export/Shared/Dashboard_1.json
  ldeploy content deploy --env prod --looks ./export/Shared/Look_1.json \
    --target-folder Shared/Staging`,
	RunE: runContentDeploy,
}

// contentExportCmd pulls the Shared tree of an environment to disk.
var contentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the Shared folder tree of a Looker instance",
	Long: `Export the entire Shared folder tree of an environment to a local
directory, in the layout that "ldeploy content deploy" consumes.

Example:
  ldeploy content export --env dev --dir ./export`,
	RunE: runContentExport,
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentDeployCmd)
	contentCmd.AddCommand(contentExportCmd)

	contentDeployCmd.Flags().String("env", "", "Environment to deploy to (looker.ini section)")
	contentDeployCmd.Flags().StringSlice("folders", nil, "Content folders to deploy")
	contentDeployCmd.Flags().StringSlice("dashboards", nil, "Dashboard files to deploy")
	contentDeployCmd.Flags().StringSlice("looks", nil, "Look files to deploy")
	contentDeployCmd.Flags().Bool("recursive", false, "Recurse into child folders")
	contentDeployCmd.Flags().String("target-folder", "", "Override target folder path (must begin with Shared)")
	_ = contentDeployCmd.MarkFlagRequired("env")
	contentDeployCmd.MarkFlagsOneRequired("folders", "dashboards", "looks")
	contentDeployCmd.MarkFlagsMutuallyExclusive("folders", "dashboards", "looks")

	contentExportCmd.Flags().String("env", "", "Environment to export from (looker.ini section)")
	contentExportCmd.Flags().String("dir", "", "Directory to export into")
	_ = contentExportCmd.MarkFlagRequired("env")
	_ = contentExportCmd.MarkFlagRequired("dir")
}

// runContentDeploy handles "ldeploy content deploy".
func runContentDeploy(cmd *cobra.Command, args []string) error {
	envName, _ := cmd.Flags().GetString("env")
	folderDirs, _ := cmd.Flags().GetStringSlice("folders")
	dashboards, _ := cmd.Flags().GetStringSlice("dashboards")
	looks, _ := cmd.Flags().GetStringSlice("looks")
	recursive, _ := cmd.Flags().GetBool("recursive")
	targetFolder, _ := cmd.Flags().GetString("target-folder")

	// Fail on a bad override before touching the API or the filesystem.
	if err := content.ValidateTargetFolder(targetFolder); err != nil {
		return err
	}

	env, err := environment(envName)
	if err != nil {
		return err
	}

	runner, err := newRunner(env)
	if err != nil {
		return err
	}

	client, err := newAPIClient(envName)
	if err != nil {
		return err
	}

	log := logging.Global().With("environment", envName)
	resolver := folders.NewResolver(client, log)
	deployer := content.NewDeployer(resolver, runner, cfg.Deploy.Concurrency, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := content.Options{
		Recursive:    recursive,
		TargetFolder: targetFolder,
	}

	rep, err := deploy(ctx, deployer, folderDirs, dashboards, looks, opts)
	if rep != nil {
		fmt.Fprint(cmd.OutOrStdout(), rep.Render())
	}
	if err != nil {
		return err
	}
	if rep.HasFailures() {
		_, failed := rep.Counts()
		return errors.New(errors.ErrContent, fmt.Sprintf("%d import(s) failed", failed))
	}
	return nil
}

// deploy dispatches to the right deployer entry point.
func deploy(
	ctx context.Context,
	d *content.Deployer,
	folderDirs, dashboards, looks []string,
	opts content.Options,
) (*report.Report, error) {
	switch {
	case len(folderDirs) > 0:
		return d.DeployFolders(ctx, folderDirs, opts)
	case len(dashboards) > 0:
		return d.DeployDashboards(ctx, dashboards, opts)
	default:
		return d.DeployLooks(ctx, looks, opts)
	}
}

// runContentExport handles "ldeploy content export".
func runContentExport(cmd *cobra.Command, args []string) error {
	envName, _ := cmd.Flags().GetString("env")
	dir, _ := cmd.Flags().GetString("dir")

	env, err := environment(envName)
	if err != nil {
		return err
	}

	runner, err := newRunner(env)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.Global().With("environment", envName)
	if err := content.Export(ctx, runner, dir, log); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported Shared tree of %s to %s\n", envName, dir)
	return nil
}
