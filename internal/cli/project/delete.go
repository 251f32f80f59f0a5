package project

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project",
		Long:  "Delete a project and all of its tasks (owner only; requires confirmation unless --force, --json or --quiet).",
		RunE:  runDelete,
	}

	// Required flags
	cmd.Flags().Int("id", 0, "Project ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().Bool("force", false, "Skip confirmation")

	cli.AddOutputFlags(cmd, "Minimal output")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	force, _ := cmd.Flags().GetBool("force")

	projectID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	// Get project details for confirmation
	project, err := cliInstance.App.ProjectService.GetProject(ctx, user.ID, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	// Ask for confirmation unless force or a machine-readable mode
	if !force && !formatter.Quiet && !formatter.JSON {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete project #%d: '%s' and all of its tasks? (y/N): ", projectID, project.Name)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	if err := cliInstance.App.ProjectService.DeleteProject(ctx, user.ID, projectID); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return nil
	}
	return formatter.Success(map[string]int{"project_id": projectID}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Project %d deleted successfully\n", projectID)
	})
}
