package project

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	projectservice "github.com/thenoetrevino/tandem/internal/services/project"
)

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project owned by the acting user.

Examples:
  # Simple project (human-readable output)
  tandem project create --as ada@example.com --name="Backend API"

  # JSON output for agents
  tandem project create --as ada@example.com --name="Backend API" --json

  # Quiet mode for bash capture
  PROJECT_ID=$(tandem project create --as ada@example.com --name="Backend API" --quiet)
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("name", "", "Project name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().String("description", "", "Project description")

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	project, err := cliInstance.App.ProjectService.CreateProject(ctx, user.ID, projectservice.CreateProjectRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(project, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Project '%s' created successfully (ID: %d)\n", project.Name, project.ID)
		if project.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", project.Description)
		}
	})
}
