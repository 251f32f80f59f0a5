package project

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the acting user's projects",
		Long:  "List every project the acting user owns or is a member of.",
		RunE:  runList,
	}

	cli.AddOutputFlags(cmd, "Minimal output (IDs only)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	projects, err := cliInstance.App.ProjectService.ListProjects(ctx, user.ID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		ids := make([]int, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		return formatter.IDs(ids)
	}

	return formatter.Success(projects, func(w io.Writer) {
		if len(projects) == 0 {
			fmt.Fprintln(w, "No projects found")
			return
		}

		fmt.Fprintf(w, "Found %d projects:\n\n", len(projects))
		for _, p := range projects {
			role := "member"
			if p.OwnerID == user.ID {
				role = "owner"
			}
			fmt.Fprintf(w, "  [%d] %s (%s)", p.ID, p.Name, role)
			if p.Description != "" {
				fmt.Fprintf(w, " - %s", p.Description)
			}
			fmt.Fprintln(w)
		}
	})
}
