package project

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	projectservice "github.com/thenoetrevino/tandem/internal/services/project"
)

// AddMemberCmd returns the project add-member subcommand
func AddMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Add a registered user to a project",
		Long: `Add a registered user to a project. Only the owner may add members.

Examples:
  tandem project add-member --as ada@example.com --id 1 --email grace@example.com
`,
		RunE: runAddMember,
	}

	cmd.Flags().Int("id", 0, "Project ID (required)")
	cmd.Flags().String("email", "", "Email of the user to add (required)")
	for _, name := range []string{"id", "email"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error("failed to mark flag as required", "error", err)
		}
	}

	cli.AddOutputFlags(cmd, "Minimal output (user ID only)")

	return cmd
}

func runAddMember(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}
	email, _ := cmd.Flags().GetString("email")

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	member, err := cliInstance.App.ProjectService.AddMember(ctx, user.ID, projectservice.AddMemberRequest{
		ProjectID: projectID,
		Email:     email,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return formatter.IDs([]int{member.UserID})
	}
	return formatter.Success(member, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s <%s> added to project %d as %s\n", member.Name, member.Email, member.ProjectID, member.Role)
	})
}

// MembersCmd returns the project members subcommand
func MembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List the members of a project",
		RunE:  runMembers,
	}

	cmd.Flags().Int("id", 0, "Project ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd, "Minimal output (user IDs only)")

	return cmd
}

func runMembers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	members, err := cliInstance.App.ProjectService.ListMembers(ctx, user.ID, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		ids := make([]int, len(members))
		for i, m := range members {
			ids[i] = m.UserID
		}
		return formatter.IDs(ids)
	}

	return formatter.Success(members, func(w io.Writer) {
		for _, m := range members {
			fmt.Fprintf(w, "  [%d] %s <%s> %s\n", m.UserID, m.Name, m.Email, m.Role)
		}
	})
}
