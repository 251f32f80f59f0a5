// Package project holds all cli commands related to projects
//
// e.g., tandem project ...
package project

import (
	"github.com/spf13/cobra"
)

// ProjectCmd returns the project parent command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects and their members",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(AddMemberCmd())
	cmd.AddCommand(MembersCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}
