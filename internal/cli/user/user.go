// Package user holds the administrative cli commands for accounts
//
// e.g., tandem user ...
package user

import (
	"github.com/spf13/cobra"
)

// UserCmd returns the user parent command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts and issue API tokens",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(TokenCmd())

	return cmd
}
