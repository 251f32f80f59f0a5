package cli

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/models"
)

// AddGlobalFlags registers the persistent flags every subcommand can read
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/tandem/config.yaml)")
	cmd.PersistentFlags().String("as", "", "Email of the acting user (default $"+ActingUserEnv+")")
}

// Acting returns the CLI and the user a command runs as
func Acting(cmd *cobra.Command) (*CLI, *models.User, error) {
	c, err := GetCLIFromContext(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	as, _ := cmd.Flags().GetString("as")
	u, err := c.ActingUser(cmd.Context(), as)
	if err != nil {
		return nil, nil, err
	}
	return c, u, nil
}

// RequireID reads a positive integer flag
func RequireID(cmd *cobra.Command, name string) (int, error) {
	id, _ := cmd.Flags().GetInt(name)
	if id <= 0 {
		return 0, UsageError("--%s must be a positive id", name)
	}
	return id, nil
}
