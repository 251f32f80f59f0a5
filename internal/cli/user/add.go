package user

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
)

// AddCmd returns the user add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account",
		Long: `Register an account directly in the database.

Examples:
  tandem user add --email ada@example.com --password 'correct horse'
  tandem user add --email ada@example.com --name Ada --password 'correct horse' --quiet
`,
		RunE: runAdd,
	}

	cmd.Flags().String("email", "", "Email address (required)")
	cmd.Flags().String("password", "", "Password, at least 8 characters (required)")
	for _, name := range []string{"email", "password"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error("failed to mark flag as required", "error", err)
		}
	}
	cmd.Flags().String("name", "", "Display name (default: the email's local part)")

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")

	u, err := cliInstance.App.UserService.Register(ctx, userservice.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(u, func(w io.Writer) {
		fmt.Fprintf(w, "✓ User %s <%s> created (ID: %d)\n", u.Name, u.Email, u.ID)
	})
}
