package user

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/models"
)

type tokenResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// TokenCmd returns the user token subcommand
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for an account",
		Long: `Issue a bearer token signed with auth.jwt_secret, without asking for the
password. Meant for operators with access to the database.

Examples:
  TOKEN=$(tandem user token --email ada@example.com --quiet)
  curl -H "Authorization: Bearer $TOKEN" localhost:8080/api/projects
`,
		RunE: runToken,
	}

	cmd.Flags().String("email", "", "Email of the account (required)")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd, "Minimal output (token only)")

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	email, _ := cmd.Flags().GetString("email")
	u, err := cliInstance.App.UserService.GetUserByEmail(ctx, email)
	if err != nil {
		return formatter.Fail(err)
	}

	cfg := cliInstance.Config.Auth
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return formatter.Fail(&cli.CodedError{Code: cli.ExitDataErr, Err: fmt.Errorf("auth config: %w", err)})
	}
	token, expiresAt, err := issuer.Issue(u.ID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	}
	return formatter.Success(tokenResult{Token: token, ExpiresAt: expiresAt, User: u}, func(w io.Writer) {
		fmt.Fprintf(w, "Token for %s (expires %s):\n%s\n", u.Email, expiresAt.Format(time.RFC3339), token)
	})
}
