// Package migrate holds the cli command that prepares the database
package migrate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
)

// MigrateCmd returns the migrate command. Opening the store applies the
// schema, so the command only has to report where it lives.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE:  runMigrate,
	}

	cli.AddOutputFlags(cmd, "No output")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}
	if formatter.Quiet {
		return nil
	}

	path := cliInstance.Config.Database.Path
	return formatter.Success(map[string]string{"database": path}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Database schema is up to date (%s)\n", path)
	})
}
