// Package cmd assembles the tandem command tree
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/cli/board"
	"github.com/thenoetrevino/tandem/internal/cli/migrate"
	"github.com/thenoetrevino/tandem/internal/cli/project"
	"github.com/thenoetrevino/tandem/internal/cli/serve"
	"github.com/thenoetrevino/tandem/internal/cli/task"
	"github.com/thenoetrevino/tandem/internal/cli/user"
	"github.com/thenoetrevino/tandem/internal/config"
)

// NewRootCmd builds the command tree. onOpen is called with the CLI the
// root opens so the caller can close it after execution.
func NewRootCmd(onOpen func(*cli.CLI)) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tandem",
		Short: "Tandem - a shared kanban board",
		Long: `Tandem is a multi-user kanban board. Projects hold tasks in three ordered
lanes (todo, in_progress, done); members reorder them over the HTTP API or
from this command line.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup(onOpen),
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(serve.ServeCmd())
	rootCmd.AddCommand(migrate.MigrateCmd())
	rootCmd.AddCommand(user.UserCmd())
	rootCmd.AddCommand(project.ProjectCmd())
	rootCmd.AddCommand(task.TaskCmd())
	rootCmd.AddCommand(board.BoardCmd())

	return rootCmd
}

// setup loads the config and opens the CLI unless one is already in the
// command's context
func setup(onOpen func(*cli.CLI)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := cli.GetCLIFromContext(ctx); err == nil || cmd.Name() == "help" {
			return nil
		}

		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return &cli.CodedError{Code: cli.ExitDataErr, Err: err}
		}

		c, err := cli.NewCLI(ctx, cfg)
		if err != nil {
			return &cli.CodedError{Code: cli.ExitUnavailable, Err: err}
		}
		if onOpen != nil {
			onOpen(c)
		}
		cmd.SetContext(cli.WithCLI(ctx, c))
		return nil
	}
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opened *cli.CLI
	rootCmd := NewRootCmd(func(c *cli.CLI) { opened = c })
	err := rootCmd.ExecuteContext(ctx)

	if opened != nil {
		if cerr := opened.Close(); cerr != nil {
			slog.Error("failed to close CLI", "error", cerr)
		}
	}
	return exitCode(rootCmd, err)
}

// exitCode reports errors that did not pass through an OutputFormatter.
// Those come from cobra itself (unknown flags, missing required flags) and
// are usage errors.
func exitCode(rootCmd *cobra.Command, err error) int {
	if err == nil {
		return cli.ExitSuccess
	}

	var exitErr *cli.CodedError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err)
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Run '%s --help' for usage.\n", rootCmd.CommandPath())
	return cli.ExitUsage
}
