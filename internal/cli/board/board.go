// Package board holds the cli commands that render a project's board
//
// e.g., tandem board ...
package board

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/cli/styles"
	"github.com/thenoetrevino/tandem/internal/models"
)

// BoardCmd returns the board parent command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "View project boards",
	}

	cmd.AddCommand(ShowCmd())

	return cmd
}

// ShowCmd returns the board show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a project's lanes",
		Long: `Show a project's tasks grouped by lane, each lane in position order.

Examples:
  tandem board show --as ada@example.com --project 1
  tandem board show --as ada@example.com --project 1 --json
`,
		RunE: runShow,
	}

	cmd.Flags().Int("project", 0, "Project ID (required)")
	if err := cmd.MarkFlagRequired("project"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd, "Minimal output (task IDs, lane by lane)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := cli.RequireID(cmd, "project")
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	board, err := cliInstance.App.BoardService.GetBoard(ctx, user.ID, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		var ids []int
		for _, s := range models.Statuses {
			for _, c := range board.Lane(s) {
				ids = append(ids, c.ID)
			}
		}
		return formatter.IDs(ids)
	}

	return formatter.Success(board, func(w io.Writer) {
		fmt.Fprintln(w, styles.RenderBoard(board))
	})
}
