package task

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/cli/styles"
)

// ShowCmd returns the task show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a task",
		RunE:  runShow,
	}

	cmd.Flags().Int("id", 0, "Task ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	taskID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	card, err := cliInstance.App.BoardService.GetTask(ctx, user.ID, taskID)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(&card.Task, func(w io.Writer) {
		printTask(w, &card.Task)
		if card.AssigneeName != "" {
			fmt.Fprintf(w, "  %s %s\n", styles.LabelStyle.Render("Assignee:"), card.AssigneeName)
		}
		if card.CreatorName != "" {
			fmt.Fprintf(w, "  %s %s\n", styles.LabelStyle.Render("Created by:"), card.CreatorName)
		}
	})
}
