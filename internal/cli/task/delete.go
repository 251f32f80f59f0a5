package task

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
)

// DeleteCmd returns the task delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a task",
		Long:  "Delete a task; the tasks below it in its lane move up one position.",
		RunE:  runDelete,
	}

	cmd.Flags().Int("id", 0, "Task ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	cli.AddOutputFlags(cmd, "Minimal output")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	if err := cliInstance.App.TaskService.DeleteTask(ctx, user.ID, taskID); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return nil
	}
	return formatter.Success(map[string]int{"task_id": taskID}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Task %d deleted successfully\n", taskID)
	})
}
