package task

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/cli/styles"
	"github.com/thenoetrevino/tandem/internal/models"
	taskservice "github.com/thenoetrevino/tandem/internal/services/task"
)

// MoveCmd returns the task move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a task within or across lanes",
		Long: `Move a task to a position in a lane. The position is zero-based and is
clamped to the lane, so a large value moves the task to the end.

Examples:
  # Top of In Progress
  tandem task move --as ada@example.com --id 1 --status in_progress --position 0

  # Bottom of Done
  tandem task move --as ada@example.com --id 1 --status done --position 999

  # Reorder within the current lane
  tandem task move --as ada@example.com --id 1 --status todo --position 2
`,
		RunE: runMove,
	}

	// Required flags
	cmd.Flags().Int("id", 0, "Task ID (required)")
	cmd.Flags().String("status", "", "Target lane: todo, in_progress, done (required)")
	for _, name := range []string{"id", "status"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error("failed to mark flag as required", "error", err)
		}
	}
	cmd.Flags().Int("position", 0, "Zero-based target position in the lane")

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	taskID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}
	statusStr, _ := cmd.Flags().GetString("status")
	position, _ := cmd.Flags().GetInt("position")

	// an unknown status is passed through and rejected after the access check
	status := models.Status(statusStr)
	if parsed, err := models.ParseStatus(statusStr); err == nil {
		status = parsed
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	res, err := cliInstance.App.TaskService.MoveTask(ctx, user.ID, taskservice.MoveTaskRequest{
		TaskID:      taskID,
		NewStatus:   status,
		NewPosition: position,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(res.Task, func(w io.Writer) {
		if !res.Moved {
			fmt.Fprintf(w, "Task %d is already at %s position %d\n", taskID, styles.LaneTitle(res.Task.Status), res.Task.Position)
			return
		}
		fmt.Fprintf(w, "✓ Task %d moved from %s/%d to %s/%d\n", taskID,
			styles.LaneTitle(res.FromStatus), res.FromPosition,
			styles.LaneTitle(res.Task.Status), res.Task.Position)
	})
}
