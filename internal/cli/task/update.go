package task

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/models"
	taskservice "github.com/thenoetrevino/tandem/internal/services/task"
)

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a task",
		Long: `Update task title, description, priority or assignee.
Only the flags given are changed. Use 'tandem task move' to change lane or position.

Examples:
  tandem task update --as ada@example.com --id 3 --priority high
  tandem task update --as ada@example.com --id 3 --assignee 2
  tandem task update --as ada@example.com --id 3 --unassign
`,
		RunE: runUpdate,
	}

	// Required flags
	cmd.Flags().Int("id", 0, "Task ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional update flags
	cmd.Flags().String("title", "", "New task title")
	cmd.Flags().String("description", "", "New task description")
	cmd.Flags().String("priority", "", "New priority: low, medium, high")
	cmd.Flags().Int("assignee", 0, "User ID of the new assignee")
	cmd.Flags().Bool("unassign", false, "Clear the assignee")
	cmd.MarkFlagsMutuallyExclusive("assignee", "unassign")

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	flags := cmd.Flags()

	taskID, err := cli.RequireID(cmd, "id")
	if err != nil {
		return formatter.Fail(err)
	}

	var patch models.TaskPatch
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = models.Some(title)
	}
	if flags.Changed("description") {
		desc, _ := flags.GetString("description")
		patch.Description = models.Some(desc)
	}
	if flags.Changed("priority") {
		p, _ := flags.GetString("priority")
		priority := models.Priority(p)
		if parsed, err := models.ParsePriority(p); err == nil {
			priority = parsed
		}
		patch.Priority = models.Some(priority)
	}
	if flags.Changed("assignee") {
		assignee, _ := flags.GetInt("assignee")
		patch.AssignedTo = models.Some(&assignee)
	}
	if unassign, _ := flags.GetBool("unassign"); unassign {
		patch.AssignedTo = models.Some[*int](nil)
	}

	// At least one update field must be provided
	if patch.IsEmpty() {
		return formatter.Fail(cli.UsageError("at least one of --title, --description, --priority, --assignee or --unassign must be specified"))
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	task, err := cliInstance.App.TaskService.UpdateTask(ctx, user.ID, taskservice.UpdateTaskRequest{
		TaskID: taskID,
		Patch:  patch,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(task, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Task %d updated successfully\n", task.ID)
	})
}
