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

// CreateCmd returns the task create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task at the end of its lane",
		Long: `Create a new task. It is appended to the end of its lane.

Examples:
  # Simple task in the To Do lane
  tandem task create --as ada@example.com --project 1 --title "Fix login"

  # Straight into In Progress, assigned to a member
  tandem task create --as ada@example.com --project 1 --title "Fix login" \
    --status in_progress --priority high --assignee 2

  # Quiet mode for bash capture
  TASK_ID=$(tandem task create --as ada@example.com --project 1 --title "Fix login" --quiet)
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().Int("project", 0, "Project ID (required)")
	cmd.Flags().String("title", "", "Task title (required)")
	for _, name := range []string{"project", "title"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error("failed to mark flag as required", "error", err)
		}
	}

	// Optional flags
	cmd.Flags().String("description", "", "Task description (HTML is sanitized)")
	cmd.Flags().String("status", "todo", "Lane: todo, in_progress, done")
	cmd.Flags().String("priority", "medium", "Priority: low, medium, high")
	cmd.Flags().Int("assignee", 0, "User ID of the assignee (must be a project member)")

	cli.AddOutputFlags(cmd, "Minimal output (ID only)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := cli.RequireID(cmd, "project")
	if err != nil {
		return formatter.Fail(err)
	}
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	statusStr, _ := cmd.Flags().GetString("status")
	priorityStr, _ := cmd.Flags().GetString("priority")

	req := taskservice.CreateTaskRequest{
		Title:       title,
		Description: description,
		ProjectID:   projectID,
		// invalid values are passed through so the service reports every field at once
		Status:   models.Status(statusStr),
		Priority: models.Priority(priorityStr),
	}
	if status, err := models.ParseStatus(statusStr); err == nil {
		req.Status = status
	}
	if priority, err := models.ParsePriority(priorityStr); err == nil {
		req.Priority = priority
	}
	if cmd.Flags().Changed("assignee") {
		assignee, _ := cmd.Flags().GetInt("assignee")
		req.AssignedTo = &assignee
	}

	cliInstance, user, err := cli.Acting(cmd)
	if err != nil {
		return formatter.Fail(err)
	}

	task, err := cliInstance.App.TaskService.CreateTask(ctx, user.ID, req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(task, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Task '%s' created (ID: %d) in %s at position %d\n",
			task.Title, task.ID, task.Status, task.Position)
	})
}
