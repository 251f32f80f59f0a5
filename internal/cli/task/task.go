// Package task holds all cli commands related to tasks
//
// e.g., tandem task ...
package task

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/cli/styles"
	"github.com/thenoetrevino/tandem/internal/models"
)

// TaskCmd returns the task parent command
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, edit, reorder and delete tasks",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func printTask(w io.Writer, t *models.Task) {
	fmt.Fprintf(w, "%s %s\n", styles.TitleStyle.Render(fmt.Sprintf("#%d", t.ID)), t.Title)
	fmt.Fprintf(w, "  %s %s  %s %d\n",
		styles.LabelStyle.Render("Lane:"), styles.LaneTitle(t.Status),
		styles.LabelStyle.Render("Position:"), t.Position)
	fmt.Fprintf(w, "  %s %s\n", styles.LabelStyle.Render("Priority:"), styles.PriorityText(t.Priority))
	if t.Description != "" {
		fmt.Fprintf(w, "  %s %s\n", styles.LabelStyle.Render("Description:"), t.Description)
	}
}
