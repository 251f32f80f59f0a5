package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thenoetrevino/tandem/internal/models"
)

// TaskRepo handles task rows and the lane primitives the lane engine composes.
// It never decides a position on its own.
type TaskRepo struct {
	db querier
}

const taskColumns = `t.id, t.title, t.description, t.project_id, t.status, t.position,
	t.priority, t.assigned_to, t.created_by, t.created_at, t.updated_at`

// laneOrder sorts rows by board lane, then by position inside the lane
const laneOrder = `CASE t.status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 ELSE 2 END, t.position, t.id`

func scanTask(row interface{ Scan(...any) error }, extra ...any) (*models.Task, error) {
	t := &models.Task{}
	var assignedTo sql.NullInt64
	dest := []any{
		&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.Status, &t.Position,
		&t.Priority, &assignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.AssignedTo = nullInt64ToPtr(assignedTo)
	return t, nil
}

func (r *TaskRepo) queryTasks(ctx context.Context, op, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer closeRows(rows)

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return tasks, nil
}

// CreateTask inserts a task at the status and position the caller supplies
func (r *TaskRepo) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	priority := task.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, project_id, status, position, priority, assigned_to, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.ProjectID, task.Status, task.Position,
		priority, intPtrToNull(task.AssignedTo), task.CreatedBy,
	)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("insert task %q", task.Title), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("insert task", err)
	}
	return r.GetTask(ctx, int(id))
}

// GetTask retrieves a task by its ID
func (r *TaskRepo) GetTask(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get task %d", id), err)
	}
	return t, nil
}

// UpdateTask applies the fields present in patch. Status and position are never touched.
func (r *TaskRepo) UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error) {
	var (
		sets []string
		args []any
	)
	if v, ok := patch.Title.Get(); ok {
		sets = append(sets, "title = ?")
		args = append(args, v)
	}
	if v, ok := patch.Description.Get(); ok {
		sets = append(sets, "description = ?")
		args = append(args, v)
	}
	if v, ok := patch.Priority.Get(); ok {
		sets = append(sets, "priority = ?")
		args = append(args, v)
	}
	if v, ok := patch.AssignedTo.Get(); ok {
		sets = append(sets, "assigned_to = ?")
		args = append(args, intPtrToNull(v))
	}
	if len(sets) == 0 {
		return r.GetTask(ctx, id)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	op := fmt.Sprintf("update task %d", id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if err := checkAffected(op, res); err != nil {
		return nil, err
	}
	return r.GetTask(ctx, id)
}

// DeleteTask removes the row. Closing the gap it leaves is the caller's job.
func (r *TaskRepo) DeleteTask(ctx context.Context, id int) error {
	op := fmt.Sprintf("delete task %d", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return storageErr(op, err)
	}
	return checkAffected(op, res)
}

// ListTasksByProject returns every task of a project in board order
func (r *TaskRepo) ListTasksByProject(ctx context.Context, projectID int) ([]*models.Task, error) {
	return r.queryTasks(ctx, fmt.Sprintf("list tasks of project %d", projectID),
		`SELECT `+taskColumns+` FROM tasks t WHERE t.project_id = ? ORDER BY `+laneOrder,
		projectID)
}

// ListTasksByLane returns one lane ordered by position ascending
func (r *TaskRepo) ListTasksByLane(ctx context.Context, projectID int, status models.Status) ([]*models.Task, error) {
	return r.queryTasks(ctx, fmt.Sprintf("list lane %s of project %d", status, projectID),
		`SELECT `+taskColumns+` FROM tasks t WHERE t.project_id = ? AND t.status = ? ORDER BY t.position, t.id`,
		projectID, status)
}

// CountLane returns the number of tasks in a lane
func (r *TaskRepo) CountLane(ctx context.Context, projectID int, status models.Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = ? AND status = ?`,
		projectID, status,
	).Scan(&n)
	if err != nil {
		return 0, storageErr(fmt.Sprintf("count lane %s of project %d", status, projectID), err)
	}
	return n, nil
}

// ShiftLane adds delta to the position of every task in the lane whose
// position lies in [from, to]. A negative to means no upper bound.
func (r *TaskRepo) ShiftLane(ctx context.Context, projectID int, status models.Status, from, to, delta int) error {
	query := `UPDATE tasks SET position = position + ?
		WHERE project_id = ? AND status = ? AND position >= ?`
	args := []any{delta, projectID, status, from}
	if to >= 0 {
		query += ` AND position <= ?`
		args = append(args, to)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return storageErr(fmt.Sprintf("shift lane %s of project %d", status, projectID), err)
	}
	return nil
}

// PlaceTask sets a task's lane and position
func (r *TaskRepo) PlaceTask(ctx context.Context, id int, status models.Status, position int) error {
	op := fmt.Sprintf("place task %d", id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, position, id,
	)
	if err != nil {
		return storageErr(op, err)
	}
	return checkAffected(op, res)
}

const cardQuery = `SELECT ` + taskColumns + `, COALESCE(a.name, ''), COALESCE(c.name, '')
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assigned_to
	LEFT JOIN users c ON c.id = t.created_by`

func scanCard(row interface{ Scan(...any) error }) (*models.TaskCard, error) {
	card := &models.TaskCard{}
	t, err := scanTask(row, &card.AssigneeName, &card.CreatorName)
	if err != nil {
		return nil, err
	}
	card.Task = *t
	return card, nil
}

// ListBoardCards returns the project's tasks in board order with current user names joined in
func (r *TaskRepo) ListBoardCards(ctx context.Context, projectID int) ([]*models.TaskCard, error) {
	op := fmt.Sprintf("list board of project %d", projectID)
	rows, err := r.db.QueryContext(ctx, cardQuery+` WHERE t.project_id = ? ORDER BY `+laneOrder, projectID)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer closeRows(rows)

	cards := make([]*models.TaskCard, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return cards, nil
}

// GetTaskCard retrieves one task with its user names joined in
func (r *TaskRepo) GetTaskCard(ctx context.Context, id int) (*models.TaskCard, error) {
	card, err := scanCard(r.db.QueryRowContext(ctx, cardQuery+` WHERE t.id = ?`, id))
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get task card %d", id), err)
	}
	return card, nil
}
