package boardclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/tandem/internal/models"
)

// API is the subset of Client the controller drives
type API interface {
	GetBoard(ctx context.Context, projectID int) (*models.Board, error)
	Reorder(ctx context.Context, taskID int, status models.Status, position int) (*ReorderResult, error)
	CreateTask(ctx context.Context, in CreateTaskInput, idempotencyKey string) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID int) error
}

// Controller holds the last known board of one project. Moves are applied
// locally first so a UI can redraw at once; the server's board always
// replaces the local guess afterwards.
type Controller struct {
	api       API
	projectID int
	logger    *slog.Logger

	// ops serializes mutations so reconciles apply in order
	ops sync.Mutex

	mu    sync.RWMutex
	board *models.Board
}

// NewController creates a controller for projectID
func NewController(api API, projectID int, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:       api,
		projectID: projectID,
		logger:    logger.With("component", "boardclient", "project_id", projectID),
	}
}

// Board returns a copy of the current view, or nil before Load
func (c *Controller) Board() *models.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.board == nil {
		return nil
	}
	return c.board.Clone()
}

func (c *Controller) set(b *models.Board) {
	c.mu.Lock()
	c.board = b
	c.mu.Unlock()
}

// Load replaces the view with the server's board
func (c *Controller) Load(ctx context.Context) error {
	board, err := c.api.GetBoard(ctx, c.projectID)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	c.set(board)
	return nil
}

// Move reorders optimistically, then asks the server. On failure the
// optimistic state is discarded by re-fetching the board, or by restoring
// the pre-move view when the re-fetch fails too; on success the board
// returned by the server is adopted.
func (c *Controller) Move(ctx context.Context, taskID int, status models.Status, position int) (bool, error) {
	if !status.Valid() {
		return false, models.NewValidationError("new_status", fmt.Sprintf("unknown status %q", status))
	}

	c.ops.Lock()
	defer c.ops.Unlock()

	current := c.Board()
	if current != nil {
		optimistic := current.Clone()
		if _, err := optimistic.Move(taskID, status, position); err == nil {
			c.set(optimistic)
		}
	}

	res, err := c.api.Reorder(ctx, taskID, status, position)
	if err != nil {
		if lerr := c.Load(ctx); lerr != nil {
			c.logger.Warn("reconcile after failed move also failed, restoring previous board",
				"task_id", taskID, "error", lerr)
			c.set(current)
		}
		return false, fmt.Errorf("failed to move task %d: %w", taskID, err)
	}

	c.set(res.Board)
	return res.Moved, nil
}

// Create adds a task and reloads the board
func (c *Controller) Create(ctx context.Context, in CreateTaskInput, idempotencyKey string) (*models.Task, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	in.ProjectID = c.projectID
	task, err := c.api.CreateTask(ctx, in, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, c.Load(ctx)
}

// Delete removes a task and reloads the board
func (c *Controller) Delete(ctx context.Context, taskID int) error {
	c.ops.Lock()
	defer c.ops.Unlock()

	if err := c.api.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}
	return c.Load(ctx)
}
