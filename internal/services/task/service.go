package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/tandem/internal/models"
	"github.com/thenoetrevino/tandem/internal/services/lane"
)

// Service defines all task-related business operations.
// Every operation authorizes userID against the task's project before
// looking at the payload.
type Service interface {
	CreateTask(ctx context.Context, userID int, req CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, userID int, req UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int) error
	MoveTask(ctx context.Context, userID int, req MoveTaskRequest) (*lane.MoveResult, error)
}

// CreateTaskRequest encapsulates all data needed to create a task
type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ProjectID   int             `json:"project_id"`
	Status      models.Status   `json:"status,omitempty"`   // Optional: "" means todo
	Priority    models.Priority `json:"priority,omitempty"` // Optional: "" means medium
	AssignedTo  *int            `json:"assigned_to,omitempty"`
}

// UpdateTaskRequest carries a partial update; absent fields are left alone
type UpdateTaskRequest struct {
	TaskID int
	Patch  models.TaskPatch
}

// MoveTaskRequest asks for a task to be placed at a lane position
type MoveTaskRequest struct {
	TaskID      int           `json:"task_id"`
	NewStatus   models.Status `json:"new_status"`
	NewPosition int           `json:"new_position"`
}

// repository defines the data access methods needed by the task service
type repository interface {
	GetTask(ctx context.Context, id int) (*models.Task, error)
	UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error)
}

// gatekeeper is satisfied by access.Gate
type gatekeeper interface {
	Authorize(ctx context.Context, userID, projectID int) error
	IsMember(ctx context.Context, projectID, userID int) (bool, error)
}

// laneEngine is satisfied by lane.Engine
type laneEngine interface {
	InsertAt(ctx context.Context, userID, projectID int, task *models.Task) (*models.Task, error)
	RemoveAt(ctx context.Context, userID, taskID int) (*models.Task, error)
	MoveTo(ctx context.Context, userID, taskID int, newStatus models.Status, newPosition int) (*lane.MoveResult, error)
}

// service implements Service interface
type service struct {
	repo   repository
	gate   gatekeeper
	lanes  laneEngine
	logger *slog.Logger
}

// NewService creates a new task service
func NewService(repo repository, gate gatekeeper, lanes laneEngine, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		gate:   gate,
		lanes:  lanes,
		logger: logger.With("component", "task"),
	}
}

// CreateTask validates the request and appends the task to its lane
func (s *service) CreateTask(ctx context.Context, userID int, req CreateTaskRequest) (*models.Task, error) {
	verr := &models.ValidationError{}
	hasProject := req.ProjectID > 0
	if !hasProject {
		// nothing to authorize against; the remaining fields are still reported
		verr.Add("project_id", ErrInvalidProjectID.Error())
	} else if err := s.gate.Authorize(ctx, userID, req.ProjectID); err != nil {
		return nil, err
	}

	if req.Status == "" {
		req.Status = models.StatusTodo
	}
	if req.Priority == "" {
		req.Priority = models.DefaultPriority
	}
	req.Title = strings.TrimSpace(req.Title)

	validateTitle(verr, req.Title)
	validateDescription(verr, req.Description)
	if !req.Status.Valid() {
		verr.Add("status", ErrInvalidStatus.Error())
	}
	if !req.Priority.Valid() {
		verr.Add("priority", ErrInvalidPriority.Error())
	}
	if hasProject {
		if err := s.validateAssignee(ctx, verr, req.ProjectID, req.AssignedTo); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	task, err := s.lanes.InsertAt(ctx, userID, req.ProjectID, &models.Task{
		Title:       req.Title,
		Description: sanitizeDescription(req.Description),
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "project_id", task.ProjectID, "user_id", userID)
	return task, nil
}

// UpdateTask applies a patch of title, description, priority and assignee.
// Status and position only change through MoveTask.
func (s *service) UpdateTask(ctx context.Context, userID int, req UpdateTaskRequest) (*models.Task, error) {
	if req.TaskID <= 0 {
		return nil, models.NewValidationError("task_id", ErrInvalidTaskID.Error())
	}

	current, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if err := s.gate.Authorize(ctx, userID, current.ProjectID); err != nil {
		return nil, err
	}

	patch := req.Patch
	verr := &models.ValidationError{}
	if patch.IsEmpty() {
		verr.Add("patch", ErrEmptyPatch.Error())
	}
	if title, ok := patch.Title.Get(); ok {
		title = strings.TrimSpace(title)
		validateTitle(verr, title)
		patch.Title = models.Some(title)
	}
	if desc, ok := patch.Description.Get(); ok {
		validateDescription(verr, desc)
		patch.Description = models.Some(sanitizeDescription(desc))
	}
	if p, ok := patch.Priority.Get(); ok && !p.Valid() {
		verr.Add("priority", ErrInvalidPriority.Error())
	}
	if assignee, ok := patch.AssignedTo.Get(); ok {
		if err := s.validateAssignee(ctx, verr, current.ProjectID, assignee); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateTask(ctx, req.TaskID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// DeleteTask removes a task and compacts its lane
func (s *service) DeleteTask(ctx context.Context, userID, taskID int) error {
	if taskID <= 0 {
		return models.NewValidationError("task_id", ErrInvalidTaskID.Error())
	}
	removed, err := s.lanes.RemoveAt(ctx, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("task deleted", "task_id", taskID, "project_id", removed.ProjectID, "user_id", userID)
	return nil
}

// MoveTask reorders a task within or across lanes
func (s *service) MoveTask(ctx context.Context, userID int, req MoveTaskRequest) (*lane.MoveResult, error) {
	if req.TaskID <= 0 {
		return nil, models.NewValidationError("task_id", ErrInvalidTaskID.Error())
	}
	res, err := s.lanes.MoveTo(ctx, userID, req.TaskID, req.NewStatus, req.NewPosition)
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}
	return res, nil
}

func validateTitle(verr *models.ValidationError, title string) {
	switch {
	case title == "":
		verr.Add("title", ErrEmptyTitle.Error())
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Add("title", ErrTitleTooLong.Error())
	}
}

func validateDescription(verr *models.ValidationError, desc string) {
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		verr.Add("description", ErrDescriptionTooLong.Error())
	}
}

// validateAssignee records a field error when assignee is set but not a
// member; only a failed membership lookup is returned as an error.
func (s *service) validateAssignee(ctx context.Context, verr *models.ValidationError, projectID int, assignee *int) error {
	if assignee == nil {
		return nil
	}
	ok, err := s.gate.IsMember(ctx, projectID, *assignee)
	if err != nil {
		return err
	}
	if !ok {
		verr.Add("assigned_to", ErrInvalidAssignee.Error())
	}
	return nil
}
