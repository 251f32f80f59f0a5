package task

import "errors"

// Field-level validation failures. They are reported inside a
// models.ValidationError, one entry per violated field.
var (
	ErrEmptyTitle         = errors.New("task title cannot be empty")
	ErrTitleTooLong       = errors.New("task title cannot exceed 255 characters")
	ErrInvalidTaskID      = errors.New("invalid task ID")
	ErrInvalidProjectID   = errors.New("invalid project ID")
	ErrInvalidStatus      = errors.New("status must be todo, in_progress or done")
	ErrInvalidPriority    = errors.New("priority must be low, medium or high")
	ErrInvalidAssignee    = errors.New("assignee is not a member of the project")
	ErrEmptyPatch         = errors.New("no fields to update")
	ErrDescriptionTooLong = errors.New("task description cannot exceed 10000 characters")
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 10000
)
