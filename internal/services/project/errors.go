package project

import "errors"

// Domain errors for project service
var (
	// Validation errors
	ErrEmptyName        = errors.New("project name cannot be empty")
	ErrNameTooLong      = errors.New("project name cannot exceed 100 characters")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrEmptyEmail       = errors.New("member email cannot be empty")
	ErrEmptyUpdate      = errors.New("nothing to update")
)

const maxNameLength = 100
