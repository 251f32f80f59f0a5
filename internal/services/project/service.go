package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/thenoetrevino/tandem/internal/models"
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	GetProject(ctx context.Context, userID, projectID int) (*models.Project, error)
	ListProjects(ctx context.Context, userID int) ([]*models.Project, error)
	ListMembers(ctx context.Context, userID, projectID int) ([]*models.Member, error)

	// Write operations
	CreateProject(ctx context.Context, userID int, req CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, userID int, req UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, userID, projectID int) error
	AddMember(ctx context.Context, userID int, req AddMemberRequest) (*models.Member, error)
}

// CreateProjectRequest encapsulates data for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateProjectRequest encapsulates data for updating a project
type UpdateProjectRequest struct {
	ID          int     `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest grants an existing account access to a project
type AddMemberRequest struct {
	ProjectID int    `json:"-"`
	Email     string `json:"email"`
}

// repository defines the data access methods needed by the project service
// This interface is private to the service layer
type repository interface {
	CreateProject(ctx context.Context, name, description string, ownerID int) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, userID int) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id int, name, description string) error
	DeleteProject(ctx context.Context, id int) error

	AddMember(ctx context.Context, projectID, userID int, role models.Role) error
	ListMembers(ctx context.Context, projectID int) ([]*models.Member, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// gatekeeper is satisfied by access.Gate
type gatekeeper interface {
	Authorize(ctx context.Context, userID, projectID int) error
	AuthorizeOwner(ctx context.Context, userID, projectID int) error
}

// service implements Service interface with private repository
type service struct {
	repo   repository
	gate   gatekeeper
	logger *slog.Logger
}

// NewService creates a new project service with private repository
func NewService(repo repository, gate gatekeeper, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		gate:   gate,
		logger: logger.With("component", "project"),
	}
}

// GetProject returns a project the user can see
func (s *service) GetProject(ctx context.Context, userID, projectID int) (*models.Project, error) {
	if projectID <= 0 {
		return nil, models.NewValidationError("project_id", ErrInvalidProjectID.Error())
	}
	if err := s.gate.Authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.repo.GetProjectByID(ctx, projectID)
}

// ListProjects returns the projects the user owns or belongs to
func (s *service) ListProjects(ctx context.Context, userID int) ([]*models.Project, error) {
	return s.repo.ListProjectsForUser(ctx, userID)
}

// ListMembers returns a project's owner and members
func (s *service) ListMembers(ctx context.Context, userID, projectID int) ([]*models.Member, error) {
	if err := s.gate.Authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

// CreateProject creates a project owned by userID
func (s *service) CreateProject(ctx context.Context, userID int, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)

	verr := &models.ValidationError{}
	validateName(verr, name)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	project, err := s.repo.CreateProject(ctx, name, req.Description, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "owner_id", userID)
	return project, nil
}

// UpdateProject renames or re-describes a project; only the owner may
func (s *service) UpdateProject(ctx context.Context, userID int, req UpdateProjectRequest) (*models.Project, error) {
	if req.ID <= 0 {
		return nil, models.NewValidationError("project_id", ErrInvalidProjectID.Error())
	}
	if err := s.gate.AuthorizeOwner(ctx, userID, req.ID); err != nil {
		return nil, err
	}

	verr := &models.ValidationError{}
	if req.Name == nil && req.Description == nil {
		verr.Add("patch", ErrEmptyUpdate.Error())
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
		validateName(verr, trimmed)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// Get existing project to fill in missing fields
	existing, err := s.repo.GetProjectByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	name := existing.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := existing.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := s.repo.UpdateProject(ctx, req.ID, name, description); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.repo.GetProjectByID(ctx, req.ID)
}

// DeleteProject removes a project with its tasks and memberships
func (s *service) DeleteProject(ctx context.Context, userID, projectID int) error {
	if projectID <= 0 {
		return models.NewValidationError("project_id", ErrInvalidProjectID.Error())
	}
	if err := s.gate.AuthorizeOwner(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", projectID, "owner_id", userID)
	return nil
}

// AddMember looks the account up by email and grants it member access.
// Only the owner may add members.
func (s *service) AddMember(ctx context.Context, userID int, req AddMemberRequest) (*models.Member, error) {
	if req.ProjectID <= 0 {
		return nil, models.NewValidationError("project_id", ErrInvalidProjectID.Error())
	}
	if err := s.gate.AuthorizeOwner(ctx, userID, req.ProjectID); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, models.NewValidationError("email", ErrEmptyEmail.Error())
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", email, err)
	}
	if err := s.repo.AddMember(ctx, req.ProjectID, user.ID, models.RoleMember); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.Info("member added", "project_id", req.ProjectID, "user_id", user.ID)
	return &models.Member{
		ProjectID: req.ProjectID,
		UserID:    user.ID,
		Role:      models.RoleMember,
		Name:      user.Name,
		Email:     user.Email,
	}, nil
}

func validateName(verr *models.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("name", ErrEmptyName.Error())
	case utf8.RuneCountInString(name) > maxNameLength:
		verr.Add("name", ErrNameTooLong.Error())
	}
}
