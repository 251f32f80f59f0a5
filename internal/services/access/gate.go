// Package access decides whether a user may read or change a project's tasks
package access

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/models"
)

// Gate answers membership questions for every task and lane operation.
// Access-denied and not-found are reported as distinct errors.
type Gate struct {
	repo database.MembershipReader
}

// NewGate creates a gate backed by the membership store
func NewGate(repo database.MembershipReader) *Gate {
	return &Gate{repo: repo}
}

// CanAccess reports whether the user owns the project or holds a membership row
func (g *Gate) CanAccess(ctx context.Context, userID, projectID int) (bool, error) {
	ok, err := g.repo.IsProjectMember(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check access: %w", err)
	}
	return ok, nil
}

// Authorize returns nil when the user may use the project,
// ErrNotFound when the project does not exist and ErrAccessDenied otherwise.
func (g *Gate) Authorize(ctx context.Context, userID, projectID int) error {
	ok, err := g.CanAccess(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	exists, err := g.repo.ProjectExists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if !exists {
		return fmt.Errorf("project %d: %w", projectID, models.ErrNotFound)
	}
	return fmt.Errorf("user %d on project %d: %w", userID, projectID, models.ErrAccessDenied)
}

// AuthorizeOwner is Authorize restricted to the project's owner
func (g *Gate) AuthorizeOwner(ctx context.Context, userID, projectID int) error {
	project, err := g.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project.OwnerID != userID {
		return fmt.Errorf("user %d is not the owner of project %d: %w", userID, projectID, models.ErrAccessDenied)
	}
	return nil
}

// IsMember reports whether userID may be assigned tasks in projectID
func (g *Gate) IsMember(ctx context.Context, projectID, userID int) (bool, error) {
	return g.CanAccess(ctx, userID, projectID)
}
