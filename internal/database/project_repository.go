package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/tandem/internal/models"
)

// ProjectRepo handles projects and their memberships.
type ProjectRepo struct {
	db *sql.DB
}

const projectColumns = `p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates a project and its owner membership in one transaction
func (r *ProjectRepo) CreateProject(ctx context.Context, name, description string, ownerID int) (*models.Project, error) {
	var projectID int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO projects (name, description, owner_id) VALUES (?, ?, ?)`,
			name, description, ownerID,
		)
		if err != nil {
			return storageErr(fmt.Sprintf("insert project %q", name), err)
		}

		projectID, err = result.LastInsertId()
		if err != nil {
			return storageErr("insert project", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (project_id, user_id, role) VALUES (?, ?, ?)`,
			projectID, ownerID, models.RoleOwner,
		)
		if err != nil {
			return storageErr(fmt.Sprintf("insert owner membership for project %d", projectID), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetProjectByID(ctx, int(projectID))
}

// GetProjectByID retrieves a project by its ID
func (r *ProjectRepo) GetProjectByID(ctx context.Context, id int) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
	if err != nil {
		return nil, storageErr(fmt.Sprintf("get project %d", id), err)
	}
	return p, nil
}

// ListProjectsForUser returns the projects a user owns or belongs to
func (r *ProjectRepo) ListProjectsForUser(ctx context.Context, userID int) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		LEFT JOIN project_members m ON m.project_id = p.id AND m.user_id = ?
		WHERE p.owner_id = ? OR m.user_id IS NOT NULL
		ORDER BY p.id`,
		userID, userID,
	)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("list projects for user %d", userID), err)
	}
	defer closeRows(rows)

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, storageErr("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list projects", err)
	}
	return projects, nil
}

// UpdateProject replaces a project's name and description
func (r *ProjectRepo) UpdateProject(ctx context.Context, id int, name, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return storageErr(fmt.Sprintf("update project %d", id), err)
	}
	return checkAffected(fmt.Sprintf("update project %d", id), res)
}

// DeleteProject removes a project; tasks and memberships cascade
func (r *ProjectRepo) DeleteProject(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return storageErr(fmt.Sprintf("delete project %d", id), err)
	}
	return checkAffected(fmt.Sprintf("delete project %d", id), res)
}

// ProjectExists reports whether a project row exists
func (r *ProjectRepo) ProjectExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, storageErr(fmt.Sprintf("check project %d", id), err)
	}
	return exists, nil
}

// IsProjectMember reports whether the user owns the project or holds a membership row
func (r *ProjectRepo) IsProjectMember(ctx context.Context, projectID, userID int) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM projects p
			WHERE p.id = ? AND (
				p.owner_id = ?
				OR EXISTS(SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)
			)
		)`,
		projectID, userID, userID,
	).Scan(&ok)
	if err != nil {
		return false, storageErr(fmt.Sprintf("check membership of user %d in project %d", userID, projectID), err)
	}
	return ok, nil
}

// AddMember inserts a membership; an existing membership yields ErrConflict
func (r *ProjectRepo) AddMember(ctx context.Context, projectID, userID int, role models.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES (?, ?, ?)`,
		projectID, userID, role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %d already belongs to project %d: %w", userID, projectID, models.ErrConflict)
		}
		return storageErr(fmt.Sprintf("add member %d to project %d", userID, projectID), err)
	}
	return nil
}

// ListMembers returns the project's memberships, owner first
func (r *ProjectRepo) ListMembers(ctx context.Context, projectID int) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.project_id, m.user_id, m.role, u.name, u.email, m.joined_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = ?
		ORDER BY CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, m.joined_at, u.id`,
		projectID,
	)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("list members of project %d", projectID), err)
	}
	defer closeRows(rows)

	members := make([]*models.Member, 0)
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, storageErr("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list members", err)
	}
	return members, nil
}
