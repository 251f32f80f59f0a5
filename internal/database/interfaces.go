package database

import (
	"context"

	"github.com/thenoetrevino/tandem/internal/models"
)

// UserRepository defines account lookups and registration.
type UserRepository interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// ProjectRepository defines project and membership operations.
type ProjectRepository interface {
	CreateProject(ctx context.Context, name, description string, ownerID int) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, userID int) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id int, name, description string) error
	DeleteProject(ctx context.Context, id int) error
}

// MembershipReader answers the questions the authorization gate asks.
type MembershipReader interface {
	ProjectExists(ctx context.Context, id int) (bool, error)
	IsProjectMember(ctx context.Context, projectID, userID int) (bool, error)
	GetProjectByID(ctx context.Context, id int) (*models.Project, error)
}

// MembershipWriter defines membership mutations and listings.
type MembershipWriter interface {
	AddMember(ctx context.Context, projectID, userID int, role models.Role) error
	ListMembers(ctx context.Context, projectID int) ([]*models.Member, error)
}

// TaskReader defines read operations for tasks.
type TaskReader interface {
	GetTask(ctx context.Context, id int) (*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID int) ([]*models.Task, error)
	ListTasksByLane(ctx context.Context, projectID int, status models.Status) ([]*models.Task, error)
	ListBoardCards(ctx context.Context, projectID int) ([]*models.TaskCard, error)
	GetTaskCard(ctx context.Context, id int) (*models.TaskCard, error)
}

// TaskWriter defines write operations for tasks.
type TaskWriter interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// LaneStore defines the position primitives used by the lane engine.
type LaneStore interface {
	CountLane(ctx context.Context, projectID int, status models.Status) (int, error)
	ShiftLane(ctx context.Context, projectID int, status models.Status, from, to, delta int) error
	PlaceTask(ctx context.Context, id int, status models.Status, position int) error
}

// TaskStore combines all task-related operations.
type TaskStore interface {
	TaskReader
	TaskWriter
	LaneStore
}

// DataStore defines the unified interface for all data operations.
// Consumers depend on the smaller interfaces where they can.
type DataStore interface {
	UserRepository
	ProjectRepository
	MembershipReader
	MembershipWriter
	TaskStore

	// WithTx runs fn against a TaskStore bound to one transaction.
	// fn must only use the store it is given.
	WithTx(ctx context.Context, fn func(TaskStore) error) error
}
