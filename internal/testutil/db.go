package testutil

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/models"
)

// SetupTestRepo creates an in-memory database with the production schema
func SetupTestRepo(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return database.NewRepository(db)
}

// SetupTestRepoFile creates a file-backed database. Tests that cancel a
// transaction need it: database/sql may discard the connection on rollback,
// which would take an in-memory database with it.
func SetupTestRepoFile(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.InitDB(context.Background(), filepath.Join(t.TempDir(), "tandem.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return database.NewRepository(db)
}

// CreateTestUser registers a user with a placeholder hash and returns it
func CreateTestUser(t *testing.T, repo database.UserRepository, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, email, "x")
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", email, err)
	}
	return u
}

// CreateTestProject creates a project owned by ownerID and returns its ID
func CreateTestProject(t *testing.T, repo database.ProjectRepository, ownerID int, name string) int {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), name, "", ownerID)
	if err != nil {
		t.Fatalf("Failed to create test project %s: %v", name, err)
	}
	return p.ID
}

// AddTestMember grants userID member access to projectID
func AddTestMember(t *testing.T, repo database.MembershipWriter, projectID, userID int) {
	t.Helper()
	if err := repo.AddMember(context.Background(), projectID, userID, models.RoleMember); err != nil {
		t.Fatalf("Failed to add member %d to project %d: %v", userID, projectID, err)
	}
}

// LaneIDs returns the task IDs of a lane in position order
func LaneIDs(t *testing.T, repo database.TaskReader, projectID int, status models.Status) []int {
	t.Helper()
	tasks, err := repo.ListTasksByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	ids := make([]int, 0)
	for _, task := range tasks {
		if task.Status == status {
			ids = append(ids, task.ID)
		}
	}
	return ids
}

// Positions maps every task of the project to its (status, position)
func Positions(t *testing.T, repo database.TaskReader, projectID int) map[int]string {
	t.Helper()
	tasks, err := repo.ListTasksByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	out := make(map[int]string, len(tasks))
	for _, task := range tasks {
		out[task.ID] = string(task.Status) + "/" + strconv.Itoa(task.Position)
	}
	return out
}

// AssertLanesDense fails the test unless every lane of the project holds
// exactly the positions 0..n-1 with no gaps or duplicates.
func AssertLanesDense(t *testing.T, repo database.TaskReader, projectID int) {
	t.Helper()
	tasks, err := repo.ListTasksByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}

	seen := make(map[models.Status][]int)
	for _, task := range tasks {
		seen[task.Status] = append(seen[task.Status], task.Position)
	}
	for status, positions := range seen {
		for i, pos := range positions {
			if pos != i {
				t.Errorf("lane %s of project %d not dense: positions %v", status, projectID, positions)
				break
			}
		}
	}
}
