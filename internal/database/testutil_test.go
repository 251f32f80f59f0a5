package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/thenoetrevino/tandem/internal/models"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestRepo opens an in-memory database with the real migrations applied
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

// setupTestRepoFile opens a file-backed database for persistence checks
func setupTestRepoFile(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tandem.db")
	db, err := InitDB(context.Background(), path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return NewRepository(db), path
}

// ============================================================================
// FIXTURES
// ============================================================================

func createTestUser(t *testing.T, repo *Repository, email string) *models.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), email, email, "hash")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return u
}

func createTestProject(t *testing.T, repo *Repository, name string, ownerID int) *models.Project {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), name, "", ownerID)
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}
	return p
}

// createTestTask appends a task to the tail of its lane, the way the lane engine does
func createTestTask(t *testing.T, repo *Repository, projectID, createdBy int, status models.Status, title string) *models.Task {
	t.Helper()
	ctx := context.Background()
	n, err := repo.CountLane(ctx, projectID, status)
	if err != nil {
		t.Fatalf("Failed to count lane: %v", err)
	}
	task, err := repo.CreateTask(ctx, &models.Task{
		Title:     title,
		ProjectID: projectID,
		Status:    status,
		Position:  n,
		CreatedBy: createdBy,
	})
	if err != nil {
		t.Fatalf("Failed to create task %s: %v", title, err)
	}
	return task
}

// ============================================================================
// TEST ASSERTION HELPERS
// ============================================================================

// laneTitles returns the titles of a lane in position order and checks density
func laneTitles(t *testing.T, repo *Repository, projectID int, status models.Status) []string {
	t.Helper()
	tasks, err := repo.ListTasksByLane(context.Background(), projectID, status)
	if err != nil {
		t.Fatalf("Failed to list lane %s: %v", status, err)
	}
	titles := make([]string, 0, len(tasks))
	for i, task := range tasks {
		if task.Position != i {
			t.Errorf("lane %s not dense: %q at index %d has position %d", status, task.Title, i, task.Position)
		}
		titles = append(titles, task.Title)
	}
	return titles
}
