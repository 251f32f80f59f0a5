// Package cli provides helpers for running tandem commands in tests. It is
// separate from testutil so service tests do not import the CLI packages.
package cli

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/tandem/internal/app"
	tcli "github.com/thenoetrevino/tandem/internal/cli"
	"github.com/thenoetrevino/tandem/internal/config"
	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/logging"
	"github.com/thenoetrevino/tandem/internal/models"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
	"github.com/thenoetrevino/tandem/internal/testutil"
)

// TestSecret signs tokens issued by commands under test
const TestSecret = "test-secret"

// SetupCLITest creates an in-memory store and returns the repository with a
// CLI wrapping an App built on it
func SetupCLITest(t *testing.T) (*database.Repository, *tcli.CLI) {
	t.Helper()
	repo := testutil.SetupTestRepo(t)

	appInstance := app.New(repo,
		app.WithLogger(logging.Discard()),
		app.WithHashCost(bcrypt.MinCost),
	)

	cfg := config.Default()
	cfg.Auth.JWTSecret = TestSecret
	return repo, tcli.NewFromApp(appInstance, cfg)
}

// RegisterUser creates an account through the user service
func RegisterUser(t *testing.T, c *tcli.CLI, email string) *models.User {
	t.Helper()
	u, err := c.App.UserService.Register(context.Background(), userservice.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return u
}
