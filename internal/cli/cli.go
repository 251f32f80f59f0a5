// Package cli holds the shared plumbing of the tandem command line: the
// application container, acting-user resolution, output modes and exit codes.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/thenoetrevino/tandem/internal/app"
	"github.com/thenoetrevino/tandem/internal/config"
	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/logging"
	"github.com/thenoetrevino/tandem/internal/models"
	"github.com/thenoetrevino/tandem/internal/services/lane"
)

// ActingUserEnv names the environment fallback for --as
const ActingUserEnv = "TANDEM_AS"

// ErrNoActingUser is returned when a command needs a user and none was given
var ErrNoActingUser = errors.New("no acting user: pass --as <email> or set " + ActingUserEnv)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config

	db        *sql.DB
	logCloser io.Closer
}

// NewCLI loads nothing itself: it initializes logging from cfg, opens the
// configured database (running migrations) and builds the App.
func NewCLI(ctx context.Context, cfg *config.Config) (*CLI, error) {
	logCloser, err := logging.Init(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	db, err := database.InitDB(ctx, cfg.Database.Path)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	application := app.New(database.NewRepository(db),
		app.WithLogger(slog.Default()),
		app.WithLockPolicy(LockPolicy(cfg.Lanes)),
	)

	return &CLI{
		App:       application,
		Config:    cfg,
		db:        db,
		logCloser: logCloser,
	}, nil
}

// NewFromApp wraps an existing App; used by tests to run commands against an
// in-memory store.
func NewFromApp(a *app.App, cfg *config.Config) *CLI {
	if cfg == nil {
		cfg = config.Default()
	}
	return &CLI{App: a, Config: cfg}
}

// LockPolicy converts the lanes config section
func LockPolicy(c config.LanesConfig) lane.LockPolicy {
	return lane.LockPolicy{
		Timeout:   c.LockTimeout,
		Retries:   c.LockRetries,
		BaseDelay: c.RetryBaseDelay,
	}
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
	}
	return errors.Join(errs...)
}

// ActingUser resolves the --as email, falling back to $TANDEM_AS
func (c *CLI) ActingUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = strings.TrimSpace(os.Getenv(ActingUserEnv))
	}
	if email == "" {
		return nil, ErrNoActingUser
	}

	u, err := c.App.UserService.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("acting user %q: %w", email, err)
	}
	return u, nil
}
