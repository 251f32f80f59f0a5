package app

import (
	"log/slog"

	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/metrics"
	"github.com/thenoetrevino/tandem/internal/services/access"
	boardservice "github.com/thenoetrevino/tandem/internal/services/board"
	"github.com/thenoetrevino/tandem/internal/services/lane"
	projectservice "github.com/thenoetrevino/tandem/internal/services/project"
	taskservice "github.com/thenoetrevino/tandem/internal/services/task"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
)

// App holds all application services and provides dependency injection.
// This is the main application container shared by the HTTP server and the CLI.
type App struct {
	// Repository layer (direct database access)
	repo database.DataStore

	Gate    *access.Gate
	Lanes   *lane.Engine
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Service layer (business logic)
	TaskService    taskservice.Service
	BoardService   boardservice.Service
	ProjectService projectservice.Service
	UserService    userservice.Service
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(repo database.DataStore, opts ...Option) *App {
	cfg := &appConfig{
		logger:     slog.Default(),
		lockPolicy: lane.DefaultLockPolicy,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = metrics.New()
	}

	gate := access.NewGate(repo)
	engine := lane.NewEngine(repo, gate,
		lane.WithLockPolicy(cfg.lockPolicy),
		lane.WithMetrics(cfg.metrics),
		lane.WithLogger(cfg.logger),
	)

	return &App{
		repo:           repo,
		Gate:           gate,
		Lanes:          engine,
		Metrics:        cfg.metrics,
		Logger:         cfg.logger,
		TaskService:    taskservice.NewService(repo, gate, engine, cfg.logger),
		BoardService:   boardservice.NewService(repo, gate),
		ProjectService: projectservice.NewService(repo, gate, cfg.logger),
		UserService:    userservice.NewService(repo, cfg.hashCost, cfg.logger),
	}
}

// Repo returns the underlying repository for direct database access.
// Used by the CLI for lookups that have no authorization semantics.
func (a *App) Repo() database.DataStore {
	return a.repo
}
