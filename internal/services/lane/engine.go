// Package lane keeps every (project, status) lane densely ordered.
//
// Each operation authorizes the caller, takes the project's lock, and applies
// all position shifts plus the primary row change in one SQL transaction.
package lane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/metrics"
	"github.com/thenoetrevino/tandem/internal/models"
)

// Store is the persistence the engine needs: a task lookup for routing and
// a transactional TaskStore for the shifts themselves.
type Store interface {
	GetTask(ctx context.Context, id int) (*models.Task, error)
	WithTx(ctx context.Context, fn func(database.TaskStore) error) error
}

// Authorizer is satisfied by access.Gate
type Authorizer interface {
	Authorize(ctx context.Context, userID, projectID int) error
}

// MoveResult describes what a move did
type MoveResult struct {
	Task         *models.Task
	FromStatus   models.Status
	FromPosition int
	// Moved is false when the task was already at the requested place
	Moved bool
}

// Engine is the only component that decides task positions
type Engine struct {
	store   Store
	gate    Authorizer
	locks   *ProjectLocks
	policy  LockPolicy
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLockPolicy overrides DefaultLockPolicy
func WithLockPolicy(p LockPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLocks shares a lock table between engines
func WithLocks(l *ProjectLocks) Option {
	return func(e *Engine) {
		e.locks = l
	}
}

// WithMetrics records lane counters into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the engine's logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a lane engine
func NewEngine(store Store, gate Authorizer, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		gate:    gate,
		locks:   NewProjectLocks(),
		policy:  DefaultLockPolicy,
		metrics: metrics.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "lane")
	return e
}

// lock acquires the project's slot, retrying timeouts with exponential
// backoff before giving up with ErrConflict.
func (e *Engine) lock(ctx context.Context, projectID int) (func(), error) {
	for attempt := 0; ; attempt++ {
		release, err := e.locks.Acquire(ctx, projectID, e.policy.Timeout)
		if err == nil {
			if attempt > 0 {
				e.logger.Debug("project lock acquired after retry",
					"project_id", projectID,
					"attempt", attempt+1)
			}
			return release, nil
		}
		if !errors.Is(err, errLockTimeout) {
			return nil, err
		}

		if attempt >= e.policy.Retries {
			e.metrics.IncLockConflicts()
			e.logger.Warn("project lock contention, giving up",
				"project_id", projectID,
				"attempts", attempt+1)
			return nil, fmt.Errorf("project %d: %w", projectID, ErrBusy)
		}

		delay := e.policy.BaseDelay * (1 << attempt)
		e.metrics.IncLockRetries()
		e.logger.Debug("project lock busy, retrying",
			"project_id", projectID,
			"attempt", attempt+1,
			"max_retries", e.policy.Retries,
			"retry_delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// InsertAt appends task to the tail of its lane in projectID.
// The caller's Position is ignored.
func (e *Engine) InsertAt(ctx context.Context, userID, projectID int, task *models.Task) (*models.Task, error) {
	if err := e.gate.Authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}
	if !task.Status.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("unknown status %q", task.Status))
	}

	release, err := e.lock(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer release()

	var created *models.Task
	err = e.store.WithTx(ctx, func(s database.TaskStore) error {
		n, err := s.CountLane(ctx, projectID, task.Status)
		if err != nil {
			return err
		}

		row := *task
		row.ProjectID = projectID
		row.Position = n
		created, err = s.CreateTask(ctx, &row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	e.metrics.IncInserts()
	e.logger.Debug("task inserted",
		"task_id", created.ID,
		"project_id", projectID,
		"status", created.Status,
		"position", created.Position)
	return created, nil
}

// RemoveAt deletes a task and closes the gap it leaves in its lane
func (e *Engine) RemoveAt(ctx context.Context, userID, taskID int) (*models.Task, error) {
	current, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Authorize(ctx, userID, current.ProjectID); err != nil {
		return nil, err
	}

	release, err := e.lock(ctx, current.ProjectID)
	if err != nil {
		return nil, err
	}
	defer release()

	var removed *models.Task
	err = e.store.WithTx(ctx, func(s database.TaskStore) error {
		// re-read under the lock; another request may have moved it
		t, err := s.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if err := s.DeleteTask(ctx, taskID); err != nil {
			return err
		}
		if err := s.ShiftLane(ctx, t.ProjectID, t.Status, t.Position+1, -1, -1); err != nil {
			return err
		}
		removed = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove task %d: %w", taskID, err)
	}

	e.metrics.IncRemoves()
	e.logger.Debug("task removed",
		"task_id", taskID,
		"project_id", removed.ProjectID,
		"status", removed.Status,
		"position", removed.Position)
	return removed, nil
}

// MoveTo places a task at newPosition in the newStatus lane, shifting the
// neighbours of both lanes. newPosition is clamped to the target lane's
// length once the task has left it, so stale client indexes are accepted.
func (e *Engine) MoveTo(ctx context.Context, userID, taskID int, newStatus models.Status, newPosition int) (*MoveResult, error) {
	current, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Authorize(ctx, userID, current.ProjectID); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, models.NewValidationError("new_status", fmt.Sprintf("unknown status %q", newStatus))
	}

	release, err := e.lock(ctx, current.ProjectID)
	if err != nil {
		return nil, err
	}
	defer release()

	result := &MoveResult{}
	err = e.store.WithTx(ctx, func(s database.TaskStore) error {
		t, err := s.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		result.FromStatus = t.Status
		result.FromPosition = t.Position

		target, err := e.shift(ctx, s, t, newStatus, newPosition)
		if err != nil {
			return err
		}
		if target < 0 {
			result.Task = t
			return nil
		}

		if err := s.PlaceTask(ctx, t.ID, newStatus, target); err != nil {
			return err
		}
		result.Task, err = s.GetTask(ctx, t.ID)
		result.Moved = true
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move task %d: %w", taskID, err)
	}

	e.metrics.IncMoves(result.Moved)
	e.logger.Debug("task moved",
		"task_id", taskID,
		"project_id", current.ProjectID,
		"from", fmt.Sprintf("%s/%d", result.FromStatus, result.FromPosition),
		"to", fmt.Sprintf("%s/%d", result.Task.Status, result.Task.Position),
		"moved", result.Moved)
	return result, nil
}

// shift moves the neighbours out of the way and returns the clamped target
// position, or -1 when the task is already there.
func (e *Engine) shift(ctx context.Context, s database.TaskStore, t *models.Task, newStatus models.Status, newPosition int) (int, error) {
	if newStatus == t.Status {
		n, err := s.CountLane(ctx, t.ProjectID, t.Status)
		if err != nil {
			return 0, err
		}
		target := models.ClampPosition(newPosition, n-1)

		switch {
		case target == t.Position:
			return -1, nil
		case t.Position < target:
			// (old, new] slide left into the gap
			err = s.ShiftLane(ctx, t.ProjectID, t.Status, t.Position+1, target, -1)
		default:
			// [new, old) slide right to open the slot
			err = s.ShiftLane(ctx, t.ProjectID, t.Status, target, t.Position-1, 1)
		}
		return target, err
	}

	n, err := s.CountLane(ctx, t.ProjectID, newStatus)
	if err != nil {
		return 0, err
	}
	target := models.ClampPosition(newPosition, n)

	if err := s.ShiftLane(ctx, t.ProjectID, t.Status, t.Position+1, -1, -1); err != nil {
		return 0, err
	}
	if err := s.ShiftLane(ctx, t.ProjectID, newStatus, target, -1, 1); err != nil {
		return 0, err
	}
	return target, nil
}
