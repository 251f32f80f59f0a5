package lane

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thenoetrevino/tandem/internal/models"
)

// errLockTimeout is returned by Acquire when the wait elapses; the engine
// retries it and eventually reports models.ErrConflict.
var errLockTimeout = errors.New("timed out waiting for project lock")

// ErrBusy is the retryable conflict reported when a project's lock stays
// contended through every retry.
var ErrBusy = fmt.Errorf("project is busy: %w", models.ErrConflict)

// ProjectLocks hands out one mutual-exclusion slot per project.
// Entries are reference counted and dropped once nobody holds or waits for them.
type ProjectLocks struct {
	mu    sync.Mutex
	locks map[int]*projectLock
}

type projectLock struct {
	sem  chan struct{}
	refs int
}

// NewProjectLocks creates an empty lock table
func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{locks: make(map[int]*projectLock)}
}

func (l *ProjectLocks) ref(projectID int) *projectLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl, ok := l.locks[projectID]
	if !ok {
		pl = &projectLock{sem: make(chan struct{}, 1)}
		l.locks[projectID] = pl
	}
	pl.refs++
	return pl
}

func (l *ProjectLocks) unref(projectID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pl, ok := l.locks[projectID]
	if !ok {
		return
	}
	pl.refs--
	if pl.refs == 0 {
		delete(l.locks, projectID)
	}
}

// Acquire waits at most wait for the project's slot. The returned release
// func is safe to call more than once.
func (l *ProjectLocks) Acquire(ctx context.Context, projectID int, wait time.Duration) (func(), error) {
	pl := l.ref(projectID)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case pl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-pl.sem
				l.unref(projectID)
			})
		}, nil
	case <-timer.C:
		l.unref(projectID)
		return nil, errLockTimeout
	case <-ctx.Done():
		l.unref(projectID)
		return nil, ctx.Err()
	}
}

// Len returns the number of projects currently locked or awaited
func (l *ProjectLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// LockPolicy bounds how long a lane operation waits for its project
type LockPolicy struct {
	// Timeout is the wait for a single acquisition attempt
	Timeout time.Duration
	// Retries is the number of extra attempts after the first times out
	Retries int
	// BaseDelay is the backoff before the first retry; it doubles each attempt
	BaseDelay time.Duration
}

// DefaultLockPolicy waits 2s per attempt with retries after 50ms, 100ms and 200ms
var DefaultLockPolicy = LockPolicy{
	Timeout:   2 * time.Second,
	Retries:   3,
	BaseDelay: 50 * time.Millisecond,
}
