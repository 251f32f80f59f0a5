// Package metrics keeps process-wide counters for the board server
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics tracks server statistics using atomic operations for thread-safety
type Metrics struct {
	Requests      atomic.Int64
	Inserts       atomic.Int64
	Removes       atomic.Int64
	Moves         atomic.Int64
	NoOpMoves     atomic.Int64
	LockRetries   atomic.Int64
	LockConflicts atomic.Int64
	StartTime     time.Time
}

// New creates a new Metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncRequests increments the handled requests counter
func (m *Metrics) IncRequests() {
	m.Requests.Add(1)
}

// IncInserts increments the lane insert counter
func (m *Metrics) IncInserts() {
	m.Inserts.Add(1)
}

// IncRemoves increments the lane remove counter
func (m *Metrics) IncRemoves() {
	m.Removes.Add(1)
}

// IncMoves counts a move; no-op moves are tracked separately as well
func (m *Metrics) IncMoves(moved bool) {
	m.Moves.Add(1)
	if !moved {
		m.NoOpMoves.Add(1)
	}
}

// IncLockRetries increments the per-project lock retry counter
func (m *Metrics) IncLockRetries() {
	m.LockRetries.Add(1)
}

// IncLockConflicts counts lock acquisitions that gave up with a conflict
func (m *Metrics) IncLockConflicts() {
	m.LockConflicts.Add(1)
}

// Snapshot represents a point-in-time snapshot of metrics
type Snapshot struct {
	Requests      int64     `json:"requests"`
	Inserts       int64     `json:"inserts"`
	Removes       int64     `json:"removes"`
	Moves         int64     `json:"moves"`
	NoOpMoves     int64     `json:"noop_moves"`
	LockRetries   int64     `json:"lock_retries"`
	LockConflicts int64     `json:"lock_conflicts"`
	StartTime     time.Time `json:"start_time"`
	Uptime        string    `json:"uptime"`
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Requests:      m.Requests.Load(),
		Inserts:       m.Inserts.Load(),
		Removes:       m.Removes.Load(),
		Moves:         m.Moves.Load(),
		NoOpMoves:     m.NoOpMoves.Load(),
		LockRetries:   m.LockRetries.Load(),
		LockConflicts: m.LockConflicts.Load(),
		StartTime:     m.StartTime,
		Uptime:        time.Since(m.StartTime).Round(time.Second).String(),
	}
}
