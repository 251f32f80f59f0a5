package models

import (
	"fmt"
	"strings"
)

// ============================================================================
// STATUS (LANES)
// ============================================================================

// Status names the lane a task lives in
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every lane in board order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known lanes
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status.
// Matching is case-insensitive and accepts "in progress" / "in-progress".
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := Status(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q (want todo, in_progress or done)", s)
	}
	return status, nil
}

// ============================================================================
// PRIORITY
// ============================================================================

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a task is created without one
const DefaultPriority = PriorityMedium

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts user input into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}
