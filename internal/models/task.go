package models

import "time"

// Task represents a single card on a project board.
// Position is the zero-based rank of the task inside its (ProjectID, Status) lane.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   int       `json:"project_id"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
	Priority    Priority  `json:"priority"`
	AssignedTo  *int      `json:"assigned_to"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetID lets output formatters print just the identifier in quiet mode
func (t *Task) GetID() int {
	return t.ID
}

// TaskCard is a DTO for displaying tasks on the board.
// Names are joined at read time so they always reflect the current users.
type TaskCard struct {
	Task
	AssigneeName string `json:"assigned_to_name,omitempty"`
	CreatorName  string `json:"created_by_name,omitempty"`
}

// TaskPatch carries a partial update of the editable task fields.
// Status and position are not editable here; they change only through a lane move.
type TaskPatch struct {
	Title       Optional[string]   `json:"title,omitzero"`
	Description Optional[string]   `json:"description,omitzero"`
	Priority    Optional[Priority] `json:"priority,omitzero"`
	AssignedTo  Optional[*int]     `json:"assigned_to,omitzero"`
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Description.IsSet() && !p.Priority.IsSet() && !p.AssignedTo.IsSet()
}
