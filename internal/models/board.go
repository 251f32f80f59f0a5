package models

import "fmt"

// Board is a project's tasks partitioned into lanes, each lane in position order
type Board struct {
	ProjectID  int         `json:"project_id"`
	Todo       []*TaskCard `json:"todo"`
	InProgress []*TaskCard `json:"in_progress"`
	Done       []*TaskCard `json:"done"`
}

// NewBoard returns an empty board with non-nil lanes so it encodes as [] rather than null
func NewBoard(projectID int) *Board {
	return &Board{
		ProjectID:  projectID,
		Todo:       []*TaskCard{},
		InProgress: []*TaskCard{},
		Done:       []*TaskCard{},
	}
}

// Lane returns the cards of one lane
func (b *Board) Lane(s Status) []*TaskCard {
	switch s {
	case StatusTodo:
		return b.Todo
	case StatusInProgress:
		return b.InProgress
	case StatusDone:
		return b.Done
	}
	return nil
}

func (b *Board) setLane(s Status, cards []*TaskCard) {
	switch s {
	case StatusTodo:
		b.Todo = cards
	case StatusInProgress:
		b.InProgress = cards
	case StatusDone:
		b.Done = cards
	}
}

// Append places a card at the end of its lane without renumbering
func (b *Board) Append(card *TaskCard) {
	b.setLane(card.Status, append(b.Lane(card.Status), card))
}

// Find returns the card with the given id, or nil
func (b *Board) Find(taskID int) *TaskCard {
	for _, s := range Statuses {
		for _, c := range b.Lane(s) {
			if c.ID == taskID {
				return c
			}
		}
	}
	return nil
}

// Len returns the number of cards on the board
func (b *Board) Len() int {
	return len(b.Todo) + len(b.InProgress) + len(b.Done)
}

// Clone copies the board and its cards so the copy can be mutated freely
func (b *Board) Clone() *Board {
	out := NewBoard(b.ProjectID)
	for _, s := range Statuses {
		lane := make([]*TaskCard, 0, len(b.Lane(s)))
		for _, c := range b.Lane(s) {
			cp := *c
			lane = append(lane, &cp)
		}
		out.setLane(s, lane)
	}
	return out
}

// ClampPosition bounds a requested target index to [0, laneLen]
func ClampPosition(position, laneLen int) int {
	if position < 0 {
		return 0
	}
	if position > laneLen {
		return laneLen
	}
	return position
}

// Move relocates a card in memory using the same rules the server applies:
// the card leaves its lane, the target position is clamped to the target lane
// length after removal, and both lanes are renumbered densely.
// It returns false when the card is already at the requested place.
func (b *Board) Move(taskID int, status Status, position int) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("move task %d: unknown status %q", taskID, status)
	}

	card := b.Find(taskID)
	if card == nil {
		return false, fmt.Errorf("move task %d: %w", taskID, ErrNotFound)
	}

	from := b.Lane(card.Status)
	idx := -1
	for i, c := range from {
		if c.ID == taskID {
			idx = i
			break
		}
	}

	rest := make([]*TaskCard, 0, len(from))
	rest = append(rest, from[:idx]...)
	rest = append(rest, from[idx+1:]...)

	target := rest
	if status != card.Status {
		target = b.Lane(status)
	}
	position = ClampPosition(position, len(target))

	if status == card.Status && position == idx {
		return false, nil
	}

	if status != card.Status {
		b.setLane(card.Status, rest)
		renumber(rest)
	}

	moved := make([]*TaskCard, 0, len(target)+1)
	moved = append(moved, target[:position]...)
	moved = append(moved, card)
	moved = append(moved, target[position:]...)

	card.Status = status
	b.setLane(status, moved)
	renumber(moved)
	return true, nil
}

func renumber(lane []*TaskCard) {
	for i, c := range lane {
		c.Position = i
	}
}
