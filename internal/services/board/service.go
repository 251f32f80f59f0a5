// Package board assembles read-only views of a project's lanes
package board

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/tandem/internal/models"
)

// Service defines board read operations
type Service interface {
	GetBoard(ctx context.Context, userID, projectID int) (*models.Board, error)
	GetTask(ctx context.Context, userID, taskID int) (*models.TaskCard, error)
}

// repository defines the data access methods needed by the board service
type repository interface {
	ListBoardCards(ctx context.Context, projectID int) ([]*models.TaskCard, error)
	GetTaskCard(ctx context.Context, id int) (*models.TaskCard, error)
}

type authorizer interface {
	Authorize(ctx context.Context, userID, projectID int) error
}

type service struct {
	repo repository
	gate authorizer
}

// NewService creates a new board service
func NewService(repo repository, gate authorizer) Service {
	return &service{repo: repo, gate: gate}
}

// GetBoard returns the project's tasks grouped into lanes in position order
func (s *service) GetBoard(ctx context.Context, userID, projectID int) (*models.Board, error) {
	if err := s.gate.Authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}

	cards, err := s.repo.ListBoardCards(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	board := models.NewBoard(projectID)
	for _, c := range cards {
		board.Append(c)
	}
	return board, nil
}

// GetTask returns one card with its joined user names
func (s *service) GetTask(ctx context.Context, userID, taskID int) (*models.TaskCard, error) {
	card, err := s.repo.GetTaskCard(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if err := s.gate.Authorize(ctx, userID, card.ProjectID); err != nil {
		return nil, err
	}
	return card, nil
}
