package boardclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/tandem/internal/app"
	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/httpapi"
	"github.com/thenoetrevino/tandem/internal/logging"
	"github.com/thenoetrevino/tandem/internal/models"
	projectservice "github.com/thenoetrevino/tandem/internal/services/project"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
	"github.com/thenoetrevino/tandem/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type fixture struct {
	url       string
	app       *app.App
	tokens    *auth.TokenIssuer
	projectID int
	owner     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a := app.New(testutil.SetupTestRepo(t),
		app.WithLogger(logging.Discard()),
		app.WithHashCost(bcrypt.MinCost),
	)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(httpapi.NewServer(a, tokens).Handler())
	t.Cleanup(srv.Close)

	f := &fixture{url: srv.URL, app: a, tokens: tokens}
	owner := f.register(t, "owner@example.com")
	f.owner, _, err = tokens.Issue(owner.ID)
	require.NoError(t, err)

	p, err := a.ProjectService.CreateProject(context.Background(), owner.ID, projectservice.CreateProjectRequest{Name: "Board"})
	require.NoError(t, err)
	f.projectID = p.ID
	return f
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.app.UserService.Register(context.Background(), userservice.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) controller(t *testing.T) *Controller {
	t.Helper()
	c := NewController(NewClient(f.url, f.owner), f.projectID, logging.Discard())
	require.NoError(t, c.Load(context.Background()))
	return c
}

func ids(cards []*models.TaskCard) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// stubAPI lets a test observe the controller between its optimistic
// update and the server's answer.
type stubAPI struct {
	board     *models.Board
	reorder   func() (*ReorderResult, error)
	onReorder func()
	loadErr   error
	loads     int
}

func (s *stubAPI) GetBoard(_ context.Context, _ int) (*models.Board, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.board.Clone(), nil
}

func (s *stubAPI) Reorder(_ context.Context, _ int, _ models.Status, _ int) (*ReorderResult, error) {
	if s.onReorder != nil {
		s.onReorder()
	}
	return s.reorder()
}

func (s *stubAPI) CreateTask(_ context.Context, _ CreateTaskInput, _ string) (*models.Task, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAPI) DeleteTask(_ context.Context, _ int) error {
	return errors.New("not implemented")
}

func stubBoard() *models.Board {
	b := models.NewBoard(1)
	b.Append(&models.TaskCard{Task: models.Task{ID: 1, ProjectID: 1, Status: models.StatusTodo, Position: 0}})
	b.Append(&models.TaskCard{Task: models.Task{ID: 2, ProjectID: 1, Status: models.StatusTodo, Position: 1}})
	return b
}

// ============================================================================
// AGAINST THE REAL SERVER
// ============================================================================

func TestController_CreateMoveDelete(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	ctx := context.Background()

	assert.Equal(t, 0, c.Board().Len())

	a, err := c.Create(ctx, CreateTaskInput{Title: "A"}, "")
	require.NoError(t, err)
	b, err := c.Create(ctx, CreateTaskInput{Title: "B"}, "")
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, b.ID}, ids(c.Board().Todo))

	moved, err := c.Move(ctx, b.ID, models.StatusDone, 10)
	require.NoError(t, err)
	assert.True(t, moved)

	board := c.Board()
	assert.Equal(t, []int{a.ID}, ids(board.Todo))
	assert.Equal(t, []int{b.ID}, ids(board.Done))
	assert.Equal(t, 0, board.Done[0].Position)

	moved, err = c.Move(ctx, b.ID, models.StatusDone, 0)
	require.NoError(t, err)
	assert.False(t, moved)

	require.NoError(t, c.Delete(ctx, a.ID))
	assert.Empty(t, c.Board().Todo)
}

func TestController_IdempotentCreateWithoutRedis(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)

	// without a deduper configured the key is ignored and the create succeeds
	_, err := c.Create(context.Background(), CreateTaskInput{Title: "A"}, "key-1")
	require.NoError(t, err)
	assert.Len(t, c.Board().Todo, 1)
}

func TestController_ErrorsMapToTaxonomy(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)
	ctx := context.Background()

	_, err := c.Move(ctx, 9999, models.StatusDone, 0)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = c.Create(ctx, CreateTaskInput{Title: ""}, "")
	require.ErrorIs(t, err, models.ErrValidation)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.NotEmpty(t, apiErr.Fields)
	assert.Equal(t, "title", apiErr.Fields[0].Field)

	_, err = c.Move(ctx, 1, "archived", 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	stranger := f.register(t, "stranger@example.com")
	token, _, err := f.tokens.Issue(stranger.ID)
	require.NoError(t, err)
	_, err = NewClient(f.url, token).GetBoard(ctx, f.projectID)
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	_, err = NewClient(f.url, "").GetBoard(ctx, f.projectID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

// ============================================================================
// OPTIMISTIC UPDATES
// ============================================================================

func TestController_MoveIsVisibleBeforeServerAnswers(t *testing.T) {
	api := &stubAPI{board: stubBoard()}
	c := NewController(api, 1, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	var during *models.Board
	api.onReorder = func() { during = c.Board() }

	server := stubBoard()
	_, err := server.Move(2, models.StatusDone, 0)
	require.NoError(t, err)
	api.reorder = func() (*ReorderResult, error) {
		return &ReorderResult{Moved: true, Board: server}, nil
	}

	moved, err := c.Move(context.Background(), 2, models.StatusDone, 0)
	require.NoError(t, err)
	assert.True(t, moved)

	require.NotNil(t, during)
	assert.Equal(t, []int{1}, ids(during.Todo))
	assert.Equal(t, []int{2}, ids(during.Done))
	assert.Equal(t, []int{2}, ids(c.Board().Done))
}

func TestController_FailedMoveDiscardsOptimisticState(t *testing.T) {
	api := &stubAPI{board: stubBoard()}
	c := NewController(api, 1, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	api.reorder = func() (*ReorderResult, error) {
		return nil, &APIError{Status: 409, Message: "project is busy"}
	}

	_, err := c.Move(context.Background(), 1, models.StatusInProgress, 0)
	assert.ErrorIs(t, err, models.ErrConflict)

	board := c.Board()
	assert.Equal(t, []int{1, 2}, ids(board.Todo))
	assert.Empty(t, board.InProgress)
	assert.Equal(t, 2, api.loads)
}

func TestController_FailedMoveRestoresBoardWhenReloadFails(t *testing.T) {
	api := &stubAPI{board: stubBoard()}
	c := NewController(api, 1, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	api.loadErr = &APIError{Status: 503, Message: "storage unavailable"}
	api.reorder = func() (*ReorderResult, error) {
		return nil, &APIError{Status: 503, Message: "storage unavailable"}
	}

	_, err := c.Move(context.Background(), 1, models.StatusInProgress, 0)
	assert.ErrorIs(t, err, models.ErrStorage)

	board := c.Board()
	assert.Equal(t, []int{1, 2}, ids(board.Todo))
	assert.Empty(t, board.InProgress)
	assert.Equal(t, 2, api.loads)
}

func TestController_ServerBoardWins(t *testing.T) {
	api := &stubAPI{board: stubBoard()}
	c := NewController(api, 1, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	// another client added a card the local view has not seen
	server := stubBoard()
	server.Append(&models.TaskCard{Task: models.Task{ID: 3, ProjectID: 1, Status: models.StatusTodo, Position: 2}})
	_, err := server.Move(1, models.StatusTodo, 5)
	require.NoError(t, err)
	api.reorder = func() (*ReorderResult, error) {
		return &ReorderResult{Moved: true, Board: server}, nil
	}

	_, err = c.Move(context.Background(), 1, models.StatusTodo, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, ids(c.Board().Todo))
}
