package task

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tandem/internal/database"
	"github.com/thenoetrevino/tandem/internal/models"
	"github.com/thenoetrevino/tandem/internal/services/access"
	"github.com/thenoetrevino/tandem/internal/services/lane"
	"github.com/thenoetrevino/tandem/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type env struct {
	repo      *database.Repository
	svc       Service
	owner     *models.User
	member    *models.User
	stranger  *models.User
	projectID int
}

func setup(t *testing.T) *env {
	t.Helper()
	repo := testutil.SetupTestRepo(t)
	gate := access.NewGate(repo)
	e := &env{
		repo:     repo,
		svc:      NewService(repo, gate, lane.NewEngine(repo, gate), nil),
		owner:    testutil.CreateTestUser(t, repo, "owner@example.com"),
		member:   testutil.CreateTestUser(t, repo, "member@example.com"),
		stranger: testutil.CreateTestUser(t, repo, "stranger@example.com"),
	}
	e.projectID = testutil.CreateTestProject(t, repo, e.owner.ID, "Board")
	testutil.AddTestMember(t, repo, e.projectID, e.member.ID)
	return e
}

func (e *env) create(t *testing.T, title string, status models.Status) *models.Task {
	t.Helper()
	task, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:     title,
		ProjectID: e.projectID,
		Status:    status,
	})
	require.NoError(t, err)
	return task
}

func requireFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	require.ErrorIs(t, err, models.ErrValidation)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range fields {
		assert.True(t, verr.HasField(f), "expected field %q in %v", f, verr.Fields)
	}
	assert.Len(t, verr.Fields, len(fields))
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateTask_Defaults(t *testing.T) {
	t.Parallel()
	e := setup(t)

	task, err := e.svc.CreateTask(context.Background(), e.member.ID, CreateTaskRequest{
		Title:     "  Write docs  ",
		ProjectID: e.projectID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, 0, task.Position)
	assert.Equal(t, e.member.ID, task.CreatedBy)
}

func TestCreateTask_AppendsToLaneTail(t *testing.T) {
	t.Parallel()
	e := setup(t)
	e.create(t, "a", models.StatusDone)
	e.create(t, "b", models.StatusDone)
	c := e.create(t, "c", models.StatusDone)

	assert.Equal(t, 2, c.Position)
	testutil.AssertLanesDense(t, e.repo, e.projectID)
}

func TestCreateTask_ReportsEveryInvalidField(t *testing.T) {
	t.Parallel()
	e := setup(t)

	_, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:      "   ",
		ProjectID:  e.projectID,
		Status:     "blocked",
		Priority:   "urgent",
		AssignedTo: &e.stranger.ID,
	})
	requireFields(t, err, "title", "status", "priority", "assigned_to")
}

func TestCreateTask_MissingProjectListedWithOtherFields(t *testing.T) {
	t.Parallel()
	e := setup(t)

	_, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:    "",
		Status:   "blocked",
		Priority: "urgent",
	})
	requireFields(t, err, "project_id", "title", "status", "priority")

	_, err = e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{Title: "Fine"})
	requireFields(t, err, "project_id")
}

func TestCreateTask_TitleTooLong(t *testing.T) {
	t.Parallel()
	e := setup(t)

	_, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:     strings.Repeat("x", 256),
		ProjectID: e.projectID,
	})
	requireFields(t, err, "title")
}

func TestCreateTask_AssigneeMustBeMember(t *testing.T) {
	t.Parallel()
	e := setup(t)

	task, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:      "Pair on it",
		ProjectID:  e.projectID,
		AssignedTo: &e.member.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, e.member.ID, *task.AssignedTo)
}

func TestCreateTask_AuthorizationBeforeValidation(t *testing.T) {
	t.Parallel()
	e := setup(t)

	_, err := e.svc.CreateTask(context.Background(), e.stranger.ID, CreateTaskRequest{
		Title:     "",
		ProjectID: e.projectID,
		Status:    "bogus",
	})
	assert.ErrorIs(t, err, models.ErrAccessDenied)
	assert.NotErrorIs(t, err, models.ErrValidation)

	_, err = e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{Title: "x", ProjectID: 999})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateTask_SanitizesDescription(t *testing.T) {
	t.Parallel()
	e := setup(t)

	task, err := e.svc.CreateTask(context.Background(), e.owner.ID, CreateTaskRequest{
		Title:       "XSS",
		Description: `<p>Hello</p><script>alert('x')</script>`,
		ProjectID:   e.projectID,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", task.Description)
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateTask_PatchSemantics(t *testing.T) {
	t.Parallel()
	e := setup(t)
	task := e.create(t, "Original", models.StatusInProgress)
	ctx := context.Background()

	updated, err := e.svc.UpdateTask(ctx, e.member.ID, UpdateTaskRequest{
		TaskID: task.ID,
		Patch: models.TaskPatch{
			Description: models.Some("details"),
			AssignedTo:  models.Some(&e.member.ID),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, "details", updated.Description)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	cleared, err := e.svc.UpdateTask(ctx, e.member.ID, UpdateTaskRequest{
		TaskID: task.ID,
		Patch:  models.TaskPatch{AssignedTo: models.Some[*int](nil)},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)
	assert.Equal(t, "details", cleared.Description)
}

func TestUpdateTask_Validation(t *testing.T) {
	t.Parallel()
	e := setup(t)
	task := e.create(t, "Original", models.StatusTodo)
	ctx := context.Background()

	tests := []struct {
		name   string
		patch  models.TaskPatch
		fields []string
	}{
		{"empty patch", models.TaskPatch{}, []string{"patch"}},
		{"blank title", models.TaskPatch{Title: models.Some(" ")}, []string{"title"}},
		{"bad priority and assignee", models.TaskPatch{
			Priority:   models.Some(models.Priority("urgent")),
			AssignedTo: models.Some(&e.stranger.ID),
		}, []string{"priority", "assigned_to"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.UpdateTask(ctx, e.owner.ID, UpdateTaskRequest{TaskID: task.ID, Patch: tt.patch})
			requireFields(t, err, tt.fields...)
		})
	}
}

func TestUpdateTask_Errors(t *testing.T) {
	t.Parallel()
	e := setup(t)
	task := e.create(t, "Original", models.StatusTodo)
	ctx := context.Background()

	_, err := e.svc.UpdateTask(ctx, e.stranger.ID, UpdateTaskRequest{TaskID: task.ID})
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	_, err = e.svc.UpdateTask(ctx, e.owner.ID, UpdateTaskRequest{TaskID: 999, Patch: models.TaskPatch{Title: models.Some("x")}})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = e.svc.UpdateTask(ctx, e.owner.ID, UpdateTaskRequest{TaskID: 0})
	assert.ErrorIs(t, err, models.ErrValidation)
}

// ============================================================================
// DELETE / MOVE
// ============================================================================

func TestDeleteTask_CompactsLane(t *testing.T) {
	t.Parallel()
	e := setup(t)
	t1 := e.create(t, "T1", models.StatusTodo)
	t2 := e.create(t, "T2", models.StatusTodo)
	t3 := e.create(t, "T3", models.StatusTodo)

	require.NoError(t, e.svc.DeleteTask(context.Background(), e.member.ID, t2.ID))

	assert.Equal(t, []int{t1.ID, t3.ID}, testutil.LaneIDs(t, e.repo, e.projectID, models.StatusTodo))
	testutil.AssertLanesDense(t, e.repo, e.projectID)

	err := e.svc.DeleteTask(context.Background(), e.stranger.ID, t1.ID)
	assert.ErrorIs(t, err, models.ErrAccessDenied)
}

func TestMoveTask(t *testing.T) {
	t.Parallel()
	e := setup(t)
	t1 := e.create(t, "T1", models.StatusTodo)
	t2 := e.create(t, "T2", models.StatusTodo)
	t3 := e.create(t, "T3", models.StatusInProgress)
	ctx := context.Background()

	res, err := e.svc.MoveTask(ctx, e.member.ID, MoveTaskRequest{TaskID: t1.ID, NewStatus: models.StatusInProgress, NewPosition: 0})
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, []int{t2.ID}, testutil.LaneIDs(t, e.repo, e.projectID, models.StatusTodo))
	assert.Equal(t, []int{t1.ID, t3.ID}, testutil.LaneIDs(t, e.repo, e.projectID, models.StatusInProgress))

	_, err = e.svc.MoveTask(ctx, e.owner.ID, MoveTaskRequest{TaskID: t1.ID, NewStatus: "archived"})
	requireFields(t, err, "new_status")

	_, err = e.svc.MoveTask(ctx, e.stranger.ID, MoveTaskRequest{TaskID: t1.ID, NewStatus: "archived"})
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	_, err = e.svc.MoveTask(ctx, e.owner.ID, MoveTaskRequest{TaskID: 999, NewStatus: models.StatusDone})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
