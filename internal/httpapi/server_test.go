package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/tandem/internal/app"
	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/idempotency"
	"github.com/thenoetrevino/tandem/internal/logging"
	"github.com/thenoetrevino/tandem/internal/models"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
	"github.com/thenoetrevino/tandem/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	app    *app.App
	tokens *auth.TokenIssuer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	a := app.New(testutil.SetupTestRepo(t),
		app.WithLogger(logging.Discard()),
		app.WithHashCost(bcrypt.MinCost),
	)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(a, tokens, opts...).Handler())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, app: a, tokens: tokens}
}

// user registers an account and returns it with a bearer token
func (h *harness) user(email string) (*models.User, string) {
	h.t.Helper()
	u, err := h.app.UserService.Register(context.Background(), userservice.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.NoError(h.t, err)
	token, _, err := h.tokens.Issue(u.ID)
	require.NoError(h.t, err)
	return u, token
}

type call struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (h *harness) do(c call) (*http.Response, []byte) {
	h.t.Helper()
	var body io.Reader
	switch b := c.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(c.method, h.srv.URL+c.path, body)
	require.NoError(h.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "body: %s", raw)
	return v
}

func (h *harness) project(token, name string) *models.Project {
	h.t.Helper()
	resp, raw := h.do(call{method: http.MethodPost, path: "/api/projects", token: token, body: map[string]string{"name": name}})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[*models.Project](h.t, raw)
}

func (h *harness) task(token string, projectID int, title string, status models.Status) *models.Task {
	h.t.Helper()
	resp, raw := h.do(call{method: http.MethodPost, path: "/api/tasks", token: token, body: map[string]any{
		"title":      title,
		"project_id": projectID,
		"status":     status,
	}})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[*models.Task](h.t, raw)
}

func laneIDs(cards []*models.TaskCard) []int {
	ids := make([]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// ============================================================================
// TESTS
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	resp, raw := h.do(call{method: http.MethodGet, path: "/api/health"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, raw = h.do(call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"requests"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(call{method: http.MethodGet, path: "/api/health", headers: map[string]string{"X-Request-ID": "abc-123"}})
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	resp, raw := h.do(call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email": "ada@example.com", "name": "Ada", "password": "password123",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.NotContains(t, string(raw), "password")

	resp, raw = h.do(call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"email": "ada@example.com", "password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, raw = h.do(call{method: http.MethodPost, path: "/api/auth/token", body: map[string]string{
		"email": "ada@example.com", "password": "password123",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	tok := decode[tokenResponse](t, raw)
	require.NotEmpty(t, tok.Token)

	resp, _ = h.do(call{method: http.MethodGet, path: "/api/projects", token: tok.Token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(call{method: http.MethodPost, path: "/api/auth/token", body: map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.do(call{method: http.MethodGet, path: "/api/projects"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProjectEndpoints(t *testing.T) {
	h := newHarness(t)
	_, ownerTok := h.user("owner@example.com")
	member, memberTok := h.user("member@example.com")
	_, strangerTok := h.user("stranger@example.com")

	p := h.project(ownerTok, "Launch")
	base := fmt.Sprintf("/api/projects/%d", p.ID)

	resp, raw := h.do(call{method: http.MethodPost, path: base + "/members", token: ownerTok, body: map[string]string{"email": "member@example.com"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, member.ID, decode[*models.Member](t, raw).UserID)

	resp, raw = h.do(call{method: http.MethodGet, path: base + "/members", token: memberTok})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]*models.Member](t, raw), 2)

	resp, raw = h.do(call{method: http.MethodPatch, path: base, token: ownerTok, body: map[string]string{"name": "Launch v2"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "Launch v2", decode[*models.Project](t, raw).Name)

	tests := []struct {
		name   string
		c      call
		status int
	}{
		{"stranger reads board", call{method: http.MethodGet, path: base + "/board", token: strangerTok}, http.StatusForbidden},
		{"unknown project", call{method: http.MethodGet, path: "/api/projects/9999/board", token: ownerTok}, http.StatusNotFound},
		{"bad id", call{method: http.MethodGet, path: "/api/projects/abc", token: ownerTok}, http.StatusBadRequest},
		{"member cannot rename", call{method: http.MethodPatch, path: base, token: memberTok, body: map[string]string{"name": "x"}}, http.StatusForbidden},
		{"empty name", call{method: http.MethodPost, path: "/api/projects", token: ownerTok, body: map[string]string{"name": ""}}, http.StatusBadRequest},
		{"malformed body", call{method: http.MethodPost, path: "/api/projects", token: ownerTok, body: "{"}, http.StatusBadRequest},
		{"unknown member email", call{method: http.MethodPost, path: base + "/members", token: ownerTok, body: map[string]string{"email": "ghost@example.com"}}, http.StatusNotFound},
		{"duplicate member", call{method: http.MethodPost, path: base + "/members", token: ownerTok, body: map[string]string{"email": "member@example.com"}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := h.do(tt.c)
			assert.Equal(t, tt.status, resp.StatusCode, string(raw))
		})
	}

	resp, _ = h.do(call{method: http.MethodDelete, path: base, token: ownerTok})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(call{method: http.MethodGet, path: base, token: ownerTok})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTaskValidationListsEveryField(t *testing.T) {
	h := newHarness(t)
	_, ownerTok := h.user("owner@example.com")
	p := h.project(ownerTok, "Board")

	resp, raw := h.do(call{method: http.MethodPost, path: "/api/tasks", token: ownerTok, body: map[string]any{
		"title":      "",
		"project_id": p.ID,
		"status":     "blocked",
		"priority":   "urgent",
	}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[errorResponse](t, raw)
	fields := make([]string, 0, len(body.Fields))
	for _, f := range body.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"title", "status", "priority"}, fields)
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	_, ownerTok := h.user("owner@example.com")
	member, memberTok := h.user("member@example.com")
	_, strangerTok := h.user("stranger@example.com")
	p := h.project(ownerTok, "Board")
	testutil.AddTestMember(t, h.app.Repo(), p.ID, member.ID)

	t1 := h.task(ownerTok, p.ID, "T1", models.StatusTodo)
	t2 := h.task(ownerTok, p.ID, "T2", models.StatusTodo)
	t3 := h.task(memberTok, p.ID, "T3", models.StatusInProgress)
	assert.Equal(t, 1, t2.Position)

	// reorder across lanes returns the authoritative board
	resp, raw := h.do(call{method: http.MethodPost, path: "/api/tasks/reorder", token: memberTok, body: map[string]any{
		"task_id": t1.ID, "new_status": "in_progress", "new_position": 0,
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	moved := decode[reorderResponse](t, raw)
	assert.True(t, moved.Moved)
	assert.Equal(t, []int{t2.ID}, laneIDs(moved.Board.Todo))
	assert.Equal(t, []int{t1.ID, t3.ID}, laneIDs(moved.Board.InProgress))

	// same place again is a no-op
	resp, raw = h.do(call{method: http.MethodPost, path: "/api/tasks/reorder", token: memberTok, body: map[string]any{
		"task_id": t1.ID, "new_status": "in_progress", "new_position": 0,
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[reorderResponse](t, raw).Moved)

	// patch: assign then clear, position untouched
	path := fmt.Sprintf("/api/tasks/%d", t3.ID)
	resp, raw = h.do(call{method: http.MethodPatch, path: path, token: ownerTok, body: fmt.Sprintf(`{"assigned_to": %d}`, member.ID)})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	resp, raw = h.do(call{method: http.MethodGet, path: path, token: memberTok})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	card := decode[*models.TaskCard](t, raw)
	assert.Equal(t, "member", card.AssigneeName)
	assert.Equal(t, 1, card.Position)

	resp, raw = h.do(call{method: http.MethodPatch, path: path, token: ownerTok, body: `{"assigned_to": null}`})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Nil(t, decode[*models.Task](t, raw).AssignedTo)

	resp, _ = h.do(call{method: http.MethodPatch, path: path, token: ownerTok, body: `{}`})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errorCases := []struct {
		name   string
		c      call
		status int
	}{
		{"stranger reorders", call{method: http.MethodPost, path: "/api/tasks/reorder", token: strangerTok, body: map[string]any{"task_id": t1.ID, "new_status": "done", "new_position": 0}}, http.StatusForbidden},
		{"invalid status", call{method: http.MethodPost, path: "/api/tasks/reorder", token: ownerTok, body: map[string]any{"task_id": t1.ID, "new_status": "archived", "new_position": 0}}, http.StatusBadRequest},
		{"unknown task", call{method: http.MethodPost, path: "/api/tasks/reorder", token: ownerTok, body: map[string]any{"task_id": 9999, "new_status": "done", "new_position": 0}}, http.StatusNotFound},
		{"stranger reads task", call{method: http.MethodGet, path: path, token: strangerTok}, http.StatusForbidden},
		{"stranger deletes task", call{method: http.MethodDelete, path: path, token: strangerTok}, http.StatusForbidden},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := h.do(tt.c)
			assert.Equal(t, tt.status, resp.StatusCode, string(raw))
		})
	}

	// delete compacts the lane
	resp, _ = h.do(call{method: http.MethodDelete, path: fmt.Sprintf("/api/tasks/%d", t1.ID), token: ownerTok})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = h.do(call{method: http.MethodGet, path: fmt.Sprintf("/api/projects/%d/board", p.ID), token: ownerTok})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[*models.Board](t, raw)
	require.Equal(t, []int{t3.ID}, laneIDs(board.InProgress))
	assert.Equal(t, 0, board.InProgress[0].Position)
}

func TestIdempotentCreate(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	deduper := idempotency.NewRedisDeduper(client, time.Minute)

	h := newHarness(t, WithIdempotency(deduper))
	owner, ownerTok := h.user("owner@example.com")
	p := h.project(ownerTok, "Board")

	create := call{
		method:  http.MethodPost,
		path:    "/api/tasks",
		token:   ownerTok,
		body:    map[string]any{"title": "Once", "project_id": p.ID},
		headers: map[string]string{"Idempotency-Key": "k-1"},
	}

	resp, raw := h.do(create)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	first := decode[*models.Task](t, raw)

	resp, raw = h.do(create)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	replayed := decode[*models.Task](t, raw)
	assert.Equal(t, first.ID, replayed.ID)
	assert.Equal(t, first.Position, replayed.Position)
	assert.NotContains(t, decode[map[string]any](t, raw), "created_by_name")

	assert.Len(t, testutil.LaneIDs(t, h.app.Repo(), p.ID, models.StatusTodo), 1)

	// a claim that has not finished yet is a retryable conflict
	_, err = deduper.Claim(context.Background(), owner.ID, "k-2")
	require.NoError(t, err)
	create.headers = map[string]string{"Idempotency-Key": "k-2"}
	resp, _ = h.do(create)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))

	// a failed create releases the key so the client may fix and retry
	create.headers = map[string]string{"Idempotency-Key": "k-3"}
	create.body = map[string]any{"title": "", "project_id": p.ID}
	resp, _ = h.do(create)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	create.body = map[string]any{"title": "Fixed", "project_id": p.ID}
	resp, _ = h.do(create)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
