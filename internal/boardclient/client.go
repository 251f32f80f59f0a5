// Package boardclient is the client side of the board API: an HTTP client
// and a controller that reorders optimistically and reconciles with the
// server's board.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thenoetrevino/tandem/internal/models"
)

const defaultTimeout = 10 * time.Second

// ReorderResult is the server's answer to a move
type ReorderResult struct {
	Task  *models.Task  `json:"task"`
	Moved bool          `json:"moved"`
	Board *models.Board `json:"board"`
}

// CreateTaskInput is the body of a create request
type CreateTaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ProjectID   int             `json:"project_id"`
	Status      models.Status   `json:"status,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	AssignedTo  *int            `json:"assigned_to,omitempty"`
}

// APIError is a non-2xx response. It unwraps to the matching models
// sentinel so callers can use errors.Is as they would server-side.
type APIError struct {
	Status  int
	Message string
	Fields  []models.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("api error %d: %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps the HTTP status back onto the error taxonomy
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return models.ErrValidation
	case http.StatusForbidden:
		return models.ErrAccessDenied
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	case http.StatusServiceUnavailable:
		return models.ErrStorage
	}
	return nil
}

// Client talks to the JSON API with a bearer token
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.client = h
	return c
}

// GetBoard fetches the authoritative board
func (c *Client) GetBoard(ctx context.Context, projectID int) (*models.Board, error) {
	var board models.Board
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/board", projectID), nil, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// Reorder moves a task and returns the resulting board
func (c *Client) Reorder(ctx context.Context, taskID int, status models.Status, position int) (*ReorderResult, error) {
	body := map[string]any{
		"task_id":      taskID,
		"new_status":   status,
		"new_position": position,
	}
	var res ReorderResult
	if err := c.do(ctx, http.MethodPost, "/api/tasks/reorder", body, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateTask creates a task. A non-empty idempotencyKey makes retries safe.
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput, idempotencyKey string) (*models.Task, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, headers, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, taskID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", taskID), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, headers map[string]string, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error  string              `json:"error"`
			Fields []models.FieldError `json:"fields"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
