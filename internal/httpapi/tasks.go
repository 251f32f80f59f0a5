package httpapi

import (
	"errors"
	"net/http"

	"github.com/thenoetrevino/tandem/internal/idempotency"
	"github.com/thenoetrevino/tandem/internal/models"
	taskservice "github.com/thenoetrevino/tandem/internal/services/task"
)

const idempotencyHeader = "Idempotency-Key"

// reorderResponse returns the authoritative board so clients can reconcile
type reorderResponse struct {
	Task  *models.Task  `json:"task"`
	Moved bool          `json:"moved"`
	Board *models.Board `json:"board"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskservice.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	userID := currentUser(r)
	key := r.Header.Get(idempotencyHeader)
	if key == "" || s.idem == nil {
		task, err := s.app.TaskService.CreateTask(ctx, userID, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
		return
	}

	claimed, err := s.idem.Claim(ctx, userID, key)
	if err != nil {
		s.writeError(w, r, &models.StorageError{Op: "claim idempotency key", Err: err})
		return
	}
	if !claimed {
		s.replayCreate(w, r, userID, key)
		return
	}

	task, err := s.app.TaskService.CreateTask(ctx, userID, req)
	if err != nil {
		if rerr := s.idem.Release(ctx, userID, key); rerr != nil {
			s.logger.Warn("failed to release idempotency key", "key", key, "error", rerr)
		}
		s.writeError(w, r, err)
		return
	}
	if err := s.idem.Remember(ctx, userID, key, task.ID); err != nil {
		s.logger.Warn("failed to remember idempotency key", "key", key, "task_id", task.ID, "error", err)
	}
	writeJSON(w, http.StatusCreated, task)
}

// replayCreate answers a retried create with the task the first attempt
// made, in the same shape as the original 201 body
func (s *Server) replayCreate(w http.ResponseWriter, r *http.Request, userID int, key string) {
	taskID, inFlight, err := s.idem.Lookup(r.Context(), userID, key)
	switch {
	case errors.Is(err, idempotency.ErrUnknownKey), inFlight:
		s.writeError(w, r, errRequestInFlight)
		return
	case err != nil:
		s.writeError(w, r, &models.StorageError{Op: "lookup idempotency key", Err: err})
		return
	}

	card, err := s.app.BoardService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &card.Task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	card, err := s.app.BoardService.GetTask(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.app.TaskService.UpdateTask(r.Context(), currentUser(r), taskservice.UpdateTaskRequest{
		TaskID: id,
		Patch:  patch,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "taskID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.TaskService.DeleteTask(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req taskservice.MoveTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	userID := currentUser(r)
	res, err := s.app.TaskService.MoveTask(ctx, userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	board, err := s.app.BoardService.GetBoard(ctx, userID, res.Task.ProjectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reorderResponse{Task: res.Task, Moved: res.Moved, Board: board})
}
