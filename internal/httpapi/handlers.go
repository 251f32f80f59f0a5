package httpapi

import (
	"net/http"
	"time"

	"github.com/thenoetrevino/tandem/internal/models"
	projectservice "github.com/thenoetrevino/tandem/internal/services/project"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Metrics.Snapshot())
}

// ============================================================================
// AUTH
// ============================================================================

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userservice.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.app.UserService.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.app.UserService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, expires, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires, User: u})
}

// ============================================================================
// PROJECTS
// ============================================================================

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.app.ProjectService.ListProjects(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectservice.CreateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.app.ProjectService.CreateProject(r.Context(), currentUser(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.app.ProjectService.GetProject(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req projectservice.UpdateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ID = id
	p, err := s.app.ProjectService.UpdateProject(r.Context(), currentUser(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.ProjectService.DeleteProject(r.Context(), currentUser(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	members, err := s.app.ProjectService.ListMembers(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req projectservice.AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ProjectID = id
	m, err := s.app.ProjectService.AddMember(r.Context(), currentUser(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	board, err := s.app.BoardService.GetBoard(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
