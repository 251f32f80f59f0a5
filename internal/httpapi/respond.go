package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/models"
	"github.com/thenoetrevino/tandem/internal/services/lane"
	userservice "github.com/thenoetrevino/tandem/internal/services/user"
)

// errRequestInFlight answers a retry that arrives before the first attempt finished
var errRequestInFlight = fmt.Errorf("a request with this idempotency key is still in progress: %w", models.ErrConflict)

// errorResponse is the body of every non-2xx answer
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, userservice.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrStorage),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with the status for err. Internal details are logged,
// never sent.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: http.StatusText(status)}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		body.Error = models.ErrValidation.Error()
		body.Fields = verr.Fields
	case status == http.StatusConflict:
		if errors.Is(err, lane.ErrBusy) || errors.Is(err, errRequestInFlight) {
			w.Header().Set("Retry-After", "1")
		}
		body.Error = err.Error()
	case status == http.StatusUnauthorized:
		body.Error = err.Error()
	case status >= http.StatusInternalServerError:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err)
	default:
		body.Error = err.Error()
	}

	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// currentUser returns the authenticated caller set by auth.Middleware
func currentUser(r *http.Request) int {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}
