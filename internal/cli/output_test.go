package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/thenoetrevino/tandem/internal/models"
)

func newTestFormatter(jsonMode, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &OutputFormatter{JSON: jsonMode, Quiet: quiet, Out: &out, Err: &errOut}, &out, &errOut
}

// ============================================================================
// Success Tests
// ============================================================================

func TestOutputFormatter_Success(t *testing.T) {
	project := &models.Project{ID: 7, Name: "Backend"}
	human := func(w io.Writer) { fmt.Fprintf(w, "Project %s\n", project.Name) }

	t.Run("quiet prints id", func(t *testing.T) {
		f, out, _ := newTestFormatter(false, true)
		if err := f.Success(project, human); err != nil {
			t.Fatal(err)
		}
		if out.String() != "7\n" {
			t.Errorf("Expected '7\\n', got %q", out.String())
		}
	})

	t.Run("quiet without id prints nothing", func(t *testing.T) {
		f, out, _ := newTestFormatter(false, true)
		if err := f.Success(map[string]int{"n": 1}, nil); err != nil {
			t.Fatal(err)
		}
		if out.Len() != 0 {
			t.Errorf("Expected no output, got %q", out.String())
		}
	})

	t.Run("json envelope", func(t *testing.T) {
		f, out, _ := newTestFormatter(true, false)
		if err := f.Success(project, human); err != nil {
			t.Fatal(err)
		}
		var result struct {
			Success bool           `json:"success"`
			Data    models.Project `json:"data"`
		}
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			t.Fatalf("Failed to parse JSON: %v\n%s", err, out.String())
		}
		if !result.Success || result.Data.ID != 7 {
			t.Errorf("Unexpected envelope: %+v", result)
		}
	})

	t.Run("human", func(t *testing.T) {
		f, out, _ := newTestFormatter(false, false)
		if err := f.Success(project, human); err != nil {
			t.Fatal(err)
		}
		if out.String() != "Project Backend\n" {
			t.Errorf("Unexpected output %q", out.String())
		}
	})
}

func TestOutputFormatter_IDs(t *testing.T) {
	f, out, _ := newTestFormatter(false, true)
	if err := f.IDs([]int{3, 1, 2}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "3\n1\n2\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
}

// ============================================================================
// Failure Tests
// ============================================================================

func TestOutputFormatter_Fail_JSON(t *testing.T) {
	f, out, _ := newTestFormatter(true, false)

	verr := &models.ValidationError{}
	verr.Add("title", "title cannot be empty")
	verr.Add("status", "unknown status")

	err := f.Fail(verr)

	var exitErr *CodedError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitValidation {
		t.Fatalf("Expected ExitValidation, got %v", err)
	}

	var result struct {
		Success bool `json:"success"`
		Error   struct {
			Code   string              `json:"code"`
			Fields []models.FieldError `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if result.Success {
		t.Error("Expected success false")
	}
	if result.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", result.Error.Code)
	}
	if len(result.Error.Fields) != 2 {
		t.Errorf("Expected 2 fields, got %v", result.Error.Fields)
	}
}

func TestOutputFormatter_Fail_Human(t *testing.T) {
	f, out, errOut := newTestFormatter(false, false)

	err := f.Fail(fmt.Errorf("move: %w", models.ErrConflict))
	if ExitCodeFor(err) != ExitConflict {
		t.Errorf("Expected ExitConflict, got %d", ExitCodeFor(err))
	}
	if out.Len() != 0 {
		t.Errorf("Expected nothing on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Error: move:") {
		t.Errorf("Expected error on stderr, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Suggestion:") {
		t.Errorf("Expected suggestion, got %q", errOut.String())
	}
}
