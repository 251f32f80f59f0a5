package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tandem/internal/models"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// NewFormatter reads the --json and --quiet flags of cmd and writes to the
// command's configured streams
func NewFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// AddOutputFlags registers the agent-friendly output flags
func AddOutputFlags(cmd *cobra.Command, quietHelp string) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, quietHelp)
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) errOut() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs a successful result. human renders the default mode;
// in quiet mode only the ID is printed when data has one.
func (f *OutputFormatter) Success(data any, human func(w io.Writer)) error {
	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() int }); ok {
			_, err := fmt.Fprintf(f.out(), "%d\n", idGetter.GetID())
			return err
		}
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	if human != nil {
		human(f.out())
		return nil
	}
	_, err := fmt.Fprintf(f.out(), "%+v\n", data)
	return err
}

// IDs prints one ID per line; used by list commands in quiet mode
func (f *OutputFormatter) IDs(ids []int) error {
	for _, id := range ids {
		if _, err := fmt.Fprintf(f.out(), "%d\n", id); err != nil {
			return err
		}
	}
	return nil
}

// Fail reports err in the active mode and returns a CodedError carrying
// the matching exit code. Validation failures list every field.
func (f *OutputFormatter) Fail(err error) error {
	code := ExitCodeFor(err)

	var verr *models.ValidationError
	hasFields := errors.As(err, &verr) && len(verr.Fields) > 0

	if f.JSON {
		errData := map[string]any{
			"code":    errorCode(err),
			"message": err.Error(),
		}
		if hasFields {
			errData["fields"] = verr.Fields
		}
		_ = json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
		return &CodedError{Code: code, Err: err, Reported: true}
	}

	if hasFields {
		fmt.Fprintln(f.errOut(), "Error: validation failed")
		for _, fe := range verr.Fields {
			fmt.Fprintf(f.errOut(), "  %s: %s\n", fe.Field, fe.Message)
		}
	} else {
		fmt.Fprintf(f.errOut(), "Error: %s\n", err)
	}
	if s := suggestion(code); s != "" {
		fmt.Fprintf(f.errOut(), "Suggestion: %s\n", s)
	}
	return &CodedError{Code: code, Err: err, Reported: true}
}

func suggestion(code int) string {
	switch code {
	case ExitUsage:
		return "pass --as <email> or set " + ActingUserEnv
	case ExitConflict:
		return "the project is busy or the resource already exists; retry shortly"
	case ExitAccessDenied:
		return "ask the project owner to add you as a member"
	}
	return ""
}
